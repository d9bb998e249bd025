// Package stage assembles the canonical delivery tree for a project and
// wires in the .lst/.md5 manifest pairs.
//
// The assembler creates scaffolding only: raw read files come from the
// sequencing pipeline, report artifacts from the QC tooling, and result
// folders from the analysis pipeline. Existing content is never overwritten.
// A staging run holds a file lock plus a PID marker on the tree so two runs
// cannot interleave, and recovers markers left by crashed runs.
package stage
