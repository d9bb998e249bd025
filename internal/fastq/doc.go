// Package fastq is the single source of truth for the raw read filename
// grammar used in delivery trees. Both the tree assembler and the manifest
// builder parse and render filenames through this package so the convention
// cannot drift between them.
package fastq
