// Package delivery holds the data model of a delivery batch: the project,
// sample, flowcell and lane metadata supplied by the operator, the pipeline
// naming rules, and the per-sample delivery status lifecycle.
//
// Metadata is always passed in explicitly as a YAML document so the
// packaging core stays testable without any network access.
package delivery
