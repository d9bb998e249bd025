// Package status exposes the delivery status lifecycle to operators: a
// per-sample status table and the manual delivery acknowledgement step that
// closes a sample after handoff.
package status
