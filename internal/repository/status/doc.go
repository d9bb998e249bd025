// Package status persists the per-sample delivery lifecycle to one YAML
// file per project, plus the <sample>_delivered.ack acknowledgement files
// written on handoff. The repository enforces the lifecycle transitions
// defined by the delivery domain package.
package status
