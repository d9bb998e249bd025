// Package verify is the md5sum -c counterpart for delivery trees: it
// recomputes every digest listed in a .md5 manifest and reports each file
// as ok, mismatch or missing. Failures are aggregated, never short-circuited,
// so end users can re-request exactly the files that failed.
package verify
