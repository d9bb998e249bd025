// Package version exposes build metadata for the seqdeliver binaries.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags
// and default to sensible values for local builds.
package version
