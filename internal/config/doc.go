// Package config defines the settings used by the seqdeliver binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Path settings are templates: <PROJECTID>-style placeholders are expanded
// per delivery through ExpandPath. The tracking-system URL and token are
// carried for the surrounding tooling only; nothing in this repository
// performs network calls.
package config
