// Package steward holds build-level metadata shared by the CLI and the
// build tooling.
package steward

// Version is the current steward release.
const Version = "v0.3.0"
