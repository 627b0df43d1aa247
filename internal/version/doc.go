// Package version exposes build metadata for bottools.
//
// Version, Commit and BuildTime are injected at build time via ldflags and
// default to placeholder values for local builds.
package version
