package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "0.0.0-dev"
	// Commit is the short git SHA embedded at build time.
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the version string.
func Short() string {
	return Version
}

// Full returns the version with commit and build time.
func Full() string {
	return fmt.Sprintf("bottools %s (commit %s, built %s)", Version, Commit, BuildTime)
}
