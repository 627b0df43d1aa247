// Package build compiles the downstream bot for one target and installs the
// binary under its release artifact name.
package build

import "errors"

var (
	errMissingProjectDir = errors.New("build: project dir is required")
	errMissingBinary     = errors.New("build: binary name is required")
	errMissingCommand    = errors.New("build: build command is empty")
	errMissingVersion    = errors.New("build: no version given and the manifest has none")
)
