package flex

import (
	"fmt"
	"time"
)

// ToolchainChannel returns the nightly channel matching an upstream commit date.
func ToolchainChannel(when time.Time) string {
	return "nightly-" + when.UTC().Format(time.DateOnly)
}

// WriteToolchain writes channel to path and reports whether it changed.
func WriteToolchain(path, channel string) (bool, error) {
	changed, err := replaceFile(path, []byte(channel+"\n"))
	if err != nil {
		return false, fmt.Errorf("%w: toolchain: %w", ErrManifestIO, err)
	}

	return changed, nil
}
