// Package update advances the downstream pin to the next upstream revision
// and records the bump as a single commit.
package update

import "errors"

var (
	errMissingManifestPath = errors.New("update: manifest path is required")
	errMissingMirrorPath   = errors.New("update: mirror path is required")
	errMissingUpstream     = errors.New("update: upstream url is required")
	errMissingPins         = errors.New("update: at least one pinned dependency is required")
	errMissingProjectDir   = errors.New("update: post-update command needs a project dir")
)
