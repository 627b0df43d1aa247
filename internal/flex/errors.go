// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package flex

import "errors"

// Failure kinds surfaced by the pipeline. Callers match them with errors.Is;
// the wrapped message carries the path, revision or command involved.
var (
	ErrMirror            = errors.New("mirror failed")
	ErrResolution        = errors.New("revision resolution failed")
	ErrVersionFormat     = errors.New("upstream version has no derivable label")
	ErrManifestIO        = errors.New("manifest io failed")
	ErrManifestFormat    = errors.New("manifest malformed")
	ErrMissingLockEntry  = errors.New("lock snapshot missing entry")
	ErrCommit            = errors.New("commit failed")
	ErrUnsupportedTarget = errors.New("unsupported build target")
	ErrBuild             = errors.New("build failed")
	ErrCommand           = errors.New("external command failed")
	ErrDirtyWorktree     = errors.New("working tree has uncommitted changes")
	ErrInvalidSelector   = errors.New("invalid revision selector")
)
