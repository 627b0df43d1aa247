// Package resolve reports which upstream commits selectors point at, and
// which revision the next bump would pick, without touching the downstream
// tree.
package resolve

import "errors"

var (
	errNoRefsAfterParsing = errors.New("resolve: no refs specified after parsing")
	errDuplicateEntry     = errors.New("resolve: duplicate selector")
	errMissingMirrorPath  = errors.New("resolve: mirror path is required")
)
