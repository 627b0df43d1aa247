// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package flex

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// CloneFunc materialises a repository at path.
type CloneFunc func(ctx context.Context, path string, opts *git.CloneOptions) (*git.Repository, error)

// Workspace carries the locations a single run operates on. It is passed to
// every step instead of relying on the process working directory.
type Workspace struct {
	// Root is the downstream repository root.
	Root string
	// Upstream is the URL the mirror is cloned from.
	Upstream string
	// MirrorPath is recreated on every run.
	MirrorPath string
	// Auth is used for the clone when set.
	Auth transport.AuthMethod
	// Clone overrides how the mirror is materialised. Nil means a go-git clone.
	Clone CloneFunc
}

// TokenAuth returns basic auth for HTTPS remotes, or nil when token is empty.
func TokenAuth(token string) transport.AuthMethod {
	if strings.TrimSpace(token) == "" {
		return nil
	}

	return &githttp.BasicAuth{Username: "x-access-token", Password: token}
}

func (w Workspace) clone() CloneFunc {
	if w.Clone != nil {
		return w.Clone
	}

	return func(ctx context.Context, path string, opts *git.CloneOptions) (*git.Repository, error) {
		return git.PlainCloneContext(ctx, path, false, opts)
	}
}

func (w Workspace) root() string {
	if w.Root == "" {
		return "."
	}

	return w.Root
}

// mirrorWithin returns the mirror path relative to root when the mirror
// lives inside that directory.
func (w Workspace) mirrorWithin(root string) (string, bool) {
	if w.MirrorPath == "" {
		return "", false
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	mirrorAbs, err := filepath.Abs(w.MirrorPath)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(rootAbs, mirrorAbs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	return filepath.ToSlash(rel), true
}
