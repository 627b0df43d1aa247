// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package flex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/flex-update-mc-bot/bottools/internal/logger"
)

// Mirror is a full local clone of the upstream repository.
type Mirror struct {
	URL  string
	Path string

	repo *git.Repository
	// tip is the default branch head, which stays put while the worktree
	// is moved around by Checkout.
	tip plumbing.Hash
}

// RefreshMirror deletes ws.MirrorPath if present and clones ws.Upstream into it.
func RefreshMirror(ctx context.Context, ws Workspace) (*Mirror, error) {
	if ws.Upstream == "" {
		return nil, fmt.Errorf("%w: upstream url is empty", ErrMirror)
	}
	if ws.MirrorPath == "" {
		return nil, fmt.Errorf("%w: mirror path is empty", ErrMirror)
	}

	mirrorPath, err := filepath.Abs(ws.MirrorPath)
	if err != nil {
		return nil, fmt.Errorf("%w: mirror path: %w", ErrMirror, err)
	}

	if _, statErr := os.Stat(mirrorPath); statErr == nil {
		logger.DebugKV(ctx, "Removing previous mirror", "path", mirrorPath)
		if err := os.RemoveAll(mirrorPath); err != nil {
			return nil, fmt.Errorf("%w: remove %s: %w", ErrMirror, mirrorPath, err)
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrMirror, mirrorPath, statErr)
	}

	logger.InfoKV(ctx, "Cloning upstream", "url", ws.Upstream, "path", mirrorPath)

	repo, err := ws.clone()(ctx, mirrorPath, &git.CloneOptions{
		URL:  ws.Upstream,
		Auth: ws.Auth,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: clone %s: %w", ErrMirror, ws.Upstream, err)
	}

	return newMirror(ws.Upstream, mirrorPath, repo), nil
}

// OpenMirror opens an existing clone without touching it.
func OpenMirror(path string) (*Mirror, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: mirror path: %w", ErrMirror, err)
	}
	repo, err := git.PlainOpen(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrMirror, abs, err)
	}

	url := ""
	if remote, remoteErr := repo.Remote(git.DefaultRemoteName); remoteErr == nil && len(remote.Config().URLs) > 0 {
		url = remote.Config().URLs[0]
	}

	return newMirror(url, abs, repo), nil
}

func newMirror(url, path string, repo *git.Repository) *Mirror {
	m := &Mirror{URL: url, Path: path, repo: repo}
	m.tip = defaultTip(repo)

	return m
}

// defaultTip finds the branch head of a possibly detached clone. It returns
// the zero hash when nothing unambiguous is found.
func defaultTip(repo *git.Repository) plumbing.Hash {
	head, err := repo.Head()
	if err == nil && head.Name().IsBranch() {
		return head.Hash()
	}

	iter, err := repo.Branches()
	if err != nil {
		return plumbing.ZeroHash
	}
	defer iter.Close()

	var branches []*plumbing.Reference
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		branches = append(branches, ref)

		return nil
	})
	if len(branches) != 1 {
		return plumbing.ZeroHash
	}

	return branches[0].Hash()
}

// Head returns the full id of the upstream branch head.
func (m *Mirror) Head() (string, error) {
	c, err := m.headCommit()
	if err != nil {
		return "", err
	}

	return c.Hash.String(), nil
}

// Checkout moves the mirror's worktree to rev with a detached HEAD.
func (m *Mirror) Checkout(ctx context.Context, rev string) error {
	c, err := m.lookupCommit(rev)
	if err != nil {
		return err
	}
	wt, err := m.repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: worktree: %w", ErrMirror, err)
	}

	logger.DebugKV(ctx, "Checking out upstream revision", "rev", c.Hash.String())

	if err := wt.Checkout(&git.CheckoutOptions{Hash: c.Hash, Force: true}); err != nil {
		return fmt.Errorf("%w: checkout %s: %w", ErrMirror, c.Hash, err)
	}

	return nil
}

// CommitTime returns the committer timestamp of rev.
func (m *Mirror) CommitTime(rev string) (time.Time, error) {
	c, err := m.lookupCommit(rev)
	if err != nil {
		return time.Time{}, err
	}

	return c.Committer.When, nil
}

// File returns the absolute path of rel inside the checked-out mirror.
func (m *Mirror) File(rel string) string {
	return filepath.Join(m.Path, filepath.FromSlash(rel))
}

func (m *Mirror) headCommit() (*object.Commit, error) {
	hash := m.tip
	if hash.IsZero() {
		ref, err := m.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("%w: head: %w", ErrResolution, err)
		}
		hash = ref.Hash()
	}

	c, err := m.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: head commit %s: %w", ErrResolution, hash, err)
	}

	return c, nil
}

// lookupCommit resolves a full commit id without scanning history.
func (m *Mirror) lookupCommit(rev string) (*object.Commit, error) {
	if !plumbing.IsHash(rev) {
		return nil, fmt.Errorf("%w: %q is not a full commit id", ErrResolution, rev)
	}
	c, err := m.repo.CommitObject(plumbing.NewHash(rev))
	if err != nil {
		return nil, fmt.Errorf("%w: commit %s: %w", ErrResolution, rev, err)
	}

	return c, nil
}
