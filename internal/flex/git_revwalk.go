// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package flex

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/flex-update-mc-bot/bottools/internal/logger"
)

const minPrefixLen = 4

var hexPrefix = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// NextAfter returns the commit that immediately follows pinned on the way to
// HEAD. found is false when HEAD is pinned or one of its ancestors.
//
// The candidates are the commits reachable from HEAD minus everything
// reachable from pinned. Among them the oldest direct child of pinned wins;
// children whose parents are all ancestors of pinned are preferred over
// merge commits that also bring in unrelated history.
func (m *Mirror) NextAfter(ctx context.Context, pinned string) (next string, found bool, err error) {
	pinned = strings.ToLower(strings.TrimSpace(pinned))

	pin, err := m.lookupCommit(pinned)
	if err != nil {
		logger.WarnKV(ctx, "Pinned revision is not a full commit id, falling back to prefix scan",
			"pinned", pinned, "error", err)

		return m.nextByPrefixScan(ctx, pinned)
	}

	head, err := m.headCommit()
	if err != nil {
		return "", false, err
	}

	hidden, err := reachable(ctx, pin, nil)
	if err != nil {
		return "", false, err
	}
	if _, ok := hidden[head.Hash]; ok {
		return "", false, nil
	}

	remaining, err := reachable(ctx, head, hidden)
	if err != nil {
		return "", false, err
	}
	logger.DebugKV(ctx, "Computed graph cut", "hidden", len(hidden), "remaining", len(remaining))

	var children []*object.Commit
	for _, c := range remaining {
		if hasParent(c, pin.Hash) {
			children = append(children, c)
		}
	}
	if len(children) == 0 {
		return "", false, fmt.Errorf("%w: %s is not an ancestor of head %s", ErrResolution, pin.Hash, head.Hash)
	}

	sort.Slice(children, func(i, j int) bool {
		ci, cj := children[i], children[j]
		if li, lj := linear(ci, hidden), linear(cj, hidden); li != lj {
			return li
		}
		if !ci.Committer.When.Equal(cj.Committer.When) {
			return ci.Committer.When.Before(cj.Committer.When)
		}

		return ci.Hash.String() < cj.Hash.String()
	})

	return children[0].Hash.String(), true, nil
}

// nextByPrefixScan walks history from HEAD newest first and returns the commit
// visited just before the one whose id starts with prefix. It is only used
// when the pinned id cannot be looked up directly.
func (m *Mirror) nextByPrefixScan(ctx context.Context, prefix string) (string, bool, error) {
	if len(prefix) < minPrefixLen || !hexPrefix.MatchString(prefix) {
		return "", false, fmt.Errorf("%w: %q is not a commit id prefix", ErrResolution, prefix)
	}

	head, err := m.headCommit()
	if err != nil {
		return "", false, err
	}

	iter, err := m.repo.Log(&git.LogOptions{From: head.Hash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return "", false, fmt.Errorf("%w: log: %w", ErrResolution, err)
	}
	defer iter.Close()

	var (
		prev    *object.Commit
		match   *object.Commit
		newer   *object.Commit
		matches int
	)
	err = iter.ForEach(func(c *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if strings.HasPrefix(c.Hash.String(), prefix) {
			matches++
			if match == nil {
				match = c
				newer = prev
			}
		}
		prev = c

		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: walk history: %w", ErrResolution, err)
	}

	switch {
	case matches == 0:
		return "", false, fmt.Errorf("%w: no commit matches %q", ErrResolution, prefix)
	case matches > 1:
		return "", false, fmt.Errorf("%w: prefix %q is ambiguous (%d commits)", ErrResolution, prefix, matches)
	case newer == nil:
		return "", false, nil
	default:
		return newer.Hash.String(), true, nil
	}
}

// ExpandRevision resolves a full or abbreviated commit id to a full one.
func (m *Mirror) ExpandRevision(ctx context.Context, rev string) (string, error) {
	rev = strings.ToLower(strings.TrimSpace(rev))
	if c, err := m.lookupCommit(rev); err == nil {
		return c.Hash.String(), nil
	}
	if len(rev) < minPrefixLen || !hexPrefix.MatchString(rev) {
		return "", fmt.Errorf("%w: %q is not a commit id", ErrResolution, rev)
	}

	iter, err := m.repo.CommitObjects()
	if err != nil {
		return "", fmt.Errorf("%w: commit objects: %w", ErrResolution, err)
	}
	defer iter.Close()

	var found []string
	err = iter.ForEach(func(c *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if strings.HasPrefix(c.Hash.String(), rev) {
			found = append(found, c.Hash.String())
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: scan commits: %w", ErrResolution, err)
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: no commit matches %q", ErrResolution, rev)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: prefix %q is ambiguous (%d commits)", ErrResolution, rev, len(found))
	}
}

// reachable collects start and every ancestor that is not in exclude.
func reachable(
	ctx context.Context,
	start *object.Commit,
	exclude map[plumbing.Hash]*object.Commit,
) (map[plumbing.Hash]*object.Commit, error) {
	seen := make(map[plumbing.Hash]bool, len(exclude))
	for h := range exclude {
		seen[h] = true
	}

	out := map[plumbing.Hash]*object.Commit{}
	iter := object.NewCommitPreorderIter(start, seen, nil)
	defer iter.Close()

	err := iter.ForEach(func(c *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		out[c.Hash] = c

		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return nil, fmt.Errorf("%w: walk from %s: %w", ErrResolution, start.Hash, err)
	}

	return out, nil
}

func hasParent(c *object.Commit, parent plumbing.Hash) bool {
	for _, p := range c.ParentHashes {
		if p == parent {
			return true
		}
	}

	return false
}

// linear reports whether every parent of c is already hidden.
func linear(c *object.Commit, hidden map[plumbing.Hash]*object.Commit) bool {
	for _, p := range c.ParentHashes {
		if _, ok := hidden[p]; !ok {
			return false
		}
	}

	return true
}
