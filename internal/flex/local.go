package flex

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/flex-update-mc-bot/bottools/internal/logger"
)

// EnsureClean fails with ErrDirtyWorktree when the downstream working tree has
// changes. The mirror directory is ignored when it lives inside the tree.
func EnsureClean(ctx context.Context, ws Workspace) error {
	_, wt, err := openWorktree(ws)
	if err != nil {
		return err
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("%w: status: %w", ErrCommit, err)
	}
	if status.IsClean() {
		return nil
	}

	dirty := make([]string, 0, len(status))
	for path := range status {
		dirty = append(dirty, path)
	}
	sort.Strings(dirty)
	logger.DebugKV(ctx, "Working tree is dirty", "paths", dirty)

	return fmt.Errorf("%w: %s (%d paths, first %s)", ErrDirtyWorktree, ws.root(), len(dirty), dirty[0])
}

func openWorktree(ws Workspace) (*git.Repository, *git.Worktree, error) {
	repo, err := git.PlainOpenWithOptions(ws.root(), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open %s: %w", ErrCommit, ws.root(), err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: worktree: %w", ErrCommit, err)
	}

	if rel, ok := ws.mirrorWithin(wt.Filesystem.Root()); ok {
		wt.Excludes = append(wt.Excludes, gitignore.ParsePattern("/"+rel+"/", nil))
	}

	return repo, wt, nil
}
