package flex

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/flex-update-mc-bot/bottools/internal/logger"
)

// CommitRequest describes the commit recording one bump.
type CommitRequest struct {
	Changed     bool
	Message     string
	AuthorName  string
	AuthorEmail string
	// When defaults to the current time.
	When time.Time
}

// Finalize stages every working-tree change and records a single commit.
// It does nothing and returns false when req.Changed is false.
func Finalize(ctx context.Context, ws Workspace, req CommitRequest) (bool, string, error) {
	if !req.Changed {
		logger.Debug(ctx, "Nothing changed, skipping commit")

		return false, "", nil
	}
	if req.Message == "" {
		return false, "", fmt.Errorf("%w: empty commit message", ErrCommit)
	}

	_, wt, err := openWorktree(ws)
	if err != nil {
		return false, "", err
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, "", fmt.Errorf("%w: stage: %w", ErrCommit, err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, "", fmt.Errorf("%w: status: %w", ErrCommit, err)
	}
	staged := 0
	for _, fs := range status {
		if fs.Staging != git.Unmodified && fs.Staging != git.Untracked {
			staged++
		}
	}
	if staged == 0 {
		return false, "", fmt.Errorf("%w: nothing staged", ErrCommit)
	}

	when := req.When
	if when.IsZero() {
		when = time.Now()
	}
	name, email := req.AuthorName, req.AuthorEmail
	if name == "" {
		name = DefaultAuthorName
	}
	if email == "" {
		email = DefaultAuthorEmail
	}

	hash, err := wt.Commit(req.Message, &git.CommitOptions{
		Author: &object.Signature{Name: name, Email: email, When: when},
	})
	if err != nil {
		return false, "", fmt.Errorf("%w: %w", ErrCommit, err)
	}

	logger.InfoKV(ctx, "Committed dependency bump", "commit", hash.String(), "files", staged, "message", req.Message)

	return true, hash.String(), nil
}
