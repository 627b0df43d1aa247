package flex

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Resolve turns a selector into a full commit id present in the mirror.
func (m *Mirror) Resolve(ctx context.Context, sel Selector) (string, error) {
	switch sel.Type {
	case SelectorCommit:
		return m.ExpandRevision(ctx, sel.Value)
	case SelectorTag:
		return m.resolveTag(sel.Value)
	case SelectorBranch:
		return m.resolveBranch(sel.Value)
	default:
		return "", fmt.Errorf("%w: unsupported type %q", ErrInvalidSelector, sel.Type)
	}
}

func (m *Mirror) resolveTag(name string) (string, error) {
	ref, err := m.repo.Tag(name)
	if err != nil {
		return "", fmt.Errorf("%w: tag %s: %w", ErrResolution, name, err)
	}

	tag, err := m.repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		c, commitErr := tag.Commit()
		if commitErr != nil {
			return "", fmt.Errorf("%w: tag %s target: %w", ErrResolution, name, commitErr)
		}

		return c.Hash.String(), nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		// Lightweight tag.
		return ref.Hash().String(), nil
	default:
		return "", fmt.Errorf("%w: tag %s: %w", ErrResolution, name, err)
	}
}

func (m *Mirror) resolveBranch(name string) (string, error) {
	candidates := []plumbing.ReferenceName{
		plumbing.NewRemoteReferenceName(git.DefaultRemoteName, name),
		plumbing.NewBranchReferenceName(name),
	}
	for _, refName := range candidates {
		ref, err := m.repo.Reference(refName, true)
		if err == nil {
			return ref.Hash().String(), nil
		}
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", fmt.Errorf("%w: branch %s: %w", ErrResolution, name, err)
		}
	}

	return "", fmt.Errorf("%w: branch %s not found", ErrResolution, name)
}
