package flex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
)

// copyClone stands in for a network clone by copying a local repository.
func copyClone(_ context.Context, path string, opts *git.CloneOptions) (*git.Repository, error) {
	if err := os.CopyFS(path, os.DirFS(opts.URL)); err != nil {
		return nil, err
	}

	return git.PlainOpen(path)
}

func TestRefreshMirrorReplacesExistingClone(t *testing.T) {
	t.Parallel()

	f := newRepoFixture(t)
	hashes := f.linear(2)

	mirrorPath := filepath.Join(t.TempDir(), "upstream")
	require.NoError(t, os.MkdirAll(mirrorPath, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(mirrorPath, "stale.txt"), []byte("old"), 0o600))

	ws := Workspace{Upstream: f.dir, MirrorPath: mirrorPath, Clone: copyClone}
	m, err := RefreshMirror(context.Background(), ws)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(mirrorPath, "stale.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)

	head, err := m.Head()
	require.NoError(t, err)
	require.Equal(t, hashes[1].String(), head)
}

func TestRefreshMirrorCloneFailure(t *testing.T) {
	t.Parallel()

	errNetwork := errors.New("network unreachable")
	ws := Workspace{
		Upstream:   "https://example.invalid/upstream",
		MirrorPath: filepath.Join(t.TempDir(), "upstream"),
		Clone: func(context.Context, string, *git.CloneOptions) (*git.Repository, error) {
			return nil, errNetwork
		},
	}

	_, err := RefreshMirror(context.Background(), ws)
	require.ErrorIs(t, err, ErrMirror)
	require.ErrorIs(t, err, errNetwork)

	_, err = RefreshMirror(context.Background(), Workspace{MirrorPath: "x"})
	require.ErrorIs(t, err, ErrMirror)
}

func TestCheckoutAndDeriveVersion(t *testing.T) {
	t.Parallel()

	f := newRepoFixture(t)
	hashes := f.linear(3)
	m := f.mirror()
	ctx := context.Background()

	require.NoError(t, m.Checkout(ctx, hashes[0].String()))
	label, err := DeriveVersion(m, DefaultVersionMarker)
	require.NoError(t, err)
	require.Equal(t, "1.21.1", label)

	require.NoError(t, m.Checkout(ctx, hashes[2].String()))
	label, err = DeriveVersion(m, DefaultVersionMarker)
	require.NoError(t, err)
	require.Equal(t, "1.21.3", label)

	when, err := m.CommitTime(hashes[2].String())
	require.NoError(t, err)
	require.True(t, f.clock.Equal(when))

	require.ErrorIs(t, m.Checkout(ctx, "deadbeef"), ErrResolution)
}

func TestHeadSurvivesCheckout(t *testing.T) {
	t.Parallel()

	f := newRepoFixture(t)
	hashes := f.linear(3)
	ctx := context.Background()

	m := f.mirror()
	require.NoError(t, m.Checkout(ctx, hashes[0].String()))

	next, found, err := m.NextAfter(ctx, hashes[1].String())
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, hashes[2].String(), next)

	// A clone left detached by an earlier run still finds its branch head.
	reopened := f.mirror()
	head, err := reopened.Head()
	require.NoError(t, err)
	require.Equal(t, hashes[2].String(), head)
}
