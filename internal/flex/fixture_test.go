package flex

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// repoFixture builds small on-disk repositories with deterministic commit
// times, one hour apart.
type repoFixture struct {
	t     *testing.T
	dir   string
	repo  *git.Repository
	clock time.Time
}

func newRepoFixture(t *testing.T) *repoFixture {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	return &repoFixture{
		t:     t,
		dir:   dir,
		repo:  repo,
		clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *repoFixture) write(files map[string]string) {
	f.t.Helper()

	wt, err := f.repo.Worktree()
	require.NoError(f.t, err)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(f.dir, filepath.FromSlash(name))
		require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(f.t, os.WriteFile(path, []byte(files[name]), 0o600))
		_, err := wt.Add(name)
		require.NoError(f.t, err)
	}
}

// commit records files on top of parents (HEAD when none are given).
func (f *repoFixture) commit(msg string, files map[string]string, parents ...plumbing.Hash) plumbing.Hash {
	f.t.Helper()

	f.write(files)

	wt, err := f.repo.Worktree()
	require.NoError(f.t, err)

	f.clock = f.clock.Add(time.Hour)
	sig := &object.Signature{Name: "Upstream Dev", Email: "dev@example.com", When: f.clock}
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	require.NoError(f.t, err)

	return hash
}

// linear creates n commits each bumping the upstream version label.
func (f *repoFixture) linear(n int) []plumbing.Hash {
	f.t.Helper()

	hashes := make([]plumbing.Hash, 0, n)
	for i := 1; i <= n; i++ {
		hashes = append(hashes, f.commit("commit", map[string]string{
			"Cargo.toml": upstreamCargoToml("0.13.0+mc1.21." + string(rune('0'+i))),
		}))
	}

	return hashes
}

func (f *repoFixture) mirror() *Mirror {
	f.t.Helper()

	m, err := OpenMirror(f.dir)
	require.NoError(f.t, err)

	return m
}

func upstreamCargoToml(version string) string {
	return `[workspace]
members = ["azalea", "azalea-client", "azalea-protocol"]

[workspace.package]
version = "` + version + `"
edition = "2024"
`
}
