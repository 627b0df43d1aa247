package update

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/flex-update-mc-bot/bottools/internal/flex"
)

type gitFixture struct {
	t     *testing.T
	dir   string
	repo  *git.Repository
	clock time.Time
}

func newGitFixture(t *testing.T) *gitFixture {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	return &gitFixture{t: t, dir: dir, repo: repo, clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *gitFixture) commit(msg string, files map[string]string) plumbing.Hash {
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

	f.clock = f.clock.Add(time.Hour)
	sig := &object.Signature{Name: "Dev", Email: "dev@example.com", When: f.clock}
	hash, err := wt.Commit(msg, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(f.t, err)

	return hash
}

func (f *gitFixture) commitCount() int {
	f.t.Helper()

	iter, err := f.repo.Log(&git.LogOptions{})
	require.NoError(f.t, err)

	n := 0
	require.NoError(f.t, iter.ForEach(func(*object.Commit) error {
		n++

		return nil
	}))

	return n
}

func (f *gitFixture) headMessage() string {
	f.t.Helper()

	ref, err := f.repo.Head()
	require.NoError(f.t, err)
	c, err := f.repo.CommitObject(ref.Hash())
	require.NoError(f.t, err)

	return c.Message
}

func (f *gitFixture) read(name string) string {
	f.t.Helper()

	data, err := os.ReadFile(filepath.Join(f.dir, filepath.FromSlash(name)))
	require.NoError(f.t, err)

	return string(data)
}

// upstreamFixture creates n commits, the i-th labelled 1.21.i with tokio 1.4i.0
// in its lock file.
func upstreamFixture(t *testing.T, n int) (*gitFixture, []string) {
	t.Helper()

	f := newGitFixture(t)
	revs := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		hash := f.commit(fmt.Sprintf("upstream %d", i), map[string]string{
			"Cargo.toml": fmt.Sprintf("[workspace]\nmembers = [\"azalea\"]\n\n[workspace.package]\nversion = \"0.13.0+mc1.21.%d\"\n", i),
			"Cargo.lock": fmt.Sprintf("version = 4\n\n[[package]]\nname = \"tokio\"\nversion = \"1.4%d.0\"\n", i),
		})
		revs = append(revs, hash.String())
	}

	return f, revs
}

func botManifest(rev string) string {
	return `[package]
name = "flex-update-mc-bot"
version = "0.1.0"

[package.metadata]
mc_version = "1.21.1"

[dependencies]
azalea = { git = "https://github.com/azalea-rs/azalea", rev = "` + rev + `" }
tokio = { version = "1.41.0", features = ["full"] }
`
}

func downstreamFixture(t *testing.T, rev string) *gitFixture {
	t.Helper()

	f := newGitFixture(t)
	f.commit("initial", map[string]string{
		"bot/Cargo.toml": botManifest(rev),
		"README.md":      "bot\n",
	})

	return f
}

// copyClone stands in for a network clone by copying a local repository.
func copyClone(_ context.Context, path string, opts *git.CloneOptions) (*git.Repository, error) {
	if err := os.CopyFS(path, os.DirFS(opts.URL)); err != nil {
		return nil, err
	}

	return git.PlainOpen(path)
}

func testOptions(t *testing.T, up, down *gitFixture) Options {
	t.Helper()

	return Options{
		Root:         down.dir,
		UpstreamURL:  up.dir,
		MirrorPath:   filepath.Join(t.TempDir(), "azalea-temp"),
		ManifestPath: filepath.Join(down.dir, "bot", "Cargo.toml"),
		LockPath:     filepath.Join(down.dir, "bot", "Cargo.lock"),
		Schema: flex.Schema{
			Pins:        []string{"azalea"},
			MetadataKey: "mc_version",
			Transitive:  []string{"tokio"},
		},
		DependencyName: "azalea",
		AuthorName:     "Bump Bot",
		AuthorEmail:    "bump@example.com",
		clone:          copyClone,
	}
}
