package resolve

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/flex-update-mc-bot/bottools/internal/flex"
)

// upstream builds n commits labelled 1.21.1 through 1.21.n and tags the
// first one v1.
func upstream(t *testing.T, n int) (string, []string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC)
	revs := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		manifest := fmt.Sprintf("[workspace.package]\nversion = \"0.13.0+mc1.21.%d\"\n", i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(manifest), 0o600))
		_, err := wt.Add("Cargo.toml")
		require.NoError(t, err)

		when = when.Add(24 * time.Hour)
		sig := &object.Signature{Name: "Dev", Email: "dev@example.com", When: when}
		hash, err := wt.Commit(fmt.Sprintf("commit %d", i), &git.CommitOptions{Author: sig, Committer: sig})
		require.NoError(t, err)
		revs = append(revs, hash.String())
	}

	head, err := repo.Head()
	require.NoError(t, err)
	_, err = repo.CreateTag("v1", head.Hash(), nil)
	require.NoError(t, err)

	return dir, revs
}

func copyClone(_ context.Context, path string, opts *git.CloneOptions) (*git.Repository, error) {
	if err := os.CopyFS(path, os.DirFS(opts.URL)); err != nil {
		return nil, err
	}

	return git.PlainOpen(path)
}

func testOptions(t *testing.T, upstreamDir string) Options {
	t.Helper()

	return Options{
		UpstreamURL: upstreamDir,
		MirrorPath:  filepath.Join(t.TempDir(), "mirror"),
		clone:       copyClone,
	}
}

func TestRunReportsNextRevision(t *testing.T) {
	t.Parallel()

	dir, revs := upstream(t, 3)
	opts := testOptions(t, dir)
	opts.From = revs[0]

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.False(t, report.UpToDate)
	require.Equal(t, revs[0], report.Pinned)
	require.Len(t, report.Entries, 1)

	entry := report.Entries[0]
	require.Equal(t, revs[1], entry.Commit)
	require.Equal(t, "next", entry.Provenance)
	require.Equal(t, "1.21.2", entry.Version)
	require.Equal(t, "2025-03-11T08:00:00Z", entry.Committed)
	require.Equal(t, "nightly-2025-03-11", entry.Toolchain)
}

func TestRunReadsPinFromManifest(t *testing.T) {
	t.Parallel()

	dir, revs := upstream(t, 2)
	manifest := filepath.Join(t.TempDir(), "Cargo.toml")
	require.NoError(t, os.WriteFile(manifest, []byte(`[dependencies]
azalea = { git = "https://github.com/azalea-rs/azalea", rev = "`+revs[1]+`" }
`), 0o600))

	opts := testOptions(t, dir)
	opts.ManifestPath = manifest
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.True(t, report.UpToDate)
	require.Equal(t, revs[1], report.Pinned)
	require.Empty(t, report.Entries)
}

func TestRunResolvesSelectors(t *testing.T) {
	t.Parallel()

	dir, revs := upstream(t, 3)
	opts := testOptions(t, dir)
	opts.Refs = []string{revs[0][:10], " tag:v1 ", ""}

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, report.Entries, 2)

	require.Equal(t, revs[0], report.Entries[0].Commit)
	require.Equal(t, "commit", report.Entries[0].Provenance)
	require.Equal(t, "1.21.1", report.Entries[0].Version)

	require.Equal(t, revs[2], report.Entries[1].Commit)
	require.Equal(t, "tag", report.Entries[1].Provenance)
	require.Equal(t, "tag:v1", report.Entries[1].Selector)
}

func TestRunRejectsBadRefs(t *testing.T) {
	t.Parallel()

	dir, _ := upstream(t, 1)

	opts := testOptions(t, dir)
	opts.Refs = []string{"tag:v1", "tag:v1"}
	_, err := Run(context.Background(), opts)
	require.ErrorIs(t, err, errDuplicateEntry)

	opts = testOptions(t, dir)
	opts.Refs = []string{" ", ""}
	_, err = Run(context.Background(), opts)
	require.ErrorIs(t, err, errNoRefsAfterParsing)

	opts = testOptions(t, dir)
	opts.Refs = []string{"pr:12"}
	_, err = Run(context.Background(), opts)
	require.ErrorIs(t, err, flex.ErrInvalidSelector)
}

func TestRunNoRefreshReusesMirror(t *testing.T) {
	t.Parallel()

	dir, revs := upstream(t, 3)
	opts := testOptions(t, dir)
	opts.From = revs[0]
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	opts.NoRefresh = true
	opts.clone = func(context.Context, string, *git.CloneOptions) (*git.Repository, error) {
		t.Fatal("clone must not run")

		return nil, nil
	}
	opts.From = revs[1]
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	require.Equal(t, revs[2], report.Entries[0].Commit)
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	report := &Report{
		Upstream: "https://github.com/azalea-rs/azalea",
		Pinned:   "1111111111111111111111111111111111111111",
		Entries: []Entry{{
			Selector:   "1111111111111111111111111111111111111111",
			Provenance: "next",
			Commit:     "2222222222222222222222222222222222222222",
			Version:    "1.21.7",
			Committed:  "2025-06-01T12:00:00Z",
			Toolchain:  "nightly-2025-06-01",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, report))
	require.Contains(t, buf.String(), "mc_version: 1.21.7\n")

	var decoded Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, *report, decoded)
}
