package flex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShortRevision(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0123abcd", ShortRevision("0123ABCDEF0123456789"))
	require.Equal(t, "abc", ShortRevision("abc"))
	require.Empty(t, ShortRevision(""))
}

func TestCommitMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		"Update azalea to 9f3c1e2a (MC 1.21.7)",
		CommitMessage("azalea", "9f3c1e2a7b6d5c4e3f2a1b0c9d8e7f6a5b4c3d2e", "MC", "1.21.7"))
	require.Equal(t,
		"Update azalea to 9f3c1e2a (1.21.7)",
		CommitMessage("azalea", "9f3c1e2a7b6d", "", "1.21.7"))
}

func TestToolchain(t *testing.T) {
	t.Parallel()

	when := time.Date(2025, 7, 3, 23, 30, 0, 0, time.FixedZone("UTC-3", -3*60*60))
	require.Equal(t, "nightly-2025-07-04", ToolchainChannel(when))

	path := t.TempDir() + "/rust-toolchain"
	changed, err := WriteToolchain(path, ToolchainChannel(when))
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = WriteToolchain(path, ToolchainChannel(when))
	require.NoError(t, err)
	require.False(t, changed)
}
