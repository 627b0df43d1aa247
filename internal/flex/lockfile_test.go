package flex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockSnapshotVersion(t *testing.T) {
	t.Parallel()

	lock, err := ParseLock([]byte(upstreamLock))
	require.NoError(t, err)

	v, err := lock.Version("anyhow")
	require.NoError(t, err)
	require.Equal(t, "1.0.98", v)

	v, err = lock.Version("tokio")
	require.NoError(t, err)
	require.Equal(t, "1.45.1", v, "highest resolved version wins")

	_, err = lock.Version("serde")
	require.ErrorIs(t, err, ErrMissingLockEntry)

	_, err = ParseLock([]byte("[[package]\n"))
	require.ErrorIs(t, err, ErrManifestFormat)
}

func TestCopyLock(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "upstream", "Cargo.lock")
	dst := filepath.Join(dir, "bot", "Cargo.lock")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o750))
	require.NoError(t, os.WriteFile(src, []byte(upstreamLock), 0o600))

	changed, err := CopyLock(dst, src)
	require.NoError(t, err)
	require.True(t, changed)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, upstreamLock, string(data))

	changed, err = CopyLock(dst, src)
	require.NoError(t, err)
	require.False(t, changed)

	lock, err := ReadLock(dst)
	require.NoError(t, err)
	_, err = lock.Version("anyhow")
	require.NoError(t, err)

	_, err = CopyLock(dst, filepath.Join(dir, "missing.lock"))
	require.ErrorIs(t, err, ErrManifestIO)
}
