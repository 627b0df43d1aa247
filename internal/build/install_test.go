package build

import (
	"crypto/sha512"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flex-update-mc-bot/bottools/internal/flex"
)

func TestInstallChecksumsInstalledFile(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "flex-update-mc-bot")
	require.NoError(t, os.WriteFile(src, []byte("fresh build"), 0o600))
	dst := filepath.Join(t.TempDir(), "out", "flex-update-mc-bot-1.21.7")

	sum, err := install(src, dst)
	require.NoError(t, err)

	installed, err := os.ReadFile(dst)
	require.NoError(t, err)
	want := sha512.Sum512(installed)
	require.Equal(t, hex.EncodeToString(want[:]), sum)
	require.Equal(t, "fresh build", string(installed))

	_, err = os.Stat(dst + ".old")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestVerifyInstalled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "artifact")
	require.NoError(t, os.WriteFile(path, []byte("installed"), 0o600))
	good := sha512.Sum512([]byte("installed"))
	bad := sha512.Sum512([]byte("compiled"))

	tests := []struct {
		name    string
		path    string
		want    []byte
		wantErr bool
	}{
		{name: "Match", path: path, want: good[:]},
		{name: "Mismatch", path: path, want: bad[:], wantErr: true},
		{name: "Missing", path: path + ".missing", want: good[:], wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sum, err := verifyInstalled(tt.path, tt.want)
			if tt.wantErr {
				require.ErrorIs(t, err, flex.ErrBuild)
				require.Empty(t, sum)

				return
			}
			require.NoError(t, err)
			require.Equal(t, hex.EncodeToString(good[:]), sum)
		})
	}
}
