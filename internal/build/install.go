package build

import (
	"bytes"
	"crypto"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/flex-update-mc-bot/bottools/internal/flex"
)

const artifactMode = 0o755

// install copies the compiled binary to dst and re-reads what landed there.
// A copy whose SHA-512 differs from src fails with ErrBuild. It returns the
// hex checksum of the installed file.
func install(src, dst string) (string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("%w: compiled binary: %w", flex.ErrBuild, err)
	}
	sum := sha512.Sum512(data)

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", fmt.Errorf("%w: output dir: %w", flex.ErrBuild, err)
	}
	// Apply replaces an existing file, so make sure there is one.
	if _, err := os.Stat(dst); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(dst, nil, artifactMode); err != nil {
			return "", fmt.Errorf("%w: create %s: %w", flex.ErrBuild, dst, err)
		}
	}

	err = goupdate.Apply(bytes.NewReader(data), goupdate.Options{
		TargetPath: dst,
		TargetMode: artifactMode,
		Checksum:   sum[:],
		Hash:       crypto.SHA512,
	})
	if err != nil {
		return "", fmt.Errorf("%w: install %s: %w", flex.ErrBuild, dst, err)
	}

	if _, err := os.Stat(dst + ".old"); err == nil {
		_ = os.Remove(dst + ".old")
	}

	return verifyInstalled(dst, sum[:])
}

// verifyInstalled hashes the file at path and compares it with want.
func verifyInstalled(path string, want []byte) (string, error) {
	installed, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read back %s: %w", flex.ErrBuild, path, err)
	}

	got := sha512.Sum512(installed)
	if !bytes.Equal(got[:], want) {
		return "", fmt.Errorf("%w: %s checksum %s does not match compiled binary %s",
			flex.ErrBuild, path, hex.EncodeToString(got[:]), hex.EncodeToString(want))
	}

	return hex.EncodeToString(got[:]), nil
}
