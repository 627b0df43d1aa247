// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package flex

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
)

var (
	errPathOutsideWorkspace = errors.New("path escapes working directory")
	errEmptyPath            = errors.New("path empty")
)

// Mutation lists the owned fields a transaction sets. Empty values are left
// alone; a nil Lock skips the transitive sync.
type Mutation struct {
	Revision string
	Label    string
	Lock     *LockSnapshot
}

// ReadManifest loads and parses the manifest at path.
func ReadManifest(path string, schema Schema) (*Manifest, error) {
	safePath, err := cleanStatePath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestIO, err)
	}

	data, err := os.ReadFile(safePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrManifestIO, safePath, err)
	}

	m, err := ParseManifest(data, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", safePath, err)
	}

	return m, nil
}

// WriteManifest serializes m and replaces path atomically. Comments and key
// order of the file being replaced are lost; see Manifest.
func WriteManifest(path string, m *Manifest) error {
	safePath, err := cleanStatePath(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrManifestIO, err)
	}

	data, err := m.Encode()
	if err != nil {
		return err
	}

	if err := writeFileAtomic(safePath, data); err != nil {
		return fmt.Errorf("%w: %w", ErrManifestIO, err)
	}

	return nil
}

// Apply sets the owned fields named by mut and reports whether any changed.
func (m *Manifest) Apply(mut Mutation) (bool, error) {
	before := m.owned()

	if mut.Revision != "" {
		m.SetRevision(mut.Revision)
	}
	if mut.Label != "" {
		m.Label = mut.Label
	}
	if mut.Lock != nil {
		if err := m.SetTransitive(mut.Lock); err != nil {
			return false, err
		}
	}

	return !maps.Equal(before, m.owned()), nil
}

// ApplyManifest is a read-modify-write transaction on the manifest at path.
// The file is only rewritten when an owned field changed.
func ApplyManifest(path string, schema Schema, mut Mutation) (bool, error) {
	m, err := ReadManifest(path, schema)
	if err != nil {
		return false, err
	}

	changed, err := m.Apply(mut)
	if err != nil || !changed {
		return false, err
	}

	if err := WriteManifest(path, m); err != nil {
		return false, err
	}

	return true, nil
}

// replaceFile writes data to path atomically unless it already holds data.
func replaceFile(path string, data []byte) (bool, error) {
	safePath, err := cleanStatePath(path)
	if err != nil {
		return false, err
	}

	current, err := os.ReadFile(safePath)
	if err == nil && bytes.Equal(current, data) {
		return false, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("read %s: %w", safePath, err)
	}

	if err := writeFileAtomic(safePath, data); err != nil {
		return false, err
	}

	return true, nil
}

func makeParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	return os.MkdirAll(dir, 0o750)
}

// writeFileAtomic writes data next to path under a unique hidden name and
// renames it into place. The temp file never outlives a failed call.
func writeFileAtomic(path string, data []byte) error {
	if err := makeParent(path); err != nil {
		return fmt.Errorf("create parent of %s: %w", path, err)
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmp := tmpFile.Name()

	discard := func(cause error) error {
		if closeErr := tmpFile.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			cause = errors.Join(cause, fmt.Errorf("close temp file: %w", closeErr))
		}
		if removeErr := os.Remove(tmp); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			cause = errors.Join(cause, fmt.Errorf("remove temp file: %w", removeErr))
		}

		return cause
	}

	if err := tmpFile.Chmod(perm); err != nil {
		return discard(fmt.Errorf("chmod temp: %w", err))
	}
	if _, err := tmpFile.Write(data); err != nil {
		return discard(fmt.Errorf("write temp: %w", err))
	}
	if err := tmpFile.Close(); err != nil {
		return discard(fmt.Errorf("close temp: %w", err))
	}
	if err := os.Rename(tmp, path); err != nil {
		return discard(fmt.Errorf("rename temp: %w", err))
	}

	return nil
}

func cleanStatePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errEmptyPath
	}

	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		return cleaned, nil
	}

	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errPathOutsideWorkspace, path)
	}

	return cleaned, nil
}
