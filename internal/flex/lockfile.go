// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package flex

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

type cargoLock struct {
	Version  int `toml:"version"`
	Packages []struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

// LockSnapshot maps package names to the versions a Cargo lock resolved.
type LockSnapshot struct {
	versions map[string][]string
}

// ParseLock decodes a Cargo lock file.
func ParseLock(data []byte) (*LockSnapshot, error) {
	var doc cargoLock
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: lock: %w", ErrManifestFormat, err)
	}

	snap := &LockSnapshot{versions: map[string][]string{}}
	for _, pkg := range doc.Packages {
		if pkg.Name == "" || pkg.Version == "" {
			continue
		}
		snap.versions[pkg.Name] = append(snap.versions[pkg.Name], pkg.Version)
	}

	return snap, nil
}

// ReadLock loads the lock file at path.
func ReadLock(path string) (*LockSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrManifestIO, path, err)
	}

	snap, err := ParseLock(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return snap, nil
}

// Version returns the resolved version of name. When the lock resolved the
// package more than once, the highest semantic version wins.
func (s *LockSnapshot) Version(name string) (string, error) {
	versions := s.versions[name]
	if len(versions) == 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingLockEntry, name)
	}
	if len(versions) == 1 {
		return versions[0], nil
	}

	sorted := append([]string(nil), versions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, errI := semver.NewVersion(sorted[i])
		vj, errJ := semver.NewVersion(sorted[j])
		if errI != nil || errJ != nil {
			return sorted[i] < sorted[j]
		}

		return vi.LessThan(vj)
	})

	return sorted[len(sorted)-1], nil
}

// CopyLock replaces dst with the contents of src and reports whether dst
// changed.
func CopyLock(dst, src string) (bool, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %w", ErrManifestIO, src, err)
	}

	changed, err := replaceFile(dst, data)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrManifestIO, err)
	}

	return changed, nil
}
