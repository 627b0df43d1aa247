package flex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

type upstreamManifest struct {
	Workspace struct {
		Package struct {
			Version string `toml:"version"`
		} `toml:"package"`
	} `toml:"workspace"`
	Package struct {
		Version string `toml:"version"`
	} `toml:"package"`
}

// ExtractVersion returns the part of full that follows marker, e.g.
// "1.21.7" for ("0.13.0+mc1.21.7", "+mc").
func ExtractVersion(full, marker string) (string, error) {
	if marker == "" {
		marker = DefaultVersionMarker
	}
	re, err := regexp.Compile(`^(.+?)` + regexp.QuoteMeta(marker) + `(\S+)$`)
	if err != nil {
		return "", fmt.Errorf("%w: marker %q: %w", ErrVersionFormat, marker, err)
	}

	m := re.FindStringSubmatch(strings.TrimSpace(full))
	if m == nil {
		return "", fmt.Errorf("%w: %q has no %q suffix", ErrVersionFormat, full, marker)
	}

	return m[2], nil
}

// DeriveVersion reads the upstream version from the mirror's checked-out
// Cargo.toml and extracts the label after marker.
func DeriveVersion(m *Mirror, marker string) (string, error) {
	path := m.File(upstreamManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s not found", ErrVersionFormat, path)
		}

		return "", fmt.Errorf("%w: read %s: %w", ErrVersionFormat, path, err)
	}

	var doc upstreamManifest
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return "", fmt.Errorf("%w: parse %s: %w", ErrVersionFormat, path, err)
	}

	full := doc.Workspace.Package.Version
	if full == "" {
		full = doc.Package.Version
	}
	if full == "" {
		return "", fmt.Errorf("%w: %s declares no package version", ErrVersionFormat, path)
	}

	return ExtractVersion(full, marker)
}

// CompareLabels orders two derived labels. ok is false when either side is
// not a semantic version, in which case no ordering is implied.
func CompareLabels(prev, next string) (cmp int, ok bool) {
	pv, err := semver.NewVersion(prev)
	if err != nil {
		return 0, false
	}
	nv, err := semver.NewVersion(next)
	if err != nil {
		return 0, false
	}

	return nv.Compare(pv), true
}
