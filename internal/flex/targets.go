package flex

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// BuildTarget is one supported (os, arch) pair and its compiler triple.
type BuildTarget struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Triple    string `json:"target"`
	ExeSuffix string `json:"ext,omitempty"`
}

var buildTargets = []BuildTarget{
	{OS: "linux", Arch: "x64", Triple: "x86_64-unknown-linux-gnu"},
	{OS: "linux", Arch: "arm64", Triple: "aarch64-unknown-linux-gnu"},
	{OS: "windows", Arch: "x64", Triple: "x86_64-pc-windows-msvc", ExeSuffix: ".exe"},
	{OS: "windows", Arch: "arm64", Triple: "aarch64-pc-windows-msvc", ExeSuffix: ".exe"},
	{OS: "macos", Arch: "x64", Triple: "x86_64-apple-darwin"},
	{OS: "macos", Arch: "arm64", Triple: "aarch64-apple-darwin"},
}

// Targets returns every supported target in a stable order.
func Targets() []BuildTarget {
	return append([]BuildTarget(nil), buildTargets...)
}

// ResolveTarget looks up the target for an (os, arch) pair.
func ResolveTarget(osName, arch string) (BuildTarget, error) {
	o, a := normalizeOS(osName), normalizeArch(arch)
	for _, t := range buildTargets {
		if t.OS == o && t.Arch == a {
			return t, nil
		}
	}

	return BuildTarget{}, fmt.Errorf("%w: %s/%s", ErrUnsupportedTarget, osName, arch)
}

// TargetForTriple looks up the target for a compiler triple.
func TargetForTriple(triple string) (BuildTarget, error) {
	triple = strings.TrimSpace(triple)
	for _, t := range buildTargets {
		if t.Triple == triple {
			return t, nil
		}
	}

	return BuildTarget{}, fmt.Errorf("%w: %s", ErrUnsupportedTarget, triple)
}

// HostTarget returns the target of the running machine.
func HostTarget() (BuildTarget, error) {
	return ResolveTarget(runtime.GOOS, runtime.GOARCH)
}

// BinaryPath is where the compiler leaves the binary for t. A build for the
// host's own target lands in the plain release directory.
func (t BuildTarget) BinaryPath(projectRoot, binary string, host BuildTarget) string {
	name := binary + t.ExeSuffix
	if t.Triple == host.Triple {
		return filepath.Join(projectRoot, "target", "release", name)
	}

	return filepath.Join(projectRoot, "target", t.Triple, "release", name)
}

// ArtifactName is the published file name for a build of binary at version.
func ArtifactName(binary, version, osName, arch string) (string, error) {
	t, err := ResolveTarget(osName, arch)
	if err != nil {
		return "", err
	}

	return t.ArtifactName(binary, version), nil
}

// ArtifactName is the published file name for a build of binary at version.
func (t BuildTarget) ArtifactName(binary, version string) string {
	return fmt.Sprintf("%s-%s-%s-%s%s", binary, version, t.OS, t.Arch, t.ExeSuffix)
}

func normalizeOS(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "darwin", "macos", "osx":
		return "macos"
	default:
		return s
	}
}

func normalizeArch(s string) string {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "amd64", "x86_64", "x64":
		return "x64"
	case "aarch64", "arm64":
		return "arm64"
	default:
		return s
	}
}
