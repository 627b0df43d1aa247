// Package flex holds the building blocks of the dependency bump pipeline:
// the upstream mirror and its commit graph, the downstream manifest and lock
// files, the commit finalizer and the build target table.
package flex

const (
	DefaultUpstreamURL   = "https://github.com/azalea-rs/azalea"
	DefaultMirrorPath    = "azalea-temp"
	DefaultVersionMarker = "+mc"
	DefaultUpstreamLock  = "Cargo.lock"
	DefaultManifestPath  = "bot/Cargo.toml"
	DefaultLockPath      = "bot/Cargo.lock"
	DefaultProjectDir    = "bot"
	DefaultMetadataKey   = "mc_version"
	DefaultBinaryName    = "flex-update-mc-bot"
	DefaultOutputDir     = "artifacts"
	DefaultLabel         = "MC"
	DefaultAuthorName    = "github-actions[bot]"
	DefaultAuthorEmail   = "41898282+github-actions[bot]@users.noreply.github.com"

	upstreamManifestFile = "Cargo.toml"
)

// DefaultPins lists the dependency entries that track the upstream revision.
func DefaultPins() []string {
	return []string{"azalea"}
}
