package resolve

import (
	"os"

	"github.com/flex-update-mc-bot/bottools/internal/config"
	"github.com/flex-update-mc-bot/bottools/internal/flex"
)

type Options struct {
	// Refs are selectors to resolve. When empty the report holds the
	// revision that follows the current pin.
	Refs          []string
	UpstreamURL   string
	MirrorPath    string
	Token         string
	VersionMarker string
	ManifestPath  string
	Schema        flex.Schema
	// From replaces the pin read from the manifest.
	From string
	// NoRefresh reuses the mirror left by a previous run.
	NoRefresh bool

	clone flex.CloneFunc
}

func FromConfig(cfg *config.Config) Options {
	opts := Options{
		UpstreamURL:   cfg.Upstream.URL,
		MirrorPath:    cfg.Upstream.MirrorPath,
		VersionMarker: cfg.Upstream.VersionMarker,
		ManifestPath:  cfg.Downstream.Manifest,
		Schema:        cfg.Downstream.Schema(),
	}
	if cfg.Upstream.TokenEnv != "" {
		opts.Token = os.Getenv(cfg.Upstream.TokenEnv)
	}

	return opts
}

func (o Options) WithDefaults() Options {
	def := config.Default()
	if o.UpstreamURL == "" {
		o.UpstreamURL = def.Upstream.URL
	}
	if o.MirrorPath == "" {
		o.MirrorPath = def.Upstream.MirrorPath
	}
	if o.VersionMarker == "" {
		o.VersionMarker = def.Upstream.VersionMarker
	}
	if o.ManifestPath == "" {
		o.ManifestPath = def.Downstream.Manifest
	}
	if len(o.Schema.Pins) == 0 {
		o.Schema.Pins = def.Downstream.Pins
	}

	return o
}

func (o Options) workspace() flex.Workspace {
	return flex.Workspace{
		Upstream:   o.UpstreamURL,
		MirrorPath: o.MirrorPath,
		Auth:       flex.TokenAuth(o.Token),
		Clone:      o.clone,
	}
}
