package update

import (
	"os"
	"path"
	"strings"

	"github.com/flex-update-mc-bot/bottools/internal/config"
	"github.com/flex-update-mc-bot/bottools/internal/flex"
)

type Options struct {
	Root          string
	UpstreamURL   string
	MirrorPath    string
	Token         string
	VersionMarker string
	// UpstreamLock is relative to the mirror root.
	UpstreamLock string

	ManifestPath  string
	LockPath      string
	Schema        flex.Schema
	CopyLock      bool
	ToolchainFile string
	PostUpdate    []string
	ProjectDir    string

	// DependencyName is used in the commit message. It defaults to the last
	// segment of the upstream url.
	DependencyName string
	AuthorName     string
	AuthorEmail    string
	Label          string

	// NextRev overrides revision discovery with a selector.
	NextRev string
	// TargetVersion overrides label derivation.
	TargetVersion string
	AllowDirty    bool
	DryRun        bool
	// GitHubOutput receives key=value lines when set.
	GitHubOutput string

	clone flex.CloneFunc
}

// FromConfig maps a settings file onto run options.
func FromConfig(cfg *config.Config) Options {
	opts := Options{
		Root:          cfg.Downstream.Root,
		UpstreamURL:   cfg.Upstream.URL,
		MirrorPath:    cfg.Upstream.MirrorPath,
		VersionMarker: cfg.Upstream.VersionMarker,
		UpstreamLock:  cfg.Upstream.LockFile,
		ManifestPath:  cfg.Downstream.Manifest,
		LockPath:      cfg.Downstream.Lock,
		Schema:        cfg.Downstream.Schema(),
		CopyLock:      cfg.Downstream.CopyLock,
		ToolchainFile: cfg.Downstream.ToolchainFile,
		PostUpdate:    append([]string(nil), cfg.Downstream.PostUpdate...),
		ProjectDir:    cfg.Downstream.ProjectDir,
		AuthorName:    cfg.Commit.AuthorName,
		AuthorEmail:   cfg.Commit.AuthorEmail,
		Label:         cfg.Commit.Label,
		GitHubOutput:  os.Getenv("GITHUB_OUTPUT"),
	}
	if cfg.Upstream.TokenEnv != "" {
		opts.Token = os.Getenv(cfg.Upstream.TokenEnv)
	}

	return opts
}

func DefaultOptions() Options {
	return FromConfig(config.Default())
}

func (o Options) WithDefaults() Options {
	def := config.Default()
	if o.Root == "" {
		o.Root = def.Downstream.Root
	}
	if o.UpstreamURL == "" {
		o.UpstreamURL = def.Upstream.URL
	}
	if o.MirrorPath == "" {
		o.MirrorPath = def.Upstream.MirrorPath
	}
	if o.VersionMarker == "" {
		o.VersionMarker = def.Upstream.VersionMarker
	}
	if o.UpstreamLock == "" {
		o.UpstreamLock = def.Upstream.LockFile
	}
	if o.ManifestPath == "" {
		o.ManifestPath = def.Downstream.Manifest
	}
	if o.LockPath == "" {
		o.LockPath = def.Downstream.Lock
	}
	if o.Schema.MetadataKey == "" {
		o.Schema.MetadataKey = def.Downstream.MetadataKey
	}
	if o.DependencyName == "" {
		o.DependencyName = dependencyName(o.UpstreamURL)
	}
	if o.Label == "" {
		o.Label = def.Commit.Label
	}

	return o
}

func (o Options) validate() error {
	switch {
	case o.ManifestPath == "":
		return errMissingManifestPath
	case o.MirrorPath == "":
		return errMissingMirrorPath
	case o.UpstreamURL == "":
		return errMissingUpstream
	case len(o.Schema.Pins) == 0:
		return errMissingPins
	case len(o.PostUpdate) > 0 && o.ProjectDir == "":
		return errMissingProjectDir
	}

	return nil
}

func (o Options) workspace() flex.Workspace {
	return flex.Workspace{
		Root:       o.Root,
		Upstream:   o.UpstreamURL,
		MirrorPath: o.MirrorPath,
		Auth:       flex.TokenAuth(o.Token),
		Clone:      o.clone,
	}
}

func dependencyName(repoURL string) string {
	name := strings.TrimSuffix(path.Base(strings.TrimRight(repoURL, "/")), ".git")
	if name == "" || name == "." || name == "/" {
		return "dependency"
	}

	return name
}
