package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flex-update-mc-bot/bottools/internal/flex"
	"github.com/flex-update-mc-bot/bottools/internal/logger"
)

// Config is the settings file layout.
type Config struct {
	Upstream   Upstream   `yaml:"upstream"`
	Downstream Downstream `yaml:"downstream"`
	Commit     Commit     `yaml:"commit"`
	Build      Build      `yaml:"build"`
	Notify     Notify     `yaml:"notify"`
	LogLevel   string     `yaml:"log_level"`
}

// Upstream describes the tracked repository.
type Upstream struct {
	URL           string `yaml:"url"`
	MirrorPath    string `yaml:"mirror_path"`
	VersionMarker string `yaml:"version_marker"`
	// LockFile is relative to the mirror root.
	LockFile string `yaml:"lock_file"`
	// TokenEnv names an environment variable holding an HTTPS token.
	TokenEnv string `yaml:"token_env,omitempty"`
}

// Downstream describes the project whose pins are bumped.
type Downstream struct {
	Root        string   `yaml:"root"`
	Manifest    string   `yaml:"manifest"`
	Lock        string   `yaml:"lock"`
	Pins        []string `yaml:"pins,omitempty"`
	MetadataKey string   `yaml:"metadata_key"`
	Transitive  []string `yaml:"transitive,omitempty"`
	CopyLock    bool     `yaml:"copy_lock"`
	// ToolchainFile receives nightly-YYYY-MM-DD when set.
	ToolchainFile string `yaml:"toolchain_file,omitempty"`
	// PostUpdate runs in ProjectDir after the manifest is rewritten.
	PostUpdate []string `yaml:"post_update,omitempty"`
	ProjectDir string   `yaml:"project_dir"`
}

// Commit configures the bump commit.
type Commit struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
	Label       string `yaml:"label"`
}

// Build configures packaging.
type Build struct {
	ProjectDir string   `yaml:"project_dir"`
	Binary     string   `yaml:"binary"`
	OutputDir  string   `yaml:"output_dir"`
	Command    []string `yaml:"command,omitempty"`
}

// Notify configures the chat webhook.
type Notify struct {
	WebhookEnv string `yaml:"webhook_env"`
	Username   string `yaml:"username,omitempty"`
}

const (
	// DefaultConfigFilename is looked up in the working directory.
	DefaultConfigFilename = "bottools.yaml"
	// DefaultWebhookEnv is read when no webhook url is passed explicitly.
	DefaultWebhookEnv = "DISCORD_WEBHOOK_URL"

	defaultFilePermissions = 0o600
)

var (
	errConfigIsNotSet   = errors.New("configuration is not set")
	errNoPins           = errors.New("downstream.pins must name at least one dependency")
	errDuplicatePin     = errors.New("dependency listed twice")
	errUnknownLogLevel  = errors.New("unknown log level")
	errInvalidUpstream  = errors.New("invalid upstream url")
	errEmptyBuildBinary = errors.New("build.binary is empty")
)

// DefaultBuildCommand is the compiler invocation; --target is appended for
// cross builds.
func DefaultBuildCommand() []string {
	return []string{"cargo", "+nightly", "build", "--release"}
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{Downstream: Downstream{CopyLock: true}}
	if err := Validate(cfg); err != nil {
		panic(err)
	}

	return cfg
}

// Load reads the settings file at path. An empty path means the default file,
// which may be absent.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	// Fields absent from the file keep these values.
	cfg := Config{Downstream: Downstream{CopyLock: true}}
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings %s: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}
	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, defaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and rejects malformed values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	validateUpstream(&cfg.Upstream)
	if _, err := url.Parse(cfg.Upstream.URL); err != nil || strings.TrimSpace(cfg.Upstream.URL) == "" {
		return fmt.Errorf("%w: %q", errInvalidUpstream, cfg.Upstream.URL)
	}

	if err := validateDownstream(&cfg.Downstream); err != nil {
		return err
	}

	if cfg.Commit.AuthorName == "" {
		cfg.Commit.AuthorName = flex.DefaultAuthorName
	}
	if cfg.Commit.AuthorEmail == "" {
		cfg.Commit.AuthorEmail = flex.DefaultAuthorEmail
	}
	if cfg.Commit.Label == "" {
		cfg.Commit.Label = flex.DefaultLabel
	}

	if cfg.Build.ProjectDir == "" {
		cfg.Build.ProjectDir = flex.DefaultProjectDir
	}
	if cfg.Build.Binary == "" {
		cfg.Build.Binary = flex.DefaultBinaryName
	}
	if strings.ContainsAny(cfg.Build.Binary, `/\`) || strings.TrimSpace(cfg.Build.Binary) == "" {
		return fmt.Errorf("%w or contains a path separator: %q", errEmptyBuildBinary, cfg.Build.Binary)
	}
	if cfg.Build.OutputDir == "" {
		cfg.Build.OutputDir = flex.DefaultOutputDir
	}
	if len(cfg.Build.Command) == 0 {
		cfg.Build.Command = DefaultBuildCommand()
	}

	if cfg.Notify.WebhookEnv == "" {
		cfg.Notify.WebhookEnv = DefaultWebhookEnv
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	return nil
}

func validateUpstream(up *Upstream) {
	if up.URL == "" {
		up.URL = flex.DefaultUpstreamURL
	}
	if up.MirrorPath == "" {
		up.MirrorPath = flex.DefaultMirrorPath
	}
	if up.VersionMarker == "" {
		up.VersionMarker = flex.DefaultVersionMarker
	}
	if up.LockFile == "" {
		up.LockFile = flex.DefaultUpstreamLock
	}
}

func validateDownstream(down *Downstream) error {
	if down.Root == "" {
		down.Root = "."
	}
	if down.Manifest == "" {
		down.Manifest = flex.DefaultManifestPath
	}
	if down.Lock == "" {
		down.Lock = flex.DefaultLockPath
	}
	if down.ProjectDir == "" {
		down.ProjectDir = flex.DefaultProjectDir
	}
	if down.MetadataKey == "" {
		down.MetadataKey = flex.DefaultMetadataKey
	}

	down.Pins = flex.SplitAndTrim(down.Pins)
	if len(down.Pins) == 0 {
		down.Pins = flex.DefaultPins()
	}
	down.Transitive = flex.SplitAndTrim(down.Transitive)

	seen := map[string]bool{}
	for _, name := range append(append([]string(nil), down.Pins...), down.Transitive...) {
		if seen[name] {
			return fmt.Errorf("%w: %s", errDuplicatePin, name)
		}
		seen[name] = true
	}
	if len(down.Pins) == 0 {
		return errNoPins
	}

	return nil
}

// Schema returns the manifest fields the update pipeline owns.
func (d Downstream) Schema() flex.Schema {
	return flex.Schema{
		Pins:        append([]string(nil), d.Pins...),
		MetadataKey: d.MetadataKey,
		Transitive:  append([]string(nil), d.Transitive...),
	}
}
