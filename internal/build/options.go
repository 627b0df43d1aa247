package build

import (
	"github.com/flex-update-mc-bot/bottools/internal/config"
)

type Options struct {
	ProjectDir string
	Binary     string
	OutputDir  string
	// Command is the compiler invocation; --target <triple> is appended when
	// cross compiling.
	Command []string

	// ManifestPath and MetadataKey locate the version label when Version
	// is empty.
	ManifestPath string
	MetadataKey  string
	Version      string

	// Target is a compiler triple. OS and Arch are used when it is empty,
	// and the host target when all three are.
	Target string
	OS     string
	Arch   string

	DryRun bool
}

func FromConfig(cfg *config.Config) Options {
	return Options{
		ProjectDir:   cfg.Build.ProjectDir,
		Binary:       cfg.Build.Binary,
		OutputDir:    cfg.Build.OutputDir,
		Command:      append([]string(nil), cfg.Build.Command...),
		ManifestPath: cfg.Downstream.Manifest,
		MetadataKey:  cfg.Downstream.MetadataKey,
	}
}

func DefaultOptions() Options {
	return FromConfig(config.Default())
}

func (o Options) WithDefaults() Options {
	def := DefaultOptions()
	if o.ProjectDir == "" {
		o.ProjectDir = def.ProjectDir
	}
	if o.Binary == "" {
		o.Binary = def.Binary
	}
	if o.OutputDir == "" {
		o.OutputDir = def.OutputDir
	}
	if len(o.Command) == 0 {
		o.Command = def.Command
	}
	if o.ManifestPath == "" {
		o.ManifestPath = def.ManifestPath
	}
	if o.MetadataKey == "" {
		o.MetadataKey = def.MetadataKey
	}

	return o
}

func (o Options) validate() error {
	switch {
	case o.ProjectDir == "":
		return errMissingProjectDir
	case o.Binary == "":
		return errMissingBinary
	case len(o.Command) == 0:
		return errMissingCommand
	}

	return nil
}
