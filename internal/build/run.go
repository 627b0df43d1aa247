package build

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/flex-update-mc-bot/bottools/internal/flex"
	"github.com/flex-update-mc-bot/bottools/internal/logger"
)

// Artifact describes an installed build.
type Artifact struct {
	Target   flex.BuildTarget
	Version  string
	Source   string
	Path     string
	Checksum string
}

func Run(ctx context.Context, opts Options) (*Artifact, error) {
	opts = opts.WithDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	ctx = logger.WithName(ctx, "build")

	target, err := selectTarget(opts)
	if err != nil {
		return nil, err
	}
	// An unsupported host only means every build is a cross build.
	host, _ := flex.HostTarget()

	version, err := buildVersion(opts)
	if err != nil {
		return nil, err
	}

	argv := append([]string(nil), opts.Command...)
	if target.Triple != host.Triple {
		argv = append(argv, "--target", target.Triple)
	}

	artifact := &Artifact{
		Target:  target,
		Version: version,
		Source:  target.BinaryPath(opts.ProjectDir, opts.Binary, host),
		Path:    filepath.Join(opts.OutputDir, target.ArtifactName(opts.Binary, version)),
	}
	ctx = logger.WithKV(ctx, "target", target.Triple)

	if opts.DryRun {
		logger.InfoKV(ctx, "Dry run, not building", "argv", argv, "artifact", artifact.Path)

		return artifact, nil
	}

	logger.InfoKV(ctx, "Building", "argv", argv, "dir", opts.ProjectDir)
	if _, err := flex.RunCommand(ctx, opts.ProjectDir, argv...); err != nil {
		return nil, errors.Join(flex.ErrBuild, err)
	}

	sum, err := install(artifact.Source, artifact.Path)
	if err != nil {
		return nil, err
	}
	artifact.Checksum = sum
	logger.InfoKV(ctx, "Installed artifact", "path", artifact.Path, "sha512", sum)

	return artifact, nil
}

func selectTarget(opts Options) (flex.BuildTarget, error) {
	switch {
	case opts.Target != "":
		return flex.TargetForTriple(opts.Target)
	case opts.OS != "" || opts.Arch != "":
		return flex.ResolveTarget(opts.OS, opts.Arch)
	default:
		return flex.HostTarget()
	}
}

func buildVersion(opts Options) (string, error) {
	if opts.Version != "" {
		return opts.Version, nil
	}

	m, err := flex.ReadManifest(opts.ManifestPath, flex.Schema{MetadataKey: opts.MetadataKey})
	if err != nil {
		return "", fmt.Errorf("%w: %w", errMissingVersion, err)
	}
	if m.Label == "" {
		return "", errMissingVersion
	}

	return m.Label, nil
}
