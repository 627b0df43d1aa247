package update

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flex-update-mc-bot/bottools/internal/flex"
	"github.com/flex-update-mc-bot/bottools/internal/logger"
)

// Run performs one bump: it finds the revision after the current pin, moves
// the downstream files to it and records the result as one commit. Nothing
// is written when the pin is already at the upstream head.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	opts = opts.WithDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("update: run id: %w", err)
	}
	ctx = logger.WithName(ctx, "update")
	ctx = logger.WithKV(ctx, "run_id", runID.String())

	u := newUpdater(opts)
	outcome, err := u.run(ctx)
	if err != nil {
		return nil, err
	}

	if opts.GitHubOutput != "" {
		if err := AppendGitHubOutput(opts.GitHubOutput, outcome); err != nil {
			return outcome, err
		}
	}

	return outcome, nil
}

type updater struct {
	opts Options
	ws   flex.Workspace
}

func newUpdater(opts Options) *updater {
	return &updater{opts: opts, ws: opts.workspace()}
}

func (u *updater) run(ctx context.Context) (*Outcome, error) {
	opts := u.opts

	if !opts.AllowDirty && !opts.DryRun {
		if err := flex.EnsureClean(ctx, u.ws); err != nil {
			return nil, err
		}
	}

	manifest, err := flex.ReadManifest(opts.ManifestPath, opts.Schema)
	if err != nil {
		return nil, err
	}
	previous, err := manifest.Revision()
	if err != nil {
		return nil, err
	}
	outcome := &Outcome{
		Previous:        previous,
		PreviousVersion: manifest.Label,
		DryRun:          opts.DryRun,
	}
	logger.InfoKV(ctx, "Current pin", "revision", previous, "version", manifest.Label)

	mirror, err := flex.RefreshMirror(ctx, u.ws)
	if err != nil {
		return nil, err
	}

	next, found, err := u.nextRevision(ctx, mirror, previous)
	if err != nil {
		return nil, err
	}
	if !found {
		logger.InfoKV(ctx, "Already at the latest upstream revision", "revision", previous)

		return outcome, nil
	}
	outcome.FoundNext = true
	outcome.Next = next

	if err := mirror.Checkout(ctx, next); err != nil {
		return nil, err
	}

	version, err := u.label(mirror)
	if err != nil {
		return nil, err
	}
	outcome.DerivedVersion = version
	u.compareLabels(ctx, manifest.Label, version)

	outcome.Message = flex.CommitMessage(opts.DependencyName, next, opts.Label, version)
	logger.InfoKV(ctx, "Next revision", "revision", next, "version", version)

	if opts.DryRun {
		logger.InfoKV(ctx, "Dry run, leaving the working tree untouched", "message", outcome.Message)

		return outcome, nil
	}

	changed, err := u.apply(ctx, mirror, next, version)
	if err != nil {
		return nil, err
	}
	outcome.Changed = changed

	committed, hash, err := flex.Finalize(ctx, u.ws, flex.CommitRequest{
		Changed:     changed,
		Message:     outcome.Message,
		AuthorName:  opts.AuthorName,
		AuthorEmail: opts.AuthorEmail,
	})
	if err != nil {
		return nil, err
	}
	outcome.Committed = committed
	outcome.CommitHash = hash

	return outcome, nil
}

// nextRevision honors an explicit selector before walking the graph.
func (u *updater) nextRevision(ctx context.Context, mirror *flex.Mirror, previous string) (string, bool, error) {
	if u.opts.NextRev == "" {
		return mirror.NextAfter(ctx, previous)
	}

	sel, err := flex.ParseSelector(u.opts.NextRev)
	if err != nil {
		return "", false, err
	}
	rev, err := mirror.Resolve(ctx, sel)
	if err != nil {
		return "", false, err
	}
	logger.InfoKV(ctx, "Using requested revision", "selector", sel.Raw, "revision", rev)

	return rev, true, nil
}

func (u *updater) label(mirror *flex.Mirror) (string, error) {
	if u.opts.TargetVersion != "" {
		return u.opts.TargetVersion, nil
	}

	return flex.DeriveVersion(mirror, u.opts.VersionMarker)
}

func (u *updater) compareLabels(ctx context.Context, prev, next string) {
	cmp, ok := flex.CompareLabels(prev, next)
	switch {
	case !ok:
		logger.DebugKV(ctx, "Labels are not comparable", "previous", prev, "next", next)
	case cmp > 0:
		logger.InfoKV(ctx, "Label advances", "previous", prev, "next", next)
	case cmp < 0:
		logger.WarnKV(ctx, "Label moves backwards", "previous", prev, "next", next)
	}
}

// apply rewrites every downstream file the bump touches and reports whether
// any of them changed.
func (u *updater) apply(ctx context.Context, mirror *flex.Mirror, next, version string) (bool, error) {
	opts := u.opts
	mut := flex.Mutation{Revision: next, Label: version}

	if len(opts.Schema.Transitive) > 0 {
		lock, err := flex.ReadLock(mirror.File(opts.UpstreamLock))
		if err != nil {
			return false, err
		}
		mut.Lock = lock
	}

	changed, err := flex.ApplyManifest(opts.ManifestPath, opts.Schema, mut)
	if err != nil {
		return false, err
	}
	logger.DebugKV(ctx, "Manifest processed", "path", opts.ManifestPath, "changed", changed)

	if opts.CopyLock {
		lockChanged, err := flex.CopyLock(opts.LockPath, mirror.File(opts.UpstreamLock))
		if err != nil {
			return false, err
		}
		logger.DebugKV(ctx, "Lock processed", "path", opts.LockPath, "changed", lockChanged)
		changed = changed || lockChanged
	}

	if opts.ToolchainFile != "" {
		when, err := mirror.CommitTime(next)
		if err != nil {
			return false, err
		}
		channel := flex.ToolchainChannel(when)
		tcChanged, err := flex.WriteToolchain(opts.ToolchainFile, channel)
		if err != nil {
			return false, err
		}
		logger.DebugKV(ctx, "Toolchain processed", "channel", channel, "changed", tcChanged)
		changed = changed || tcChanged
	}

	if changed && len(opts.PostUpdate) > 0 {
		out, err := flex.RunCommand(ctx, opts.ProjectDir, opts.PostUpdate...)
		if err != nil {
			return false, err
		}
		logger.DebugKV(ctx, "Post-update command finished", "argv", opts.PostUpdate, "output", out)
	}

	return changed, nil
}
