// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/flex-update-mc-bot/bottools/internal/flex"
	"github.com/flex-update-mc-bot/bottools/internal/logger"
)

// Entry is one resolved commit.
type Entry struct {
	Selector   string `yaml:"selector"`
	Provenance string `yaml:"provenance"`
	Commit     string `yaml:"commit"`
	Version    string `yaml:"mc_version,omitempty"`
	Committed  string `yaml:"committed"`
	Toolchain  string `yaml:"toolchain"`
}

type resolver struct {
	opts   Options
	mirror *flex.Mirror
}

func newResolver(opts Options, mirror *flex.Mirror) *resolver {
	return &resolver{
		opts:   opts,
		mirror: mirror,
	}
}

func (r *resolver) ResolveAll(ctx context.Context, raws []string) ([]Entry, error) {
	results := make([]Entry, 0, len(raws))
	seen := map[string]struct{}{}

	for _, raw := range raws {
		sel, err := flex.ParseSelector(raw)
		if err != nil {
			return nil, err
		}
		if _, exists := seen[sel.Raw]; exists {
			return nil, fmt.Errorf("%w: %q", errDuplicateEntry, sel.Raw)
		}
		seen[sel.Raw] = struct{}{}

		commit, err := r.mirror.Resolve(ctx, sel)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw, err)
		}

		entry, err := r.describe(ctx, sel.Raw, string(sel.Type), commit)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw, err)
		}
		results = append(results, entry)
	}

	return results, nil
}

// Next describes the revision after pinned; ok is false at the head.
func (r *resolver) Next(ctx context.Context, pinned string) (Entry, bool, error) {
	next, found, err := r.mirror.NextAfter(ctx, pinned)
	if err != nil || !found {
		return Entry{}, false, err
	}

	entry, err := r.describe(ctx, pinned, "next", next)
	if err != nil {
		return Entry{}, false, err
	}

	return entry, true, nil
}

func (r *resolver) describe(ctx context.Context, selector, provenance, commit string) (Entry, error) {
	when, err := r.mirror.CommitTime(commit)
	if err != nil {
		return Entry{}, err
	}
	if err := r.mirror.Checkout(ctx, commit); err != nil {
		return Entry{}, err
	}

	version, err := flex.DeriveVersion(r.mirror, r.opts.VersionMarker)
	if err != nil {
		logger.WarnKV(ctx, "Cannot derive a label", "commit", commit, "error", err)
		version = ""
	}

	return Entry{
		Selector:   selector,
		Provenance: provenance,
		Commit:     commit,
		Version:    version,
		Committed:  when.UTC().Format(time.RFC3339),
		Toolchain:  flex.ToolchainChannel(when),
	}, nil
}
