// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package resolve

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/flex-update-mc-bot/bottools/internal/flex"
	"github.com/flex-update-mc-bot/bottools/internal/logger"
)

// Report is the result of a resolve run.
type Report struct {
	Upstream string  `yaml:"upstream"`
	Pinned   string  `yaml:"pinned,omitempty"`
	UpToDate bool    `yaml:"up_to_date"`
	Entries  []Entry `yaml:"entries"`
}

func Run(ctx context.Context, opts Options) (*Report, error) {
	opts = opts.WithDefaults()
	if opts.MirrorPath == "" {
		return nil, errMissingMirrorPath
	}
	ctx = logger.WithName(ctx, "resolve")

	mirror, err := openMirror(ctx, opts)
	if err != nil {
		return nil, err
	}
	r := newResolver(opts, mirror)
	report := &Report{Upstream: opts.UpstreamURL, Entries: []Entry{}}

	if len(opts.Refs) > 0 {
		refs := flex.SplitAndTrim(opts.Refs)
		if len(refs) == 0 {
			return nil, errNoRefsAfterParsing
		}
		entries, err := r.ResolveAll(ctx, refs)
		if err != nil {
			return nil, err
		}
		report.Entries = entries

		return report, nil
	}

	pinned := opts.From
	if pinned == "" {
		m, err := flex.ReadManifest(opts.ManifestPath, flex.Schema{Pins: opts.Schema.Pins})
		if err != nil {
			return nil, err
		}
		if pinned, err = m.Revision(); err != nil {
			return nil, err
		}
	}
	report.Pinned = pinned

	entry, found, err := r.Next(ctx, pinned)
	if err != nil {
		return nil, err
	}
	if !found {
		report.UpToDate = true
		logger.InfoKV(ctx, "Pin is at the upstream head", "revision", pinned)

		return report, nil
	}
	report.Entries = append(report.Entries, entry)

	return report, nil
}

// WriteReport renders r as YAML.
func WriteReport(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("resolve: encode report: %w", err)
	}

	return enc.Close()
}

func openMirror(ctx context.Context, opts Options) (*flex.Mirror, error) {
	if opts.NoRefresh {
		logger.DebugKV(ctx, "Reusing existing mirror", "path", opts.MirrorPath)

		return flex.OpenMirror(opts.MirrorPath)
	}

	return flex.RefreshMirror(ctx, opts.workspace())
}
