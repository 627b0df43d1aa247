// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/flex-update-mc-bot/bottools/internal/config"
	"github.com/flex-update-mc-bot/bottools/internal/logger"
	"github.com/flex-update-mc-bot/bottools/internal/version"
)

func Execute(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)

	return root.ExecuteContext(ctx)
}

func PrintError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

// app carries the persistent flags and the settings loaded from them.
type app struct {
	configPath string
	verbose    bool
	dryRun     bool

	cfg *config.Config
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	if a.verbose {
		level = zapcore.DebugLevel
	}
	logger.SetLevel(level)
	logger.DebugKV(cmd.Context(), "Loaded settings", "path", a.configPath, "upstream", cfg.Upstream.URL)

	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "bottools",
		Short: "bottools keeps the Minecraft bot pinned to the newest azalea revision",
		Long: `bottools advances the bot's pinned azalea revision one upstream commit at a
time, rewrites the manifest and commits the result, and builds release
binaries for every supported platform.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	cmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, "show actions without writing results")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"settings file (default "+config.DefaultConfigFilename+" when present)")

	cmd.AddCommand(newUpdateCmd(a))
	cmd.AddCommand(newResolveCmd(a))
	cmd.AddCommand(newBuildCmd(a))
	cmd.AddCommand(newTargetsCmd())
	cmd.AddCommand(newNotifyCmd(a))
	cmd.AddCommand(newInitCmd(a))
	version.AttachCobraVersionCommand(cmd)

	return cmd
}
