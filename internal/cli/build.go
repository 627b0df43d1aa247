package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flex-update-mc-bot/bottools/internal/build"
)

func newBuildCmd(a *app) *cobra.Command {
	var flags build.Options
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the bot for one target and install the release artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := build.FromConfig(a.cfg)
			opts.Target = flags.Target
			opts.OS = flags.OS
			opts.Arch = flags.Arch
			opts.Version = flags.Version
			opts.DryRun = a.dryRun
			if flags.OutputDir != "" {
				opts.OutputDir = flags.OutputDir
			}

			artifact, err := build.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), artifact.Path)

			return err
		},
	}

	cmd.Flags().StringVar(&flags.Target, "target", "", "compiler triple, e.g. aarch64-apple-darwin")
	cmd.Flags().StringVar(&flags.OS, "os", "", "target operating system (linux, windows, macos)")
	cmd.Flags().StringVar(&flags.Arch, "arch", "", "target architecture (x64, arm64)")
	cmd.Flags().StringVar(&flags.Version, "version", "", "version in the artifact name (default: manifest label)")
	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "directory receiving the artifact")

	return cmd
}
