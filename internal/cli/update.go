package cli

import (
	"github.com/spf13/cobra"

	"github.com/flex-update-mc-bot/bottools/internal/update"
)

type updateFlags struct {
	nextRev      string
	mcVersion    string
	manifest     string
	allowDirty   bool
	githubOutput string
}

func newUpdateCmd(a *app) *cobra.Command {
	var flags updateFlags
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Move the pin to the next upstream revision and commit the change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := update.FromConfig(a.cfg)
			opts.NextRev = flags.nextRev
			opts.TargetVersion = flags.mcVersion
			opts.AllowDirty = flags.allowDirty
			opts.DryRun = a.dryRun
			if flags.manifest != "" {
				opts.ManifestPath = flags.manifest
			}
			if cmd.Flags().Changed("github-output") {
				opts.GitHubOutput = flags.githubOutput
			}

			outcome, err := update.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			return update.WriteResult(cmd.OutOrStdout(), outcome)
		},
	}

	cmd.Flags().StringVar(&flags.nextRev, "next-rev", "", "selector to move to instead of the next commit (tag:, branch:, commit id)")
	cmd.Flags().StringVar(&flags.mcVersion, "mc-version", "", "label to record instead of the derived one")
	cmd.Flags().StringVar(&flags.manifest, "manifest", "", "path to the bot's Cargo.toml")
	cmd.Flags().BoolVar(&flags.allowDirty, "allow-dirty", false, "run even when the working tree has changes")
	cmd.Flags().StringVar(&flags.githubOutput, "github-output", "", "file receiving key=value results (default $GITHUB_OUTPUT)")

	return cmd
}
