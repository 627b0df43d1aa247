package cli

import (
	"github.com/spf13/cobra"

	"github.com/flex-update-mc-bot/bottools/internal/resolve"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		refs      []string
		from      string
		noRefresh bool
	)
	cmd := &cobra.Command{
		Use:   "resolve [selector...]",
		Short: "Report the next revision, or what selectors point at, without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := resolve.FromConfig(a.cfg)
			opts.Refs = append(append([]string(nil), refs...), args...)
			opts.From = from
			opts.NoRefresh = noRefresh

			report, err := resolve.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			return resolve.WriteReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringSliceVar(&refs, "refs", nil, "comma-separated selector list (may repeat)")
	cmd.Flags().StringVar(&from, "from", "", "revision to start from instead of the manifest pin")
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "reuse the existing mirror instead of cloning")

	return cmd
}
