package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flex-update-mc-bot/bottools/internal/flex"
)

func newTargetsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List release targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				return writeMatrix(cmd.OutOrStdout(), flex.Targets())
			}

			return writeTargetTable(cmd.OutOrStdout(), flex.Targets())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print a GitHub Actions build matrix")

	return cmd
}

func writeMatrix(w io.Writer, targets []flex.BuildTarget) error {
	data, err := json.Marshal(struct {
		Include []flex.BuildTarget `json:"include"`
	}{Include: targets})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", data)

	return err
}

func writeTargetTable(w io.Writer, targets []flex.BuildTarget) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OS\tARCH\tTARGET")
	for _, t := range targets {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.OS, t.Arch, t.Triple)
	}

	return tw.Flush()
}
