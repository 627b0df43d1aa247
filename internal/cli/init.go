package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/flex-update-mc-bot/bottools/internal/config"
)

var errConfigExists = errors.New("settings file already exists")

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings to a file",
		Args:  cobra.NoArgs,
		// The target file usually does not exist yet, so skip loading it.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			a.cfg = config.Default()

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.DefaultConfigFilename
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%w: %s (use --force)", errConfigExists, path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			if a.dryRun {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), path)

				return err
			}

			return config.Save(path, a.cfg)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
