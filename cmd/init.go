package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/calens/finch/core/config"
)

// initCmd writes the default configuration tree without starting a
// session, so users can edit it before the first run.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration directory and default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		paths := config.ProfilePaths(home, profile)
		if err := config.Init(afero.NewOsFs(), paths); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), paths.ConfigFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
