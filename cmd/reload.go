package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Rescan the droid directories",
	Long: `Run a fresh scan of both droid directories and report the result.

Useful after editing files by hand; 'droidctl doctor' explains any
skipped files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d droids (%d files skipped)\n",
			reg.Count(), len(reg.Skipped()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reloadCmd)
}
