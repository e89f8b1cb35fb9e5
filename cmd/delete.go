package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/droidctl/internal/registry"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete [name]",
	Aliases: []string{"rm"},
	Short:   "Delete a droid's backing file",
	Long: `Delete the file behind a droid after a confirmation prompt.

Only the file at the droid's effective scope is removed; deleting a
project override uncovers the user droid of the same name on the next
load.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		name, err := resolveDroidName(reg, args, "Delete a droid")
		if err != nil {
			if errors.Is(err, errPickerCanceled) {
				return nil
			}
			return err
		}

		d, ok := reg.Get(name)
		if !ok {
			return fmt.Errorf("droid %q: %w", name, registry.ErrNotFound)
		}

		out := cmd.OutOrStdout()

		if !deleteForce {
			fmt.Fprintf(out, "Delete %q (%s)? [y/N]: ", name, d.SourcePath)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		if err := reg.Delete(name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %s\n", d.SourcePath)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
