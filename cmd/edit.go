package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/droidctl/internal/registry"
)

var editCmd = &cobra.Command{
	Use:   "edit [name]",
	Short: "Open a droid file in your editor",
	Long: `Open the droid's backing file in an editor.

The editor comes from the 'editor' config key, then $EDITOR, then vi.
On a terminal the name is optional; omitting it opens the picker.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		name, err := resolveDroidName(reg, args, "Edit a droid")
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

		parts := editorCommand(cfg.Editor)
		editorArgs := append(parts[1:], d.SourcePath)

		editorCmd := exec.Command(parts[0], editorArgs...) // #nosec G204 -- editor comes from the user's own config
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr
		if err := editorCmd.Run(); err != nil {
			return fmt.Errorf("running editor %q: %w", parts[0], err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}

// editorCommand resolves the editor invocation: config first, then
// $EDITOR, then vi. The editor value may carry arguments ("code --wait").
func editorCommand(configured string) []string {
	for _, candidate := range []string{configured, os.Getenv("EDITOR")} {
		if parts := strings.Fields(candidate); len(parts) > 0 {
			return parts
		}
	}
	return []string{"vi"}
}
