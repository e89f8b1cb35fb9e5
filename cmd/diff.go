package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zjrosen/droidctl/internal/registry"
	"github.com/zjrosen/droidctl/internal/ui/styles"
)

var diffCmd = &cobra.Command{
	Use:   "diff <name>",
	Short: "Show what a project override changes",
	Long: `Show a line diff between the shadowed user droid and the project droid
overriding it.

Examples:
  droidctl diff code-reviewer`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}
		name := args[0]
		out := cmd.OutOrStdout()

		shadowed, ok := reg.Shadowed(name)
		if !ok {
			if d, exists := reg.Get(name); exists {
				fmt.Fprintf(out, "Droid %q is not overridden; the only copy is %s\n", name, d.SourcePath)
				return nil
			}
			return fmt.Errorf("droid %q: %w", name, registry.ErrNotFound)
		}
		effective, _ := reg.Get(name)

		userBytes, err := os.ReadFile(shadowed.SourcePath) // #nosec G304 -- path comes from the scanned droid directory
		if err != nil {
			return fmt.Errorf("reading user droid: %w", err)
		}
		projectBytes, err := os.ReadFile(effective.SourcePath) // #nosec G304 -- path comes from the scanned droid directory
		if err != nil {
			return fmt.Errorf("reading project droid: %w", err)
		}

		if string(userBytes) == string(projectBytes) {
			fmt.Fprintf(out, "Files are identical; the project copy shadows %s without changes.\n", shadowed.SourcePath)
			return nil
		}

		styled := styledOutput()
		header := fmt.Sprintf("--- %s\n+++ %s", shadowed.SourcePath, effective.SourcePath)
		if styled {
			header = styles.MutedStyle.Render(header)
		}
		fmt.Fprintln(out, header)
		fmt.Fprint(out, diffLines(string(userBytes), string(projectBytes), styled))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

// diffLines renders a line-level diff with -/+ prefixes. The line-level
// reduction avoids newline boundary artifacts in the char diff.
func diffLines(oldText, newText string, styled bool) string {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitDiffLines(d.Text) {
			rendered := prefix + line
			if styled {
				switch d.Type {
				case diffmatchpatch.DiffDelete:
					rendered = styles.DiffDelStyle.Render(rendered)
				case diffmatchpatch.DiffInsert:
					rendered = styles.DiffAddStyle.Render(rendered)
				}
			}
			out.WriteString(rendered)
			out.WriteString("\n")
		}
	}
	return out.String()
}

// splitDiffLines splits diff text into lines, dropping the trailing empty
// element a terminal newline produces.
func splitDiffLines(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
