package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zjrosen/droidctl/internal/droid"
	"github.com/zjrosen/droidctl/internal/ui/styles"
	"github.com/zjrosen/droidctl/internal/ui/text"
)

var listVerbose bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List droids in the effective collection",
	Long: `List droids from both scopes in load order: user droids not overridden
by the project, then project droids.

Examples:
  # Table of names, scopes and descriptions
  droidctl list

  # Full collection as JSON
  droidctl list -v
  droidctl list --verbose | jq '.[].name'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		droids := reg.List()

		if listVerbose {
			b, err := json.MarshalIndent(droids, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding droids: %w", err)
			}
			fmt.Fprintln(out, string(b))
			return nil
		}

		if len(droids) == 0 {
			fmt.Fprintln(out, "No droids found. Create one with 'droidctl create <name>'.")
			return nil
		}

		fmt.Fprint(out, formatListTable(droids, listTableWidth()))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "emit the full collection as JSON")
	rootCmd.AddCommand(listCmd)
}

// listTableWidth returns the usable table width: the terminal width on a
// TTY, 80 columns otherwise.
func listTableWidth() int {
	if stdoutIsTerminal() {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
			return w
		}
	}
	return 80
}

// formatListTable renders the droid table at the given display width.
// The description column absorbs whatever width the fixed columns leave.
func formatListTable(droids []*droid.Droid, width int) string {
	nameWidth := text.Width("NAME")
	for _, d := range droids {
		if w := text.Width(d.Name); w > nameWidth {
			nameWidth = w
		}
	}
	const scopeWidth = 7     // "project"
	const proactiveWidth = 9 // "PROACTIVE"

	descWidth := width - nameWidth - scopeWidth - proactiveWidth - 6
	if descWidth < 10 {
		descWidth = 10
	}

	var b strings.Builder
	header := fmt.Sprintf("%s  %s  %s  %s",
		text.Pad("NAME", nameWidth),
		text.Pad("SCOPE", scopeWidth),
		text.Pad("PROACTIVE", proactiveWidth),
		"DESCRIPTION")
	b.WriteString(styles.HeaderStyle.Render(header))
	b.WriteString("\n")

	for _, d := range droids {
		proactive := "no"
		if d.Proactive {
			proactive = "yes"
		}
		fmt.Fprintf(&b, "%s  %s  %s  %s\n",
			text.Pad(d.Name, nameWidth),
			text.Pad(string(d.Scope), scopeWidth),
			text.Pad(proactive, proactiveWidth),
			text.Truncate(d.Description, descWidth, "…"))
	}
	return b.String()
}
