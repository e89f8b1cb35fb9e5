package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/droidctl/internal/droid"
	"github.com/zjrosen/droidctl/internal/ui/text"
)

var suggestJSON bool

var suggestCmd = &cobra.Command{
	Use:   "suggest <context...>",
	Short: "Suggest proactive droids for a task description",
	Long: `Match the given context text against proactive droids.

A droid matches when its description appears in the context, or any of
its trigger keywords appears in the context or in the droid's own name.
Matching is case-insensitive substring containment; droids with
proactive: false never match.

Examples:
  droidctl suggest fix the flaky login test
  droidctl suggest "review this diff" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		names := reg.Suggest(strings.Join(args, " "))
		out := cmd.OutOrStdout()

		if suggestJSON {
			if names == nil {
				names = []string{}
			}
			b, err := json.Marshal(names)
			if err != nil {
				return fmt.Errorf("encoding suggestions: %w", err)
			}
			fmt.Fprintln(out, string(b))
			return nil
		}

		if len(names) == 0 {
			fmt.Fprintln(out, "No matching droids.")
			return nil
		}

		droids := make([]*droid.Droid, 0, len(names))
		for _, name := range names {
			if d, ok := reg.Get(name); ok {
				droids = append(droids, d)
			}
		}
		fmt.Fprint(out, formatSuggestions(droids))
		return nil
	},
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "emit matching names as a JSON array")
	rootCmd.AddCommand(suggestCmd)
}

// formatSuggestions renders one aligned row per matching droid.
func formatSuggestions(droids []*droid.Droid) string {
	nameWidth := 0
	for _, d := range droids {
		if w := text.Width(d.Name); w > nameWidth {
			nameWidth = w
		}
	}

	var b strings.Builder
	for _, d := range droids {
		fmt.Fprintf(&b, "%s  %s\n",
			text.Pad(d.Name, nameWidth),
			text.Truncate(d.Description, 70, "…"))
	}
	return b.String()
}
