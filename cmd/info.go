package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/droidctl/internal/droid"
	"github.com/zjrosen/droidctl/internal/registry"
	"github.com/zjrosen/droidctl/internal/ui/markdown"
	"github.com/zjrosen/droidctl/internal/ui/styles"
	"github.com/zjrosen/droidctl/internal/ui/text"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info [name]",
	Short: "Show a droid's full definition",
	Long: `Show every field of a droid plus its rendered system prompt.

On a terminal the name is optional; omitting it opens an interactive
picker over the loaded collection.

Examples:
  droidctl info code-reviewer
  droidctl info code-reviewer --json | jq .tools`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		name, err := resolveDroidName(reg, args, "Select a droid")
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

		if infoJSON {
			b, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding droid: %w", err)
			}
			fmt.Fprintln(out, string(b))
			return nil
		}

		fmt.Fprint(out, formatInfo(d, styledOutput(), infoWidth()))
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "emit the droid as JSON")
	rootCmd.AddCommand(infoCmd)
}

func infoWidth() int {
	width := listTableWidth()
	if width > 100 {
		width = 100
	}
	return width
}

// formatInfo renders the droid header and body. Styled output gets a
// glamour-rendered body; plain output gets the prompt word-wrapped.
func formatInfo(d *droid.Droid, styled bool, width int) string {
	var b strings.Builder

	badge := "[" + string(d.Scope) + "]"
	if styled {
		badge = lipgloss.NewStyle().Foreground(scopeColor(d.Scope)).Render(badge)
		b.WriteString(styles.HeaderStyle.Render(d.Name) + " " + badge + "\n")
	} else {
		b.WriteString(d.Name + " " + badge + "\n")
	}
	if d.Description != "" {
		desc := d.Description
		if styled {
			desc = styles.DescriptionStyle.Render(desc)
		}
		b.WriteString(desc + "\n")
	}
	b.WriteString("\n")

	tools := "unrestricted"
	if !d.Unrestricted() {
		tools = strings.Join(d.Tools, ", ")
		if tools == "" {
			tools = "none"
		}
	}
	proactive := "no"
	if d.Proactive {
		proactive = "yes"
	}

	writeField := func(label, value string) {
		if styled {
			label = styles.MutedStyle.Render(label)
		}
		fmt.Fprintf(&b, "%s %s\n", label, value)
	}

	writeField("model:", d.Model)
	writeField("tools:", tools)
	writeField("proactive:", proactive)
	if len(d.Triggers) > 0 {
		writeField("triggers:", strings.Join(d.Triggers, ", "))
	}
	writeField("source:", d.SourcePath)

	if d.SystemPrompt != "" {
		b.WriteString("\n")
		if styled {
			b.WriteString(markdown.Render(d.SystemPrompt, width) + "\n")
		} else {
			b.WriteString(text.Wrap(d.SystemPrompt, width) + "\n")
		}
	}

	return b.String()
}
