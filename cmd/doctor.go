package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/droidctl/internal/droid"
	"github.com/zjrosen/droidctl/internal/ui/styles"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the droid directories for problems",
	Long: `Rescan both droid directories and report files the loader skipped,
plus advisory warnings for values outside the known model tiers and
tool capability names.

Findings never affect loading; doctor always exits 0.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := newRegistry()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		styled := styledOutput()

		skipMark := "skip:"
		warnMark := "warn:"
		if styled {
			skipMark = styles.ErrorStyle.Render(skipMark)
			warnMark = styles.WarningStyle.Render(warnMark)
		}

		warnings := 0
		for _, rec := range reg.Skipped() {
			fmt.Fprintf(out, "%s %s: %v\n", skipMark, rec.Path, rec.Err)
		}
		for _, d := range reg.List() {
			for _, w := range droidWarnings(d) {
				fmt.Fprintf(out, "%s %s: %s\n", warnMark, d.Name, w)
				warnings++
			}
		}

		summary := fmt.Sprintf("%d droids loaded, %d files skipped, %d warnings",
			reg.Count(), len(reg.Skipped()), warnings)
		if styled && len(reg.Skipped()) == 0 && warnings == 0 {
			summary = styles.SuccessStyle.Render(summary)
		}
		fmt.Fprintln(out, summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// droidWarnings returns advisory findings for a droid. Unknown models and
// tools still load; agent runtimes may simply not honor them.
func droidWarnings(d *droid.Droid) []string {
	var warnings []string
	if !slices.Contains(droid.KnownModels, d.Model) {
		warnings = append(warnings, fmt.Sprintf("model %q is not a known tier (%s)",
			d.Model, strings.Join(droid.KnownModels, ", ")))
	}
	for _, tool := range d.Tools {
		if !slices.Contains(droid.KnownTools, tool) {
			warnings = append(warnings, fmt.Sprintf("tool %q is not a known capability", tool))
		}
	}
	return warnings
}
