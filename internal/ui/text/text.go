// Package text provides width-aware helpers for aligning droid tables in
// terminal output.
package text

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rivo/uniseg"
)

// Width returns the display width of s in terminal cells. Grapheme
// clusters are measured as units so emoji and combining marks count once.
func Width(s string) int {
	total := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		total += runewidth.StringWidth(cluster)
	}
	return total
}

// Truncate shortens s to at most width cells, appending tail when content
// is dropped. ANSI escape sequences are preserved without counting toward
// the width.
func Truncate(s string, width int, tail string) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, tail)
}

// Pad returns s truncated or space-padded to exactly width cells.
func Pad(s string, width int) string {
	out := Truncate(s, width, "…")
	gap := width - ansi.StringWidth(out)
	if gap <= 0 {
		return out
	}
	return out + strings.Repeat(" ", gap)
}

// Wrap soft-wraps s at width columns, breaking on word boundaries.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}
