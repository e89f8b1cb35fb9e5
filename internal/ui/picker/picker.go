// Package picker provides an interactive droid selector for commands
// invoked without a name argument.
package picker

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/zjrosen/droidctl/internal/ui/styles"
)

// Option represents a picker option with label and value.
type Option struct {
	Label string
	Value string
	Color lipgloss.TerminalColor // Optional color for the label
}

var emptyStyle = lipgloss.NewStyle().Faint(true)

// Model holds the picker state. Type to filter, arrows or ctrl+n/ctrl+p
// to move, enter to confirm, esc to cancel.
type Model struct {
	title    string
	filter   textinput.Model
	options  []Option
	visible  []int // indexes into options that match the filter
	selected int   // index into visible
	boxWidth int

	choice   Option
	chosen   bool
	canceled bool
}

// New creates a new picker with the given title and options.
func New(title string, options []Option) Model {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter"
	filter.CharLimit = 64
	filter.Focus()

	m := Model{
		title:   title,
		filter:  filter,
		options: options,
	}
	m.visible = matchingIndexes(options, "")
	return m
}

// SetBoxWidth sets the width of the picker box itself.
func (m Model) SetBoxWidth(width int) Model {
	m.boxWidth = width
	return m
}

// SetSelected sets the initially selected index into the option list.
func (m Model) SetSelected(index int) Model {
	for i, optIndex := range m.visible {
		if optIndex == index {
			m.selected = i
			break
		}
	}
	return m
}

// Selected returns the currently highlighted option.
func (m Model) Selected() Option {
	if m.selected >= 0 && m.selected < len(m.visible) {
		return m.options[m.visible[m.selected]]
	}
	return Option{}
}

// Choice returns the confirmed option and whether one was confirmed.
func (m Model) Choice() (Option, bool) {
	return m.choice, m.chosen
}

// Canceled reports whether the picker was dismissed without a choice.
func (m Model) Canceled() bool {
	return m.canceled
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "down", "ctrl+n":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil
		case "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "enter":
			if len(m.visible) > 0 {
				m.choice = m.options[m.visible[m.selected]]
				m.chosen = true
			}
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.canceled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m = m.refilter()
	return m, cmd
}

// refilter rebuilds the visible set for the current filter text, keeping
// the highlight on the same option when it survives the filter.
func (m Model) refilter() Model {
	prev := -1
	if m.selected >= 0 && m.selected < len(m.visible) {
		prev = m.visible[m.selected]
	}

	m.visible = matchingIndexes(m.options, m.filter.Value())
	m.selected = 0
	for i, optIndex := range m.visible {
		if optIndex == prev {
			m.selected = i
			break
		}
	}
	return m
}

func matchingIndexes(options []Option, filter string) []int {
	query := strings.ToLower(strings.TrimSpace(filter))
	visible := make([]int, 0, len(options))
	for i, opt := range options {
		if query == "" || strings.Contains(strings.ToLower(opt.Label), query) {
			visible = append(visible, i)
		}
	}
	return visible
}

// View renders the picker box.
func (m Model) View() string {
	width := m.boxWidth
	if width == 0 {
		width = 40
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)

	var rows strings.Builder
	if len(m.visible) == 0 {
		rows.WriteString(emptyStyle.Render(" no matches"))
	}
	for i, optIndex := range m.visible {
		opt := m.options[optIndex]
		var line string
		if i == m.selected {
			labelStyle := lipgloss.NewStyle().Bold(true)
			if opt.Color != nil {
				labelStyle = labelStyle.Foreground(opt.Color)
			}
			line = styles.SelectionIndicatorStyle.Render(">") + labelStyle.Render(opt.Label)
		} else {
			labelStyle := lipgloss.NewStyle()
			if opt.Color != nil {
				labelStyle = labelStyle.Foreground(opt.Color)
			}
			line = " " + labelStyle.Render(opt.Label)
		}
		rows.WriteString(line)
		if i < len(m.visible)-1 {
			rows.WriteString("\n")
		}
	}

	dividerStyle := lipgloss.NewStyle().Foreground(styles.BorderDefaultColor)
	divider := dividerStyle.Render(strings.Repeat("─", width))

	content := titleStyle.Render(m.title) + "\n" +
		" " + m.filter.View() + "\n" +
		divider + "\n" +
		rows.String()

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderDefaultColor).
		Width(width)

	return boxStyle.Render(content)
}

// runBoxWidth sizes the picker box to the terminal: the full width minus
// the border, capped so wide terminals don't stretch the box.
func runBoxWidth(termWidth int) int {
	const maxWidth = 72
	width := termWidth - 4
	if width > maxWidth {
		return maxWidth
	}
	if width < 20 {
		return 20
	}
	return width
}

// Run displays the picker and blocks until the user confirms or cancels.
// The boolean is false when the picker was canceled or had no options.
// The picker draws on stderr so command output on stdout stays clean.
func Run(title string, options []Option) (Option, bool, error) {
	m := New(title, options)
	if w, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil {
		m = m.SetBoxWidth(runBoxWidth(w))
	}
	program := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	final, err := program.Run()
	if err != nil {
		return Option{}, false, fmt.Errorf("running picker: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Option{}, false, fmt.Errorf("unexpected picker model %T", final)
	}
	if choice, chosen := m.Choice(); chosen {
		return choice, true, nil
	}
	return Option{}, false, nil
}
