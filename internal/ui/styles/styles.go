// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#CCCCCC"} // Main/primary text
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Hints, help text
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"} // Description/body text

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#8C8C8C"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // Success states
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"} // Warnings
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Errors

	// Scope accents: user droids green, project overrides mauve
	ScopeUserColor    = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	ScopeProjectColor = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"}

	// Overlay colors (picker box)
	OverlayTitleColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#C9C9C9"}

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}

	// Selection indicator style (used for ">" prefix in the picker)
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	// HeaderStyle renders section headers and table headings.
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)

	// MutedStyle renders hints and secondary detail.
	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	// DescriptionStyle renders droid descriptions in listings.
	DescriptionStyle = lipgloss.NewStyle().Foreground(TextDescriptionColor)

	// WarningStyle renders advisory findings.
	WarningStyle = lipgloss.NewStyle().Foreground(StatusWarningColor)

	// SuccessStyle renders success markers.
	SuccessStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)

	// ErrorStyle renders failure markers.
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)

	// DiffAddStyle and DiffDelStyle color diff lines.
	DiffAddStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	DiffDelStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)
)
