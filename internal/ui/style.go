// Package ui renders the optional live dashboard and the styled error
// output of the command line.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors defines the color scheme used throughout the application
type Colors struct {
	Subtle    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Special   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
}

var defaultColors = Colors{
	Subtle:    lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"},
	Highlight: lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"},
	Special:   lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"},
	Error:     lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF4040"},
}

// Style is the set of styles the dashboard and CLI use.
type Style struct {
	Title       lipgloss.Style
	Label       lipgloss.Style
	Value       lipgloss.Style
	Active      lipgloss.Style
	Action      lipgloss.Style
	Failed      lipgloss.Style
	Help        lipgloss.Style
	Error       lipgloss.Style
	ErrorBox    lipgloss.Style
	Countdown   lipgloss.Style
	ProgressBar lipgloss.Style
}

// DefaultStyle returns the default style configuration
func DefaultStyle() Style {
	base := lipgloss.NewStyle().
		PaddingLeft(1).
		PaddingRight(1)

	return Style{
		Title: base.
			Bold(true).
			Foreground(defaultColors.Highlight),
		Label: base.
			Foreground(defaultColors.Subtle).
			Width(12),
		Value:  lipgloss.NewStyle(),
		Active: base.Foreground(defaultColors.Special),
		Action: base.Foreground(defaultColors.Special),
		Failed: base.Foreground(defaultColors.Error),
		Help:   base.Foreground(defaultColors.Subtle),
		Error:  base.Foreground(defaultColors.Error),
		ErrorBox: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(defaultColors.Error).
			Padding(0, 1),
		Countdown: base.
			Foreground(defaultColors.Highlight).
			Bold(true),
		ProgressBar: lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#333333"}),
	}
}

// Current holds the current style configuration
var Current = DefaultStyle()

// FormatError renders err for the terminal. Multi-paragraph messages get a
// bold header and a boxed body; single lines are just colored.
func FormatError(err error) string {
	msg := err.Error()
	parts := strings.SplitN(msg, "\n\n", 2)
	if len(parts) < 2 {
		return Current.Error.Render(msg)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(defaultColors.Error).
		Render(strings.TrimSpace(parts[0]))
	details := lipgloss.NewStyle().
		Foreground(defaultColors.Subtle).
		Render(parts[1])

	return Current.ErrorBox.Render(fmt.Sprintf("%s\n\n%s", header, details))
}
