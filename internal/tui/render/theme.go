// Package render turns dashboard state into terminal text.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/smarthome-dash/internal/colors"
	"github.com/cristianoliveira/smarthome-dash/internal/preferences"
)

// Theme holds the styles for one colour scheme.
type Theme struct {
	Name   string
	Text   lipgloss.Style
	Muted  lipgloss.Style
	Title  lipgloss.Style
	Accent lipgloss.Style
	Danger lipgloss.Style
	OK     lipgloss.Style
	Card   lipgloss.Style
	Modal  lipgloss.Style
	Badge  lipgloss.Style
}

// ThemeFor returns the theme for a stored theme name. Unknown names get the
// dark theme.
func ThemeFor(name string) Theme {
	if name == preferences.ThemeLight {
		return lightTheme()
	}
	return darkTheme()
}

func darkTheme() Theme {
	border := lipgloss.Color("240")
	return Theme{
		Name:   preferences.ThemeDark,
		Text:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ansiColorNumber(colors.Cyan))),
		Accent: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ansiColorNumber(colors.Blue))),
		Danger: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ansiColorNumber(colors.Red))),
		OK:     lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Green))),
		Card:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		Modal: lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(ansiColorNumber(colors.Red))).Padding(1, 2),
		Badge: lipgloss.NewStyle().Bold(true).
			Background(lipgloss.Color(ansiColorNumber(colors.Red))).Foreground(lipgloss.Color("15")).Padding(0, 1),
	}
}

func lightTheme() Theme {
	border := lipgloss.Color("250")
	return Theme{
		Name:   preferences.ThemeLight,
		Text:   lipgloss.NewStyle().Foreground(lipgloss.Color("235")),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ansiColorNumber(colors.Blue))),
		Accent: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ansiColorNumber(colors.Magenta))),
		Danger: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ansiColorNumber(colors.Red))),
		OK:     lipgloss.NewStyle().Foreground(lipgloss.Color(ansiColorNumber(colors.Green))),
		Card:   lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(border).Padding(0, 1),
		Modal: lipgloss.NewStyle().Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color(ansiColorNumber(colors.Red))).Padding(1, 2),
		Badge: lipgloss.NewStyle().Bold(true).
			Background(lipgloss.Color(ansiColorNumber(colors.Red))).Foreground(lipgloss.Color("15")).Padding(0, 1),
	}
}

// ansiColorNumber extracts the color number from an ANSI escape sequence.
// Example: "\033[0;34m" -> "34"
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return ""
	}
	return ansi[lastSemicolon+1 : len(ansi)-1]
}
