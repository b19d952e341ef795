package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the picker's visual style.
type Theme struct {
	Title    lipgloss.Style
	Cursor   lipgloss.Style
	Checked  lipgloss.Style
	Path     lipgloss.Style
	Muted    lipgloss.Style
	Footer   lipgloss.Style
	Selected lipgloss.Style
}

// DefaultTheme is used when no theme is given.
var DefaultTheme = Theme{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7AA2F7")).
		MarginBottom(1),
	Cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E0AF68")).Bold(true),
	Checked:  lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECE6A")),
	Path:     lipgloss.NewStyle().Foreground(lipgloss.Color("#C0CAF5")),
	Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#565F89")),
	Footer:   lipgloss.NewStyle().MarginTop(1),
	Selected: lipgloss.NewStyle().Background(lipgloss.Color("#292E42")),
}
