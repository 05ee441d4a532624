package tui

import "github.com/charmbracelet/lipgloss"

// Dashboard palette: teal for healthy, amber for degraded feeds.
const (
	colorAccent   = "#2AA198"
	colorHealthy  = "#10A778"
	colorDegraded = "#D7A02A"
	colorFailed   = "#DC322F"
	colorMuted    = "#7B8794"
	colorText     = "#FDF6E3"
)

var (
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorAccent)).
		MarginTop(1).
		MarginBottom(1)

	StatusStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorHealthy))

	WarnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorDegraded))

	ErrorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorFailed)).
		Bold(true)

	InfoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorMuted))

	BoxStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(colorAccent)).
		Padding(0, 2)

	HighlightStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorText)).
		Background(lipgloss.Color(colorAccent)).
		Padding(0, 1)
)
