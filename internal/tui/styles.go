package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.Color("#7D56F4")
	success = lipgloss.Color("#04B575")
	failure = lipgloss.Color("#FF0000")
	muted   = lipgloss.Color("#888888")
)

var (
	// Error styling
	ErrorStyle = lipgloss.NewStyle().
			Foreground(failure).
			Bold(true)

	// Success styling
	SuccessStyle = lipgloss.NewStyle().
			Foreground(success).
			Bold(true)

	// Paths and other secondary detail
	SubtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)
