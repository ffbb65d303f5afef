package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle uses ANSI 6 (cyan), readable on both light and dark terminals
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (green) for arguments and usage lines
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (gray) keeps descriptions dimmer than commands
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (yellow) for flags
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
