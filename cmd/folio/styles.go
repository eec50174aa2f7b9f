package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#101F38"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#78716c"))
	tagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	cardStyle  = lipgloss.NewStyle().PaddingLeft(2).MarginBottom(1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#e1e4e8"))
)
