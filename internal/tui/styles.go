package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle       = lipgloss.NewStyle().Padding(1, 2)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	helpStyle      = lipgloss.NewStyle().Faint(true)
	statusStyle    = lipgloss.NewStyle().Italic(true)
	disabledStyle  = lipgloss.NewStyle().Faint(true)
	separatorStyle = lipgloss.NewStyle().Faint(true)
)
