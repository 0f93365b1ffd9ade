package render

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	name    lipgloss.Style
	running lipgloss.Style
	stopped lipgloss.Style
	hot     lipgloss.Style
	value   lipgloss.Style
	label   lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		name:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		running: lipgloss.NewStyle().Foreground(lipgloss.Color("77")),
		stopped: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		hot:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
	}
}
