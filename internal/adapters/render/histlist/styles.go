package histlist

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	empty   lipgloss.Style
	id      lipgloss.Style
	kind    lipgloss.Style
	input   lipgloss.Style
	preview lipgloss.Style
	age     lipgloss.Style
	ageOld  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		empty:   lipgloss.NewStyle().Faint(true),
		id:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		kind:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		input:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		preview: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		age:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		ageOld:  lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
