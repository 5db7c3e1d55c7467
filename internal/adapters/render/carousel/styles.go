package carousel

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	empty      lipgloss.Style
	entryName  lipgloss.Style
	activeName lipgloss.Style
	processing lipgloss.Style
	success    lipgloss.Style
	failure    lipgloss.Style
	detail     lipgloss.Style
	meta       lipgloss.Style
	body       lipgloss.Style
	navHint    lipgloss.Style
	navEdge    lipgloss.Style
	section    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		empty:      lipgloss.NewStyle().Faint(true),
		entryName:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		activeName: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		processing: lipgloss.NewStyle().Foreground(lipgloss.Color("69")),
		success:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failure:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		meta:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		body:       lipgloss.NewStyle().MarginLeft(2),
		navHint:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		navEdge:    lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		section:    lipgloss.NewStyle().MarginTop(1),
	}
}
