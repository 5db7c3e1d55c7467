package carousel

import (
	"fmt"
	"strings"

	"github.com/bnema/intelliscan-cli/internal/application"
	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Title string
	// MaxBodyLines truncates long text payloads; 0 means no limit.
	MaxBodyLines int
}

func renderView(snapshot application.ResultSnapshot, opts RenderOptions, s styles) string {
	title := opts.Title
	if title == "" {
		title = "Results"
	}

	lines := []string{s.title.Render(title)}

	if snapshot.Empty() {
		lines = append(lines, s.empty.Render("No results yet. Submit a file to get started."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.header.Render(fmt.Sprintf("results: %d (viewing %d of %d)",
		len(snapshot.Entries), snapshot.Selected+1, len(snapshot.Entries))))
	lines = append(lines, renderStrip(snapshot, s))

	if active, ok := snapshot.Active(); ok {
		lines = append(lines, s.section.Render(renderEntry(active, opts, s)))
	}

	if len(snapshot.Entries) > 1 {
		lines = append(lines, s.section.Render(renderNav(snapshot, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStrip(snapshot application.ResultSnapshot, s styles) string {
	parts := make([]string, 0, len(snapshot.Entries))
	for i, entry := range snapshot.Entries {
		glyph := statusGlyph(entry.Status, s)
		name := s.entryName.Render(entry.Name)
		if i == snapshot.Selected {
			name = s.activeName.Render(entry.Name)
		}
		parts = append(parts, glyph+" "+name)
	}

	return strings.Join(parts, s.meta.Render("  |  "))
}

func renderEntry(entry domain.Entry, opts RenderOptions, s styles) string {
	header := s.activeName.Render(entry.Name) + " " + statusLabel(entry.Status, s)

	var body string
	switch entry.Status {
	case domain.StatusProcessing:
		body = s.processing.Render("Analyzing...")
	case domain.StatusError:
		body = s.failure.Render(entry.Err)
	case domain.StatusSuccess:
		body = renderPayload(entry.Payload, opts, s)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, s.body.Render(body))
}

func renderPayload(payload domain.Payload, opts RenderOptions, s styles) string {
	switch p := payload.(type) {
	case domain.TextPayload:
		meta := s.meta.Render(fmt.Sprintf("%d words", p.WordCount()))
		return lipgloss.JoinVertical(lipgloss.Left, meta, s.detail.Render(clipLines(p.Text, opts.MaxBodyLines)))
	case domain.MathPayload:
		return lipgloss.JoinVertical(lipgloss.Left,
			s.meta.Render("equation: ")+s.detail.Render(p.LaTeX),
			s.meta.Render("solution: ")+s.detail.Render(clipLines(p.Solution, opts.MaxBodyLines)),
		)
	case domain.SVGPayload:
		return s.meta.Render(fmt.Sprintf("SVG markup, %d bytes", len(p.Markup)))
	case domain.FilePayload:
		name := p.Filename
		if name == "" {
			name = "download"
		}
		return s.meta.Render(fmt.Sprintf("%s (%s, %d bytes)", name, p.ContentType, len(p.Data)))
	default:
		return s.empty.Render("no content")
	}
}

func renderNav(snapshot application.ResultSnapshot, s styles) string {
	prev := s.navHint.Render("<- prev")
	if snapshot.Selected == 0 {
		prev = s.navEdge.Render("<- prev")
	}
	next := s.navHint.Render("next ->")
	if snapshot.Selected == len(snapshot.Entries)-1 {
		next = s.navEdge.Render("next ->")
	}

	return prev + s.meta.Render("  |  ") + next
}

func statusGlyph(status domain.EntryStatus, s styles) string {
	switch status {
	case domain.StatusProcessing:
		return s.processing.Render("~")
	case domain.StatusSuccess:
		return s.success.Render("+")
	case domain.StatusError:
		return s.failure.Render("x")
	default:
		return s.empty.Render("?")
	}
}

func statusLabel(status domain.EntryStatus, s styles) string {
	switch status {
	case domain.StatusProcessing:
		return s.processing.Render("[processing]")
	case domain.StatusSuccess:
		return s.success.Render("[success]")
	case domain.StatusError:
		return s.failure.Render("[error]")
	default:
		return ""
	}
}

func clipLines(text string, limit int) string {
	if limit <= 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) <= limit {
		return text
	}

	clipped := append([]string{}, lines[:limit]...)
	clipped = append(clipped, fmt.Sprintf("... (%d more lines)", len(lines)-limit))
	return strings.Join(clipped, "\n")
}
