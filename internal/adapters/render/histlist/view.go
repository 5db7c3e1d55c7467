package histlist

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const previewWidth = 48

type RenderOptions struct {
	// Now anchors the relative timestamps. Zero falls back to absolute ones.
	Now time.Time
}

func renderView(records []domain.HistoryRecord, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("History"),
		s.header.Render(fmt.Sprintf("records: %d", len(records))),
	}

	if len(records) == 0 {
		lines = append(lines, s.empty.Render("No history yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, record := range records {
		lines = append(lines, renderRecord(record, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRecord(record domain.HistoryRecord, opts RenderOptions, s styles) string {
	age := s.age.Render(formatAge(record.Timestamp, opts.Now))
	if isOld(record.Timestamp, opts.Now) {
		age = s.ageOld.Render(formatAge(record.Timestamp, opts.Now))
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.id.Render(record.ID),
		"  ",
		s.kind.Render(kindLabel(record.TaskType)),
		"  ",
		s.input.Render(record.Input),
		"  ",
		s.preview.Render(previewText(record.Output)),
		"  ",
		age,
	)
}

// kindLabel pads the task type so the listing stays columnar.
func kindLabel(taskType string) string {
	if taskType == "" {
		taskType = "unknown"
	}
	return fmt.Sprintf("[%-6s]", taskType)
}

// previewText collapses the output to a single clipped line. Clipping counts
// runes so multibyte output is never split mid-character.
func previewText(output string) string {
	collapsed := strings.Join(strings.Fields(output), " ")
	if collapsed == "" {
		return "(empty)"
	}
	runes := []rune(collapsed)
	if len(runes) > previewWidth {
		return string(runes[:previewWidth-3]) + "..."
	}
	return collapsed
}

func formatAge(timestamp, now time.Time) string {
	if timestamp.IsZero() {
		return "unknown"
	}
	if now.IsZero() || timestamp.After(now) {
		return timestamp.Format("2006-01-02 15:04")
	}

	elapsed := now.Sub(timestamp)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		minutes := int(elapsed.Minutes())
		return fmt.Sprintf("%dm ago", minutes)
	case elapsed < 24*time.Hour:
		hours := int(elapsed.Hours())
		return fmt.Sprintf("%dh ago", hours)
	default:
		days := int(math.Floor(elapsed.Hours() / 24))
		if days > 30 {
			return timestamp.Format("2006-01-02")
		}
		return fmt.Sprintf("%dd ago", days)
	}
}

func isOld(timestamp, now time.Time) bool {
	if timestamp.IsZero() || now.IsZero() {
		return false
	}
	return now.Sub(timestamp) > 7*24*time.Hour
}
