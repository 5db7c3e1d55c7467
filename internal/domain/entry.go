package domain

import (
	"strings"
	"time"
)

type EntryID string

type EntryStatus string

const (
	StatusProcessing EntryStatus = "processing"
	StatusSuccess    EntryStatus = "success"
	StatusError      EntryStatus = "error"
)

// Entry is one unit of submitted work and its eventual result. An entry is
// created in processing state, resolved exactly once to success or error, and
// never mutated again except by deletion.
type Entry struct {
	ID        EntryID
	Name      string
	Status    EntryStatus
	Payload   Payload
	Err       string
	CreatedAt time.Time
}

func (e Entry) Resolved() bool {
	return e.Status == StatusSuccess || e.Status == StatusError
}

type PayloadKind string

const (
	PayloadText PayloadKind = "text"
	PayloadMath PayloadKind = "math"
	PayloadSVG  PayloadKind = "svg"
	PayloadFile PayloadKind = "file"
)

// Payload is the tool-specific result content. The concrete types form a
// closed set keyed by PayloadKind.
type Payload interface {
	Kind() PayloadKind
}

// TextPayload carries OCR extractions, transcriptions and translations.
type TextPayload struct {
	Text string
}

func (TextPayload) Kind() PayloadKind { return PayloadText }

func (p TextPayload) WordCount() int {
	return len(strings.Fields(p.Text))
}

// MathPayload carries a recognized equation and its worked solution.
type MathPayload struct {
	LaTeX    string
	Solution string
}

func (MathPayload) Kind() PayloadKind { return PayloadMath }

// SVGPayload carries raw vectorized sketch markup.
type SVGPayload struct {
	Markup string
}

func (SVGPayload) Kind() PayloadKind { return PayloadSVG }

// FilePayload carries a downloadable blob, such as a processed PDF or
// synthesized audio.
type FilePayload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (FilePayload) Kind() PayloadKind { return PayloadFile }
