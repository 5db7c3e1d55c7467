package domain

import "time"

// HistoryRecord is a server-persisted record of a past completed tool
// invocation, fetched read-only.
type HistoryRecord struct {
	ID        string
	TaskType  string
	Input     string
	Output    string
	Timestamp time.Time
}

// Entry converts a history record into a result entry. Records come back
// already completed, so the entry is created directly in success state and
// never passes through processing.
func (r HistoryRecord) Entry() Entry {
	name := r.Input
	if name == "" {
		name = r.TaskType
	}

	return Entry{
		ID:        EntryID(r.ID),
		Name:      name,
		Status:    StatusSuccess,
		Payload:   TextPayload{Text: r.Output},
		CreatedAt: r.Timestamp,
	}
}
