package api

import (
	"context"
	"net/url"
	"time"

	"github.com/bnema/intelliscan-cli/internal/domain"
)

type historyRecordPayload struct {
	ID        string    `json:"id"`
	TaskType  string    `json:"taskType"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Timestamp time.Time `json:"timestamp"`
}

// History lists past completed invocations, newest first. kind filters by a
// case-insensitive partial match on the record's task type; empty lists
// everything.
func (c *Client) History(ctx context.Context, kind domain.ToolKind) ([]domain.HistoryRecord, error) {
	path := "/history/"
	if kind != "" {
		path += "?type=" + url.QueryEscape(string(kind))
	}

	var resp []historyRecordPayload
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}

	records := make([]domain.HistoryRecord, 0, len(resp))
	for _, record := range resp {
		records = append(records, domain.HistoryRecord{
			ID:        record.ID,
			TaskType:  record.TaskType,
			Input:     record.Input,
			Output:    record.Output,
			Timestamp: record.Timestamp,
		})
	}

	return records, nil
}

func (c *Client) DeleteHistory(ctx context.Context, id string) error {
	return c.deleteJSON(ctx, "/history/"+url.PathEscape(id))
}
