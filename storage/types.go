package storage

import (
	"fmt"
	"time"

	"daybook/tasks"
)

// timeFormat round-trips every time.Time instant exactly
const timeFormat = time.RFC3339Nano

// Record is the persisted form of a task. Dates are kept as text and
// converted field by field in encodeTask and decodeRecord.
type Record struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func encodeTask(t tasks.Task) Record {
	r := Record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.Format(timeFormat),
		UpdatedAt:   t.UpdatedAt.Format(timeFormat),
	}
	if t.DueDate != nil {
		r.DueDate = t.DueDate.Format(timeFormat)
	}
	return r
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(timeFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %s: %w", field, err)
	}
	return t, nil
}

func decodeRecord(r Record) (tasks.Task, error) {
	if r.ID == "" {
		return tasks.Task{}, fmt.Errorf("record without id")
	}

	status := tasks.Status(r.Status)
	if !status.IsValid() {
		return tasks.Task{}, fmt.Errorf("task %s: unknown status %q", r.ID, r.Status)
	}

	created, err := parseTime("createdAt", r.CreatedAt)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}
	updated, err := parseTime("updatedAt", r.UpdatedAt)
	if err != nil {
		return tasks.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}

	t := tasks.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      status,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
	if r.DueDate != "" {
		due, err := parseTime("dueDate", r.DueDate)
		if err != nil {
			return tasks.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
		}
		t.DueDate = &due
	}
	return t, nil
}

// Records converts tasks to their persisted form
func Records(list []tasks.Task) []Record {
	records := make([]Record, len(list))
	for i, t := range list {
		records[i] = encodeTask(t)
	}
	return records
}
