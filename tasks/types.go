package tasks

import (
	"fmt"
	"strings"
	"time"
)

// Status is the progress state of a task
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ValidStatuses lists all valid status values
var ValidStatuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// IsValid checks if s is one of the known statuses
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus converts user input to a Status. Besides the canonical names it
// accepts the aliases todo, in_progress, inprogress, started and done.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "todo":
		return StatusPending, nil
	case "in-progress", "in_progress", "inprogress", "started":
		return StatusInProgress, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", s)}
}

// Task is a unit of work tracked by the store
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ShortID returns the 8-char id prefix used for display
func (t Task) ShortID() string {
	if len(t.ID) <= 8 {
		return t.ID
	}
	return t.ID[:8]
}

// HasDueDate reports whether the task has a due date
func (t Task) HasDueDate() bool {
	return t.DueDate != nil
}

// Clone returns a copy that shares no memory with t
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// Patch holds the fields an update may change. Nil fields are left as they are.
// ClearDueDate removes the due date and takes precedence over DueDate.
type Patch struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Status       *Status
}
