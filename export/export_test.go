package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"daybook/storage"
	"daybook/tasks"
)

func exportTasks() []tasks.Task {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	due := time.Date(2025, 3, 11, 17, 0, 0, 0, time.UTC)
	return []tasks.Task{
		{ID: "a1", Title: "Send invoice", Description: "to ACME, net 30", DueDate: &due, Status: tasks.StatusPending, CreatedAt: created, UpdatedAt: created},
		{ID: "b2", Title: "Café visit", Status: tasks.StatusCompleted, CreatedAt: created, UpdatedAt: created},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "csv", "All", exportTasks(), time.Now()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	want := []string{"a1", "Send invoice", "to ACME, net 30", "pending", "2025-03-11T17:00:00Z", "2025-03-10T09:00:00Z", "2025-03-10T09:00:00Z"}
	if diff := cmp.Diff(want, rows[1]); diff != "" {
		t.Errorf("Row mismatch (-want +got):\n%s", diff)
	}
	if rows[2][4] != "" {
		t.Errorf("Expected empty due date, got %q", rows[2][4])
	}
}

func TestWriteJSONUsesPersistedSchema(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "JSON", "All", exportTasks(), time.Now()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := storage.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Output does not decode: %v", err)
	}
	if diff := cmp.Diff(exportTasks(), got); diff != "" {
		t.Errorf("Decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestWritePDF(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	for name, list := range map[string][]tasks.Task{"tasks": exportTasks(), "empty": nil} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, "pdf", "This week", list, now); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if !strings.HasPrefix(buf.String(), "%PDF-") {
				t.Errorf("Output does not look like a PDF: %q", buf.String()[:min(16, buf.Len())])
			}
		})
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "xlsx", "All", exportTasks(), time.Now())
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("Expected unknown format error, got %v", err)
	}
}
