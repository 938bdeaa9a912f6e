// Package export renders a task view as PDF, CSV or JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"daybook/schedule"
	"daybook/storage"
	"daybook/tasks"
)

// Formats lists the supported output formats
var Formats = []string{"pdf", "csv", "json"}

const dueLayout = "2006-01-02 15:04"

// Supported reports whether format is one Write can render
func Supported(format string) bool {
	for _, f := range Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// Write renders list in the given format. now decides the overdue markers.
func Write(w io.Writer, format, title string, list []tasks.Task, now time.Time) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := storage.Encode(list)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case "csv":
		return writeCSV(w, list)
	case "pdf":
		return writePDF(w, title, list, now)
	default:
		return fmt.Errorf("unknown format %s", format)
	}
}

func writeCSV(w io.Writer, list []tasks.Task) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "title", "description", "status", "due_date", "created_at", "updated_at"})
	for _, t := range list {
		due := ""
		if t.HasDueDate() {
			due = t.DueDate.Format(time.RFC3339)
		}
		_ = cw.Write([]string{t.ID, t.Title, t.Description, string(t.Status), due,
			t.CreatedAt.Format(time.RFC3339), t.UpdatedAt.Format(time.RFC3339)})
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, title string, list []tasks.Task, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, tr(title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, "Generated "+now.Format(dueLayout))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	if len(list) == 0 {
		pdf.Cell(40, 6, "No tasks")
	}
	for _, t := range list {
		box := "[ ]"
		switch t.Status {
		case tasks.StatusCompleted:
			box = "[x]"
		case tasks.StatusInProgress:
			box = "[~]"
		}

		line := fmt.Sprintf("%s %s", box, t.Title)
		if t.HasDueDate() {
			line += "  (due " + t.DueDate.Format(dueLayout) + ")"
		}
		if schedule.IsOverdue(t, now) {
			line += "  OVERDUE"
		}
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)

		if t.Description != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, tr("    "+t.Description), "0", "L", false)
			pdf.SetFont("Arial", "", 10)
		}
	}

	return pdf.Output(w)
}
