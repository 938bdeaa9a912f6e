package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"daybook/export"
	"daybook/schedule"
	"daybook/tasks"
)

// Views lists the names accepted by View
var Views = []string{"today", "tomorrow", "week", "month", "overdue", "all"}

// View selects the tasks shown under a named view, sorted by due date.
// It returns a heading for the view alongside the tasks.
func View(name string, list []tasks.Task, now time.Time) (string, []tasks.Task, error) {
	var label string
	var selected []tasks.Task

	switch strings.ToLower(name) {
	case "today":
		label = "Tasks due today (" + now.Format("Mon Jan 2") + ")"
		selected = schedule.ForToday(list, now)
	case "tomorrow":
		w := schedule.Tomorrow(now)
		label = "Tasks due tomorrow (" + w.Start.Format("Mon Jan 2") + ")"
		selected = schedule.InWindow(list, w)
	case "week":
		w := schedule.Week(now)
		label = fmt.Sprintf("Tasks due this week (%s - %s)", w.Start.Format("Mon Jan 2"), w.End.Format("Mon Jan 2"))
		selected = schedule.ForCurrentWeek(list, now)
	case "month":
		label = "Tasks due in " + now.Format("January 2006")
		selected = schedule.ForCurrentMonth(list, now)
	case "overdue":
		label = "Overdue tasks"
		selected = schedule.Overdue(list, now)
	case "all":
		label = "All tasks by due date"
		selected = list
	default:
		return "", nil, fmt.Errorf("unknown view %q (want %s)", name, strings.Join(Views, ", "))
	}

	return label, schedule.SortByDueDate(selected, true), nil
}

func init() {
	Register(&Command{
		Name:        "/today",
		Description: "List tasks due today",
		Handler: func(args []string) bool {
			printView("today")
			return false
		},
	})

	Register(&Command{
		Name:        "/tomorrow",
		Description: "List tasks due tomorrow",
		Handler: func(args []string) bool {
			printView("tomorrow")
			return false
		},
	})

	Register(&Command{
		Name:        "/week",
		Description: "List tasks due this week (Sunday through Saturday)",
		Handler: func(args []string) bool {
			printView("week")
			return false
		},
	})

	Register(&Command{
		Name:        "/month",
		Description: "List tasks due this calendar month",
		Handler: func(args []string) bool {
			printView("month")
			return false
		},
	})

	Register(&Command{
		Name:        "/overdue",
		Description: "List tasks past their due date that are not completed",
		Handler: func(args []string) bool {
			printView("overdue")
			return false
		},
	})

	Register(&Command{
		Name:        "/sorted",
		Description: "List all tasks sorted by due date; tasks without a due date come last",
		Params: []Param{
			{Name: "order", Type: ParamTypeString, Description: "asc (default) or desc", Required: false},
		},
		Handler: func(args []string) bool {
			ascending := true
			if len(args) > 0 {
				switch strings.ToLower(args[0]) {
				case "asc":
				case "desc":
					ascending = false
				default:
					fmt.Println("Usage: /sorted [asc|desc]")
					return false
				}
			}

			list := schedule.SortByDueDate(GetStore().List(), ascending)
			fmt.Println("Tasks by due date:")
			if len(list) == 0 {
				fmt.Println("  No tasks yet. Add one with /add <title>")
				return false
			}
			printTasks(list, clock())
			return false
		},
	})

	Register(&Command{
		Name:        "/export",
		Description: "Write a view to a file as pdf, csv or json",
		Hidden:      true,
		Handler: func(args []string) bool {
			if len(args) < 3 {
				fmt.Printf("Usage: /export <%s> <%s> <file>\n", strings.Join(Views, "|"), strings.Join(export.Formats, "|"))
				return false
			}

			n, err := ExportView(args[0], args[1], strings.Join(args[2:], " "))
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			fmt.Printf("Exported %d tasks to %s\n", n, strings.Join(args[2:], " "))
			return false
		},
	})
}

// ExportView writes the named view of the current store to path and
// returns how many tasks were written.
func ExportView(view, format, path string) (int, error) {
	if !export.Supported(format) {
		return 0, fmt.Errorf("unknown format %s (want %s)", format, strings.Join(export.Formats, ", "))
	}

	now := clock()
	label, list, err := View(view, GetStore().List(), now)
	if err != nil {
		return 0, err
	}

	// Render fully before touching the target so a failure leaves it intact
	var buf bytes.Buffer
	if err := export.Write(&buf, format, label, list, now); err != nil {
		return 0, fmt.Errorf("failed to export %s: %w", view, err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(list), nil
}

// writeFileAtomic writes data to a temp file next to path and renames it over path
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func printView(name string) {
	now := clock()
	label, list, err := View(name, GetStore().List(), now)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("%s:\n", label)
	if len(list) == 0 {
		fmt.Println("  No tasks due")
		return
	}
	printTasks(list, now)

	var open int
	for _, t := range list {
		if t.Status != tasks.StatusCompleted {
			open++
		}
	}
	fmt.Printf("\n%d of %d open\n", open, len(list))
}
