package commands

import (
	"fmt"
	"strings"
	"time"

	"daybook/schedule"
	"daybook/tasks"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

func init() {
	Register(&Command{
		Name:        "/add",
		Description: "Add a task",
		Params: []Param{
			{Name: "title", Type: ParamTypeString, Description: "The title of the task to create", Required: true},
			{Name: "description", Type: ParamTypeString, Description: "Optional longer description", Required: false},
		},
		Handler: func(args []string) bool {
			title, description := splitDescription(args)
			if title == "" {
				fmt.Println("Usage: /add <title> [-- description]")
				return false
			}

			task, err := GetStore().Create(title, description, nil)
			if err != nil {
				fmt.Printf("Error creating task: %v\n", err)
				return false
			}

			fmt.Printf("Created task: %s (ID: %s)\n", task.Title, task.ShortID())
			return false
		},
	})

	Register(&Command{
		Name:        "/tasks",
		Description: "List all tasks in the order they were added",
		Handler: func(args []string) bool {
			list := GetStore().List()

			fmt.Println("Tasks:")
			if len(list) == 0 {
				fmt.Println("  No tasks yet. Add one with /add <title>")
				return false
			}
			printTasks(list, clock())
			return false
		},
	})

	Register(&Command{
		Name:        "/show",
		Description: "Show all fields of a task",
		Params: []Param{
			{Name: "task_id", Type: ParamTypeString, Description: "The ID of the task", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /show <task-id>")
				return false
			}

			id, ok := resolveTask(args[0])
			if !ok {
				return false
			}
			t, _ := GetStore().Get(id)

			fmt.Printf("ID:          %s\n", t.ID)
			fmt.Printf("Title:       %s\n", t.Title)
			if t.Description != "" {
				fmt.Printf("Description: %s\n", t.Description)
			}
			fmt.Printf("Status:      %s\n", t.Status)
			if t.HasDueDate() {
				due := formatDue(*t.DueDate)
				if schedule.IsOverdue(t, clock()) {
					due += " (overdue)"
				}
				fmt.Printf("Due:         %s\n", due)
			}
			fmt.Printf("Created:     %s\n", t.CreatedAt.Local().Format(dateTimeLayout))
			fmt.Printf("Updated:     %s\n", t.UpdatedAt.Local().Format(dateTimeLayout))
			return false
		},
	})

	Register(&Command{
		Name:        "/rename",
		Description: "Change a task's title",
		Params: []Param{
			{Name: "task_id", Type: ParamTypeString, Description: "The ID of the task", Required: true},
			{Name: "title", Type: ParamTypeString, Description: "The new title", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) < 2 {
				fmt.Println("Usage: /rename <task-id> <title>")
				return false
			}

			id, ok := resolveTask(args[0])
			if !ok {
				return false
			}
			title := strings.Join(args[1:], " ")
			t, err := GetStore().Update(id, tasks.Patch{Title: &title})
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			fmt.Printf("Renamed task %s to %s\n", t.ShortID(), t.Title)
			return false
		},
	})

	Register(&Command{
		Name:        "/describe",
		Description: "Set a task's description",
		Params: []Param{
			{Name: "task_id", Type: ParamTypeString, Description: "The ID of the task", Required: true},
			{Name: "text", Type: ParamTypeString, Description: "The description, or 'none' to clear it", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) < 2 {
				fmt.Println("Usage: /describe <task-id> <text|none>")
				return false
			}

			id, ok := resolveTask(args[0])
			if !ok {
				return false
			}
			text := strings.Join(args[1:], " ")
			if strings.EqualFold(text, "none") {
				text = ""
			}
			t, err := GetStore().Update(id, tasks.Patch{Description: &text})
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			if text == "" {
				fmt.Printf("Cleared description for task %s\n", t.ShortID())
			} else {
				fmt.Printf("Updated description for task %s\n", t.ShortID())
			}
			return false
		},
	})

	Register(&Command{
		Name:        "/due",
		Description: "Set a task's due date",
		Params: []Param{
			{Name: "task_id", Type: ParamTypeString, Description: "The ID of the task", Required: true},
			{Name: "date", Type: ParamTypeString, Description: "Due date in YYYY-MM-DD format, or 'none' to clear", Required: true},
			{Name: "time", Type: ParamTypeString, Description: "Optional due time in HH:MM (24h) format", Required: false},
		},
		Handler: func(args []string) bool {
			if len(args) < 2 {
				fmt.Println("Usage: /due <task-id> <YYYY-MM-DD> [HH:MM] | none")
				return false
			}

			id, ok := resolveTask(args[0])
			if !ok {
				return false
			}

			if strings.EqualFold(args[1], "none") {
				t, err := GetStore().Update(id, tasks.Patch{ClearDueDate: true})
				if err != nil {
					fmt.Printf("Error: %v\n", err)
					return false
				}
				fmt.Printf("Cleared due date for task %s\n", t.ShortID())
				return false
			}

			due, err := parseDue(args[1:])
			if err != nil {
				fmt.Println("Error: Invalid date format. Use YYYY-MM-DD [HH:MM] (e.g., 2024-12-31 17:00)")
				return false
			}

			t, err := GetStore().Update(id, tasks.Patch{DueDate: &due})
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			fmt.Printf("Set due date for task %s to %s\n", t.ShortID(), formatDue(due))
			return false
		},
	})

	Register(&Command{
		Name:        "/status",
		Description: "Set a task's status (pending, in-progress, completed)",
		Params: []Param{
			{Name: "task_id", Type: ParamTypeString, Description: "The ID of the task", Required: true},
			{Name: "status", Type: ParamTypeString, Description: "One of pending, in-progress, completed", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) < 2 {
				fmt.Println("Usage: /status <task-id> <pending|in-progress|completed>")
				return false
			}

			status, err := tasks.ParseStatus(args[1])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}
			setStatus(args[0], status)
			return false
		},
	})

	Register(&Command{
		Name:        "/start",
		Description: "Mark a task as in progress",
		Params: []Param{
			{Name: "task_id", Type: ParamTypeString, Description: "The ID of the task to start", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /start <task-id>")
				return false
			}
			setStatus(args[0], tasks.StatusInProgress)
			return false
		},
	})

	Register(&Command{
		Name:        "/done",
		Description: "Mark a task as done",
		Params: []Param{
			{Name: "task_id", Type: ParamTypeString, Description: "The ID of the task to mark as done", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /done <task-id>")
				return false
			}
			setStatus(args[0], tasks.StatusCompleted)
			return false
		},
	})

	Register(&Command{
		Name:        "/undone",
		Description: "Mark a task as not done",
		Params: []Param{
			{Name: "task_id", Type: ParamTypeString, Description: "The ID of the task to mark as not done", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /undone <task-id>")
				return false
			}
			setStatus(args[0], tasks.StatusPending)
			return false
		},
	})

	Register(&Command{
		Name:        "/toggle",
		Description: "Toggle a task between done and not done",
		Params: []Param{
			{Name: "task_id", Type: ParamTypeString, Description: "The ID of the task to toggle", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /toggle <task-id>")
				return false
			}

			id, ok := resolveTask(args[0])
			if !ok {
				return false
			}
			t, err := GetStore().Toggle(id)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			fmt.Printf("Marked task %s as %s %s\n", t.ShortID(), t.Status, statusBox(t.Status))
			return false
		},
	})

	Register(&Command{
		Name:        "/deltask",
		Description: "Delete a task",
		Destructive: true,
		Params: []Param{
			{Name: "task_id", Type: ParamTypeString, Description: "The ID of the task to delete", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /deltask <task-id>")
				return false
			}

			id, ok := resolveTask(args[0])
			if !ok {
				return false
			}
			t, _ := GetStore().Get(id)
			if !GetStore().Delete(id) {
				fmt.Printf("Error: %v\n", &tasks.NotFoundError{ID: id})
				return false
			}

			fmt.Printf("Deleted task: %s (%s)\n", t.Title, t.ShortID())
			return false
		},
	})
}

// splitDescription splits "/add" arguments at a "--" token into title and description
func splitDescription(args []string) (string, string) {
	for i, a := range args {
		if a == "--" {
			return strings.Join(args[:i], " "), strings.Join(args[i+1:], " ")
		}
	}
	return strings.Join(args, " "), ""
}

func setStatus(arg string, status tasks.Status) {
	id, ok := resolveTask(arg)
	if !ok {
		return
	}

	t, err := GetStore().SetStatus(id, status)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Marked task %s as %s %s\n", t.ShortID(), t.Status, statusBox(t.Status))
}

// parseDue reads "YYYY-MM-DD" or "YYYY-MM-DD HH:MM" in local time. A date
// without a time is due at the end of that day.
func parseDue(args []string) (time.Time, error) {
	if len(args) >= 2 {
		return time.ParseInLocation(dateTimeLayout, args[0]+" "+args[1], time.Local)
	}
	day, err := time.ParseInLocation(dateLayout, args[0], time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.EndOfDay(day), nil
}

// formatDue prints a due date, omitting the time for end-of-day deadlines
func formatDue(due time.Time) string {
	due = due.Local()
	if due.Equal(schedule.EndOfDay(due)) {
		return due.Format(dateLayout)
	}
	return due.Format(dateTimeLayout)
}

func statusBox(s tasks.Status) string {
	switch s {
	case tasks.StatusCompleted:
		return "[✓]"
	case tasks.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

// printTasks lists tasks one per line; overdue tasks are marked with "!"
func printTasks(list []tasks.Task, now time.Time) {
	for _, t := range list {
		marker := " "
		if schedule.IsOverdue(t, now) {
			marker = "!"
		}

		var extras []string
		if t.HasDueDate() {
			extras = append(extras, "due "+formatDue(*t.DueDate))
		}
		if t.Description != "" {
			extras = append(extras, t.Description)
		}

		extraStr := ""
		if len(extras) > 0 {
			extraStr = " (" + strings.Join(extras, ", ") + ")"
		}

		fmt.Printf(" %s%s [%s] %s%s\n", marker, statusBox(t.Status), t.ShortID(), t.Title, extraStr)
	}
}
