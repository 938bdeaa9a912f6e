// Package schedule derives day, week and month views from a task snapshot.
//
// All functions are pure: they never modify the slice they are given and
// always return a new one. Windows are inclusive at both ends and weeks
// start on Sunday.
package schedule

import (
	"sort"
	"time"

	"daybook/tasks"
)

// WeekStart is the first day of a week window
const WeekStart = time.Sunday

// Window is an inclusive range of instants
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within [Start, End]
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// StartOfDay returns midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Day returns the window covering t's calendar day
func Day(t time.Time) Window {
	return Window{Start: StartOfDay(t), End: EndOfDay(t)}
}

// Today returns the window covering now's calendar day
func Today(now time.Time) Window {
	return Day(now)
}

// Tomorrow returns the window covering the day after now
func Tomorrow(now time.Time) Window {
	return Day(StartOfDay(now).AddDate(0, 0, 1))
}

// Week returns the Sunday-to-Saturday window containing now
func Week(now time.Time) Window {
	offset := (int(now.Weekday()) - int(WeekStart) + 7) % 7
	start := StartOfDay(now).AddDate(0, 0, -offset)
	return Window{Start: start, End: EndOfDay(start.AddDate(0, 0, 6))}
}

// Month returns the window from the first to the last day of now's month
func Month(now time.Time) Window {
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, now.Location())
	return Window{Start: first, End: EndOfDay(last)}
}

// InWindow returns the tasks whose due date falls inside w.
// Tasks without a due date are never included.
func InWindow(list []tasks.Task, w Window) []tasks.Task {
	result := []tasks.Task{}
	for _, t := range list {
		if t.DueDate == nil {
			continue
		}
		if w.Contains(*t.DueDate) {
			result = append(result, t.Clone())
		}
	}
	return result
}

// ForToday returns the tasks due on now's calendar day
func ForToday(list []tasks.Task, now time.Time) []tasks.Task {
	return InWindow(list, Today(now))
}

// ForCurrentWeek returns the tasks due in now's week
func ForCurrentWeek(list []tasks.Task, now time.Time) []tasks.Task {
	return InWindow(list, Week(now))
}

// ForCurrentMonth returns the tasks due in now's month
func ForCurrentMonth(list []tasks.Task, now time.Time) []tasks.Task {
	return InWindow(list, Month(now))
}

// SortByDueDate returns a stably sorted copy of list. Tasks without a due
// date come after every dated task regardless of direction.
func SortByDueDate(list []tasks.Task, ascending bool) []tasks.Task {
	sorted := make([]tasks.Task, len(list))
	for i, t := range list {
		sorted[i] = t.Clone()
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].DueDate, sorted[j].DueDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case ascending:
			return a.Before(*b)
		default:
			return a.After(*b)
		}
	})
	return sorted
}

// IsOverdue reports whether t is past its due date and not completed
func IsOverdue(t tasks.Task, now time.Time) bool {
	return t.DueDate != nil && t.Status != tasks.StatusCompleted && t.DueDate.Before(now)
}

// Overdue returns the overdue tasks in list
func Overdue(list []tasks.Task, now time.Time) []tasks.Task {
	result := []tasks.Task{}
	for _, t := range list {
		if IsOverdue(t, now) {
			result = append(result, t.Clone())
		}
	}
	return result
}
