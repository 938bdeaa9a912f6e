package schedule

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"daybook/tasks"
)

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func task(id string, due *time.Time) tasks.Task {
	created := at(2025, 1, 1, 0, 0)
	return tasks.Task{ID: id, Title: id, Status: tasks.StatusPending, DueDate: due, CreatedAt: created, UpdatedAt: created}
}

func ptr(t time.Time) *time.Time {
	return &t
}

func ids(list []tasks.Task) []string {
	result := []string{}
	for _, t := range list {
		result = append(result, t.ID)
	}
	return result
}

func TestStartAndEndOfDay(t *testing.T) {
	now := at(2025, 3, 12, 15, 30)

	if got, want := StartOfDay(now), at(2025, 3, 12, 0, 0); !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
	want := time.Date(2025, 3, 12, 23, 59, 59, 999999999, time.UTC)
	if got := EndOfDay(now); !got.Equal(want) {
		t.Errorf("EndOfDay = %v, want %v", got, want)
	}
}

func TestWeekStartsOnSunday(t *testing.T) {
	// 2025-03-12 is a Wednesday
	testCases := []struct {
		name      string
		now       time.Time
		wantStart time.Time
	}{
		{"wednesday", at(2025, 3, 12, 15, 0), at(2025, 3, 9, 0, 0)},
		{"sunday", at(2025, 3, 9, 0, 0), at(2025, 3, 9, 0, 0)},
		{"saturday night", time.Date(2025, 3, 15, 23, 59, 59, 0, time.UTC), at(2025, 3, 9, 0, 0)},
		{"across month", at(2025, 4, 2, 8, 0), at(2025, 3, 30, 0, 0)},
		{"across year", at(2026, 1, 1, 8, 0), at(2025, 12, 28, 0, 0)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := Week(tc.now)
			if !w.Start.Equal(tc.wantStart) {
				t.Errorf("Start = %v, want %v", w.Start, tc.wantStart)
			}
			if w.Start.Weekday() != time.Sunday {
				t.Errorf("Week should start on Sunday, got %s", w.Start.Weekday())
			}
			wantEnd := EndOfDay(tc.wantStart.AddDate(0, 0, 6))
			if !w.End.Equal(wantEnd) {
				t.Errorf("End = %v, want %v", w.End, wantEnd)
			}
		})
	}
}

func TestWeekAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// DST starts 2025-03-09 in New York
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, loc)
	w := Week(now)

	if w.Start.Day() != 9 || w.Start.Hour() != 0 {
		t.Errorf("Expected start at Mar 9 00:00 local, got %v", w.Start)
	}
	if w.End.Day() != 15 || w.End.Hour() != 23 {
		t.Errorf("Expected end at Mar 15 23:59 local, got %v", w.End)
	}
}

func TestMonth(t *testing.T) {
	testCases := []struct {
		name    string
		now     time.Time
		wantEnd time.Time
	}{
		{"february", at(2025, 2, 14, 12, 0), EndOfDay(at(2025, 2, 28, 0, 0))},
		{"leap february", at(2024, 2, 1, 0, 0), EndOfDay(at(2024, 2, 29, 0, 0))},
		{"december", at(2025, 12, 31, 23, 0), EndOfDay(at(2025, 12, 31, 0, 0))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := Month(tc.now)
			y, m, _ := tc.now.Date()
			if want := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC); !w.Start.Equal(want) {
				t.Errorf("Start = %v, want %v", w.Start, want)
			}
			if !w.End.Equal(tc.wantEnd) {
				t.Errorf("End = %v, want %v", w.End, tc.wantEnd)
			}
		})
	}
}

func TestWindowBoundariesAreInclusive(t *testing.T) {
	now := at(2025, 3, 12, 15, 0)
	day := Today(now)
	week := Week(now)
	month := Month(now)

	list := []tasks.Task{
		task("day-start", ptr(day.Start)),
		task("day-end", ptr(day.End)),
		task("before-day", ptr(day.Start.Add(-time.Nanosecond))),
		task("after-day", ptr(day.End.Add(time.Nanosecond))),
		task("week-start", ptr(week.Start)),
		task("week-end", ptr(week.End)),
		task("after-week", ptr(week.End.Add(time.Nanosecond))),
		task("month-start", ptr(month.Start)),
		task("month-end", ptr(month.End)),
		task("after-month", ptr(month.End.Add(time.Nanosecond))),
	}

	if diff := cmp.Diff([]string{"day-start", "day-end"}, ids(ForToday(list, now))); diff != "" {
		t.Errorf("ForToday mismatch (-want +got):\n%s", diff)
	}

	wantWeek := []string{"day-start", "day-end", "before-day", "after-day", "week-start", "week-end"}
	if diff := cmp.Diff(wantWeek, ids(ForCurrentWeek(list, now))); diff != "" {
		t.Errorf("ForCurrentWeek mismatch (-want +got):\n%s", diff)
	}

	wantMonth := []string{"day-start", "day-end", "before-day", "after-day", "week-start", "week-end", "after-week", "month-start", "month-end"}
	if diff := cmp.Diff(wantMonth, ids(ForCurrentMonth(list, now))); diff != "" {
		t.Errorf("ForCurrentMonth mismatch (-want +got):\n%s", diff)
	}
}

func TestScenarios(t *testing.T) {
	// Wednesday, so tomorrow is inside the same week
	now := at(2025, 3, 12, 15, 0)
	a := task("A", ptr(at(2025, 3, 12, 10, 0)))
	b := task("B", ptr(at(2025, 3, 13, 9, 0)))
	c := task("C", nil)
	list := []tasks.Task{a, b, c}

	today := ids(ForToday(list, now))
	if diff := cmp.Diff([]string{"A"}, today); diff != "" {
		t.Errorf("Today mismatch (-want +got):\n%s", diff)
	}

	week := ids(ForCurrentWeek(list, now))
	if diff := cmp.Diff([]string{"A", "B"}, week); diff != "" {
		t.Errorf("Week mismatch (-want +got):\n%s", diff)
	}

	month := ids(ForCurrentMonth(list, now))
	if diff := cmp.Diff([]string{"A", "B"}, month); diff != "" {
		t.Errorf("Month mismatch (-want +got):\n%s", diff)
	}

	for _, ascending := range []bool{true, false} {
		sorted := SortByDueDate(list, ascending)
		if sorted[len(sorted)-1].ID != "C" {
			t.Errorf("ascending=%v: task without due date should sort last, got %v", ascending, ids(sorted))
		}
	}

	if got := ids(InWindow(list, Tomorrow(now))); len(got) != 1 || got[0] != "B" {
		t.Errorf("Tomorrow should contain only B, got %v", got)
	}
}

func TestSortByDueDate(t *testing.T) {
	d1 := ptr(at(2025, 3, 1, 9, 0))
	d2 := ptr(at(2025, 3, 2, 9, 0))
	list := []tasks.Task{
		task("none-1", nil),
		task("d2-a", d2),
		task("d1", d1),
		task("none-2", nil),
		task("d2-b", d2),
	}
	original := ids(list)

	asc := ids(SortByDueDate(list, true))
	if diff := cmp.Diff([]string{"d1", "d2-a", "d2-b", "none-1", "none-2"}, asc); diff != "" {
		t.Errorf("Ascending mismatch (-want +got):\n%s", diff)
	}

	desc := ids(SortByDueDate(list, false))
	if diff := cmp.Diff([]string{"d2-a", "d2-b", "d1", "none-1", "none-2"}, desc); diff != "" {
		t.Errorf("Descending mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(original, ids(list)); diff != "" {
		t.Errorf("Input slice was reordered (-want +got):\n%s", diff)
	}

	if got := SortByDueDate(nil, true); len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}

func TestFiltersDoNotAliasInput(t *testing.T) {
	now := at(2025, 3, 12, 15, 0)
	list := []tasks.Task{task("A", ptr(at(2025, 3, 12, 10, 0)))}

	got := ForToday(list, now)
	*got[0].DueDate = at(2030, 1, 1, 0, 0)
	got[0].Title = "changed"

	if !list[0].DueDate.Equal(at(2025, 3, 12, 10, 0)) || list[0].Title != "A" {
		t.Error("Filter result shares memory with its input")
	}
}

func TestOverdue(t *testing.T) {
	now := at(2025, 3, 12, 15, 0)
	late := task("late", ptr(at(2025, 3, 12, 14, 59)))
	done := task("done", ptr(at(2025, 3, 1, 0, 0)))
	done.Status = tasks.StatusCompleted
	future := task("future", ptr(at(2025, 3, 12, 15, 1)))
	undated := task("undated", nil)

	got := ids(Overdue([]tasks.Task{late, done, future, undated}, now))
	if diff := cmp.Diff([]string{"late"}, got); diff != "" {
		t.Errorf("Overdue mismatch (-want +got):\n%s", diff)
	}
}
