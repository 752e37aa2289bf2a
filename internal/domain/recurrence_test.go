package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTask(t *testing.T, title string, date Date, repeat Repeat) Task {
	t.Helper()
	task, err := NewTask(title, CategoryRoutine, date)
	require.NoError(t, err)
	task.Repeat = repeat
	return *task
}

func titles(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestOccurrencesForDate_OneOff(t *testing.T) {
	day := NewDate(2026, time.March, 2)
	task := mustTask(t, "Dentist", day, RepeatNone)

	assert.Len(t, OccurrencesForDate([]Task{task}, day), 1)
	assert.Empty(t, OccurrencesForDate([]Task{task}, day.AddDays(1)))

	task.AddException(day)
	assert.Empty(t, OccurrencesForDate([]Task{task}, day))
}

func TestOccurrencesForDate_Daily(t *testing.T) {
	start := NewDate(2026, time.March, 2)
	until := start.AddDays(5)
	task := mustTask(t, "Journal", start, RepeatDaily)
	task.RepeatUntil = &until
	task.AddException(start.AddDays(2))

	tests := []struct {
		name string
		day  Date
		want bool
	}{
		{"before start", start.AddDays(-1), false},
		{"first day", start, true},
		{"middle", start.AddDays(1), true},
		{"exception", start.AddDays(2), false},
		{"last day inclusive", until, true},
		{"after until", until.AddDays(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OccurrencesForDate([]Task{task}, tt.day)
			assert.Equal(t, tt.want, len(got) == 1)
			if tt.want {
				assert.Equal(t, tt.day, got[0].Date, "occurrence date is rebound")
			}
		})
	}
}

func TestOccurrencesForDate_WeeklyProperty(t *testing.T) {
	start := NewDate(2026, time.March, 4) // Wednesday
	until := start.AddDays(35)
	task := mustTask(t, "Long run", start, RepeatWeekly)
	task.RepeatUntil = &until
	task.AddException(start.AddDays(14))

	for d := start.AddDays(-10); !d.After(until.AddDays(10)); d = d.AddDays(1) {
		want := !d.Before(start) &&
			!task.HasException(d) &&
			d.Weekday() == start.Weekday() &&
			!d.After(until)

		got := len(OccurrencesForDate([]Task{task}, d)) == 1
		assert.Equal(t, want, got, "date %s", d)
	}
}

func TestOccurrencesForDate_DoesNotMutateSource(t *testing.T) {
	start := NewDate(2026, time.March, 2)
	task := mustTask(t, "Water plants", start, RepeatDaily)
	at := time.Date(2026, time.March, 2, 7, 0, 0, 0, time.UTC)
	end := at.Add(15 * time.Minute)
	task.StartAt, task.EndAt = &at, &end
	tasks := []Task{task}

	target := start.AddDays(3)
	occ := OccurrencesForDate(tasks, target)
	require.Len(t, occ, 1)

	occ[0].AddException(target)
	occ[0].Title = "changed"

	assert.Equal(t, start, tasks[0].Date)
	assert.Equal(t, "Water plants", tasks[0].Title)
	assert.Empty(t, tasks[0].Exceptions)
	assert.Equal(t, at, *occ[0].StartAt, "start time is not shifted")
}

func TestOccurrencesForDate_ExceptionOnlyHidesOneDay(t *testing.T) {
	start := NewDate(2026, time.March, 2)
	task := mustTask(t, "Stretch", start, RepeatDaily)
	d := start.AddDays(4)
	task.AddException(d)

	assert.Empty(t, OccurrencesForDate([]Task{task}, d))
	assert.Len(t, OccurrencesForDate([]Task{task}, d.AddDays(1)), 1)
	assert.Len(t, OccurrencesForDate([]Task{task}, d.AddDays(-1)), 1)
}

func TestSortOccurrences(t *testing.T) {
	day := NewDate(2026, time.March, 2)
	at := func(h int) *time.Time {
		v := time.Date(2026, time.March, 2, h, 0, 0, 0, time.UTC)
		return &v
	}

	mk := func(title string, start *time.Time, order int, done bool) Task {
		task := mustTask(t, title, day, RepeatNone)
		if start != nil {
			end := start.Add(time.Hour)
			task.StartAt, task.EndAt = start, &end
		}
		task.Order = order
		task.Done = done
		return task
	}

	tasks := []Task{
		mk("free-2", nil, 2, false),
		mk("free-done", nil, 0, true),
		mk("at-11", at(11), 0, false),
		mk("free-1", nil, 1, false),
		mk("at-9-done", at(9), 0, true),
		mk("at-10", at(10), 0, false),
		mk("free-1b", nil, 1, false),
	}

	SortOccurrences(tasks)

	assert.Equal(t, []string{
		"at-10", "at-11", "at-9-done",
		"free-1", "free-1b", "free-2", "free-done",
	}, titles(tasks))
}

func TestOccurrencesInRange(t *testing.T) {
	start := NewDate(2026, time.March, 2)
	daily := mustTask(t, "Journal", start, RepeatDaily)
	oneOff := mustTask(t, "Call mom", start.AddDays(2), RepeatNone)

	days := OccurrencesInRange([]Task{daily, oneOff}, start, start.AddDays(3))

	assert.Len(t, days, 4)
	assert.Len(t, days[start.AddDays(2)], 2)
	assert.Len(t, days[start.AddDays(3)], 1)
}
