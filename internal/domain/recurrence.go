package domain

import (
	"cmp"
	"slices"
)

// MatchesDate reports whether the task has an occurrence on d.
func (t *Task) MatchesDate(d Date) bool {
	if t.HasException(d) {
		return false
	}

	switch t.Repeat {
	case RepeatDaily, RepeatWeekly:
		if d.Before(t.Date) {
			return false
		}
		if t.RepeatUntil != nil && !t.RepeatUntil.IsZero() && d.After(*t.RepeatUntil) {
			return false
		}
		if t.Repeat == RepeatWeekly && d.Weekday() != t.Date.Weekday() {
			return false
		}
		return true
	default:
		return t.Date == d
	}
}

// OccurrencesForDate projects the task collection onto a single day.
// Each occurrence is a copy with Date rebound to target; the input tasks are
// never modified. StartAt/EndAt are carried over unchanged.
func OccurrencesForDate(tasks []Task, target Date) []Task {
	var out []Task
	for i := range tasks {
		if !tasks[i].MatchesDate(target) {
			continue
		}
		occ := tasks[i]
		occ.Date = target
		occ.Exceptions = slices.Clone(tasks[i].Exceptions)
		out = append(out, occ)
	}
	return out
}

// OccurrencesInRange returns the occurrences of every day in [from, to],
// keyed by day. Each day is projected independently.
func OccurrencesInRange(tasks []Task, from, to Date) map[Date][]Task {
	days := make(map[Date][]Task)
	for d := from; !d.After(to); d = d.AddDays(1) {
		if occ := OccurrencesForDate(tasks, d); len(occ) > 0 {
			SortOccurrences(occ)
			days[d] = occ
		}
	}
	return days
}

// SortOccurrences orders one day's occurrences for display: time-blocked
// tasks first by start time, then unscheduled tasks by Order. Within each
// group completed tasks go last. The sort is stable.
func SortOccurrences(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if c := cmp.Compare(scheduleGroup(a), scheduleGroup(b)); c != 0 {
			return c
		}
		if c := cmp.Compare(doneRank(a), doneRank(b)); c != 0 {
			return c
		}
		if a.IsScheduled() {
			return a.StartAt.Compare(*b.StartAt)
		}
		return cmp.Compare(a.Order, b.Order)
	})
}

func scheduleGroup(t Task) int {
	if t.IsScheduled() {
		return 0
	}
	return 1
}

func doneRank(t Task) int {
	if t.Done {
		return 1
	}
	return 0
}
