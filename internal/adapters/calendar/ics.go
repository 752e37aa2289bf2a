// Package calendar exports task occurrences as an iCalendar feed.
package calendar

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/xvierd/wellflow/internal/domain"
)

const (
	icsDateLayout  = "20060102"
	icsStampLayout = "20060102T150405Z"
)

// BuildICS renders one VEVENT per occurrence. Recurring tasks are emitted
// occurrence by occurrence, so deleted occurrences stay deleted in the
// exported calendar. Time-blocked tasks keep their time of day on every
// occurrence; unscheduled ones become all-day events.
func BuildICS(days map[domain.Date][]domain.Task, now time.Time) string {
	dates := make([]domain.Date, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b domain.Date) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//wellflow//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	stamp := now.UTC().Format(icsStampLayout)
	for _, d := range dates {
		for _, t := range days[d] {
			lines = append(lines, event(t, d, stamp)...)
		}
	}
	lines = append(lines, "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n")
}

func event(t domain.Task, day domain.Date, stamp string) []string {
	lines := []string{
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(fmt.Sprintf("task-%s-%s@wellflow", t.ID, day.Time().Format(icsDateLayout))),
		"DTSTAMP:" + stamp,
		"SUMMARY:" + escapeICSText(t.Title),
		"CATEGORIES:" + escapeICSText(domain.GetCategoryLabel(t.Category)),
	}

	if t.IsScheduled() {
		start := onDay(*t.StartAt, day)
		end := start.Add(t.EndAt.Sub(*t.StartAt))
		lines = append(lines,
			"DTSTART:"+start.UTC().Format(icsStampLayout),
			"DTEND:"+end.UTC().Format(icsStampLayout),
		)
	} else {
		lines = append(lines,
			"DTSTART;VALUE=DATE:"+day.Time().Format(icsDateLayout),
			"DTEND;VALUE=DATE:"+day.AddDays(1).Time().Format(icsDateLayout),
		)
	}

	if desc := describe(t); desc != "" {
		lines = append(lines, "DESCRIPTION:"+escapeICSText(desc))
	}
	return append(lines, "END:VEVENT")
}

// onDay moves a timestamp to the same wall-clock time on day.
func onDay(ts time.Time, day domain.Date) time.Time {
	return time.Date(day.Year, day.Month, day.Day,
		ts.Hour(), ts.Minute(), ts.Second(), 0, ts.Location())
}

func describe(t domain.Task) string {
	var parts []string
	if t.FocusMode {
		parts = append(parts, fmt.Sprintf("Focus: %d x %dm focus / %dm break", max(t.Cycles, 1), t.FocusDuration, t.BreakDuration))
	}
	if t.Done {
		parts = append(parts, "Done")
	}
	return strings.Join(parts, "\n")
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
