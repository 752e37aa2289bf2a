package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/xvierd/wellflow/internal/domain"
)

var (
	dimText     = color.New(color.Faint).SprintFunc()
	boldText    = color.New(color.Bold).SprintFunc()
	doneText    = color.New(color.FgGreen).SprintFunc()
	accentText  = color.New(color.FgMagenta, color.Bold).SprintFunc()
	warningText = color.New(color.FgYellow).SprintFunc()
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// parseDay accepts YYYY-MM-DD, today, tomorrow, yesterday or a signed day
// offset such as +3.
func parseDay(s string, today domain.Date) (domain.Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	if s[0] == '+' || s[0] == '-' {
		n, err := strconv.Atoi(s)
		if err != nil {
			return domain.Date{}, fmt.Errorf("invalid day offset %q", s)
		}
		return today.AddDays(n), nil
	}
	return domain.ParseDate(s)
}

// formatMinutes formats minutes as a human-friendly string like "25m" or "1h30m".
func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}

// shortID trims a task id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// taskJSON is the machine-readable form of a task occurrence.
type taskJSON struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Category      string        `json:"category"`
	Date          string        `json:"date"`
	Start         string        `json:"start,omitempty"`
	End           string        `json:"end,omitempty"`
	Done          bool          `json:"done"`
	Repeat        string        `json:"repeat"`
	RepeatUntil   string        `json:"repeat_until,omitempty"`
	FocusMode     bool          `json:"focus_mode"`
	FocusDuration int           `json:"focus_duration,omitempty"`
	BreakDuration int           `json:"break_duration,omitempty"`
	Cycles        int           `json:"cycles,omitempty"`
	Order         int           `json:"order"`
	Exceptions    []domain.Date `json:"exceptions,omitempty"`
}

func newTaskJSON(t domain.Task) taskJSON {
	v := taskJSON{
		ID:         t.ID,
		Title:      t.Title,
		Category:   string(t.Category),
		Date:       t.Date.String(),
		Done:       t.Done,
		Repeat:     string(t.Repeat),
		FocusMode:  t.FocusMode,
		Order:      t.Order,
		Exceptions: t.Exceptions,
	}
	if t.IsScheduled() {
		v.Start = t.StartAt.Local().Format("15:04")
		v.End = t.EndAt.Local().Format("15:04")
	}
	if t.RepeatUntil != nil {
		v.RepeatUntil = t.RepeatUntil.String()
	}
	if t.FocusMode {
		v.FocusDuration = t.FocusDuration
		v.BreakDuration = t.BreakDuration
		v.Cycles = t.Cycles
	}
	return v
}

func newTaskJSONs(tasks []domain.Task) []taskJSON {
	out := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskJSON(t))
	}
	return out
}

// formatTaskLine renders one occurrence for the plain listing.
func formatTaskLine(t domain.Task) string {
	check := "[ ]"
	title := t.Title
	if t.Done {
		check = doneText("[x]")
		title = dimText(title)
	}

	when := "     "
	if t.IsScheduled() {
		when = t.StartAt.Local().Format("15:04")
	}

	var tags []string
	tags = append(tags, domain.GetCategoryLabel(t.Category))
	if t.IsRecurring() {
		tags = append(tags, string(t.Repeat))
	}
	if t.FocusMode {
		tags = append(tags, fmt.Sprintf("%dx%s focus", t.Cycles, formatMinutes(t.FocusDuration)))
	}

	return fmt.Sprintf("%s %s %s  %s %s", check, dimText(when), title,
		dimText("("+strings.Join(tags, ", ")+")"), dimText(shortID(t.ID)))
}

// progressBar renders a fixed-width text bar for ratio in [0, 1].
func progressBar(ratio float64, width int) string {
	filled := int(ratio * float64(width))
	filled = min(max(filled, 0), width)
	return accentText(strings.Repeat("█", filled)) + dimText(strings.Repeat("░", width-filled))
}

// formatClock formats a duration as MM:SS.
func formatClock(d time.Duration) string {
	d = max(d, 0)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
