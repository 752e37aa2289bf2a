package cmd

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/wellflow/internal/domain"
)

func TestParseDay(t *testing.T) {
	today := domain.NewDate(2026, time.March, 2)

	tests := []struct {
		in      string
		want    domain.Date
		wantErr bool
	}{
		{"", today, false},
		{"today", today, false},
		{"Tomorrow", domain.NewDate(2026, time.March, 3), false},
		{"yesterday", domain.NewDate(2026, time.March, 1), false},
		{"+7", domain.NewDate(2026, time.March, 9), false},
		{"-2", domain.NewDate(2026, time.February, 28), false},
		{"2026-12-31", domain.NewDate(2026, time.December, 31), false},
		{"+x", domain.Date{}, true},
		{"next week", domain.Date{}, true},
		{"2026-13-01", domain.Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDay(tt.in, today)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{25, "25m"},
		{60, "1h"},
		{90, "1h30m"},
		{480, "8h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMinutes(tt.minutes))
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "25:00", formatClock(25*time.Minute))
	assert.Equal(t, "01:05", formatClock(65*time.Second))
	assert.Equal(t, "00:00", formatClock(-time.Second))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abcdef12", shortID("abcdef12-3456-7890"))
	assert.Equal(t, "abc", shortID("abc"))
}

func TestProgressBar(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	tests := []struct {
		ratio  float64
		filled int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{1.7, 10},
		{-1, 0},
	}
	for _, tt := range tests {
		bar := progressBar(tt.ratio, 10)
		assert.Equal(t, 10, utf8.RuneCountInString(bar))
		assert.Equal(t, tt.filled, countRune(bar, '█'), "ratio %v", tt.ratio)
	}
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}

func TestNewTaskJSON(t *testing.T) {
	start := time.Date(2026, time.March, 2, 14, 0, 0, 0, time.Local)
	end := start.Add(2 * time.Hour)
	task := domain.Task{
		ID:            "t1",
		Title:         "Thesis",
		Category:      domain.CategoryStudy,
		Date:          domain.NewDate(2026, time.March, 2),
		StartAt:       &start,
		EndAt:         &end,
		Repeat:        domain.RepeatNone,
		FocusMode:     true,
		FocusDuration: 50,
		BreakDuration: 10,
		Cycles:        2,
	}

	v := newTaskJSON(task)
	assert.Equal(t, "14:00", v.Start)
	assert.Equal(t, "16:00", v.End)
	assert.Equal(t, "2026-03-02", v.Date)
	assert.Equal(t, 2, v.Cycles)

	task.FocusMode = false
	task.StartAt, task.EndAt = nil, nil
	v = newTaskJSON(task)
	assert.Empty(t, v.Start)
	assert.Zero(t, v.Cycles)
}
