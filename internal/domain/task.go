// Package domain contains the core business entities for wellflow.
// These entities represent the fundamental concepts of the planner, the
// focus timer and the XP ledger, and are independent of any external
// frameworks or infrastructure.
package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Common domain errors.
var (
	ErrInvalidTaskID      = errors.New("invalid task ID")
	ErrEmptyTaskTitle     = errors.New("task title cannot be empty")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidCategory    = errors.New("invalid task category")
	ErrInvalidRepeat      = errors.New("invalid repeat rule")
	ErrInvalidSchedule    = errors.New("invalid task schedule")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrEmptyPhaseSequence = errors.New("session has no phases")
	ErrNotBreakPhase      = errors.New("current phase is not a break")
	ErrSessionFinished    = errors.New("session already finished")
	ErrSessionLocked      = errors.New("session is already running elsewhere")
	ErrTaskShapesSession  = errors.New("focus task sets its own cycles")
)

// XP granted when a task is marked done.
const (
	XPFocusTask = 20
	XPPlainTask = 10
)

// Category groups tasks for display and history.
type Category string

const (
	CategoryStudy        Category = "study"
	CategoryWork         Category = "work"
	CategoryReading      Category = "reading"
	CategorySelfCare     Category = "selfcare"
	CategoryRoutine      Category = "routine"
	CategoryPersonalWork Category = "personalwork"
)

// ValidCategories lists all supported categories.
var ValidCategories = []Category{
	CategoryStudy,
	CategoryWork,
	CategoryReading,
	CategorySelfCare,
	CategoryRoutine,
	CategoryPersonalWork,
}

// ValidateCategory checks if a string is a valid category.
func ValidateCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(ValidCategories, c) {
		return c, nil
	}
	return "", fmt.Errorf("%w %q: must be one of study, work, reading, selfcare, routine, personalwork", ErrInvalidCategory, s)
}

// Repeat is the recurrence rule of a task.
type Repeat string

const (
	RepeatNone   Repeat = "none"
	RepeatDaily  Repeat = "daily"
	RepeatWeekly Repeat = "weekly"
)

// ValidateRepeat checks if a string is a valid repeat rule. Empty means none.
func ValidateRepeat(s string) (Repeat, error) {
	switch r := Repeat(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RepeatNone, nil
	case RepeatNone, RepeatDaily, RepeatWeekly:
		return r, nil
	default:
		return "", fmt.Errorf("%w %q: must be one of none, daily, weekly", ErrInvalidRepeat, s)
	}
}

// Task is a plannable unit of work. For recurring tasks Date is the first
// occurrence; occurrences on other days are projected, never stored.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Category      Category   `json:"category"`
	Date          Date       `json:"date"`
	StartAt       *time.Time `json:"startAt,omitempty"`
	EndAt         *time.Time `json:"endAt,omitempty"`
	Done          bool       `json:"done"`
	FocusMode     bool       `json:"focusMode"`
	FocusDuration int        `json:"focusDuration,omitempty"`
	BreakDuration int        `json:"breakDuration,omitempty"`
	Cycles        int        `json:"cycles,omitempty"`
	Repeat        Repeat     `json:"repeat"`
	RepeatUntil   *Date      `json:"repeatUntil,omitempty"`
	Exceptions    []Date     `json:"exceptions,omitempty"`
	Order         int        `json:"order"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// TaskInput carries the user-editable fields of a task.
type TaskInput struct {
	Title         string     `json:"title"`
	Category      Category   `json:"category"`
	Date          Date       `json:"date"`
	StartAt       *time.Time `json:"startAt,omitempty"`
	EndAt         *time.Time `json:"endAt,omitempty"`
	FocusMode     bool       `json:"focusMode"`
	FocusDuration int        `json:"focusDuration,omitempty"`
	BreakDuration int        `json:"breakDuration,omitempty"`
	Cycles        int        `json:"cycles,omitempty"`
	Repeat        Repeat     `json:"repeat,omitempty"`
	RepeatUntil   *Date      `json:"repeatUntil,omitempty"`
}

// ApplyTo copies the input onto t. Empty category and repeat keep their
// defaults; a zero cycle count becomes 1.
func (in TaskInput) ApplyTo(t *Task) {
	t.Title = strings.TrimSpace(in.Title)
	if in.Category != "" {
		t.Category = in.Category
	}
	if !in.Date.IsZero() {
		t.Date = in.Date
	}
	t.StartAt = in.StartAt
	t.EndAt = in.EndAt
	t.FocusMode = in.FocusMode
	t.FocusDuration = in.FocusDuration
	t.BreakDuration = in.BreakDuration
	t.Cycles = max(in.Cycles, 1)
	if in.Repeat != "" {
		t.Repeat = in.Repeat
	}
	t.RepeatUntil = in.RepeatUntil
}

// Input returns the editable fields of t, ready to be changed and passed
// back to ApplyTo.
func (t *Task) Input() TaskInput {
	return TaskInput{
		Title:         t.Title,
		Category:      t.Category,
		Date:          t.Date,
		StartAt:       t.StartAt,
		EndAt:         t.EndAt,
		FocusMode:     t.FocusMode,
		FocusDuration: t.FocusDuration,
		BreakDuration: t.BreakDuration,
		Cycles:        t.Cycles,
		Repeat:        t.Repeat,
		RepeatUntil:   t.RepeatUntil,
	}
}

// NewTask creates a one-off, unscheduled task on the given date.
func NewTask(title string, category Category, date Date) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTaskTitle
	}
	if category == "" {
		category = CategoryRoutine
	}

	now := time.Now()
	t := &Task{
		ID:        generateID(),
		Title:     title,
		Category:  category,
		Date:      date,
		Repeat:    RepeatNone,
		Cycles:    1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the task's invariants.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}
	if !slices.Contains(ValidCategories, t.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	if _, err := ValidateRepeat(string(t.Repeat)); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidSchedule)
	}
	if (t.StartAt == nil) != (t.EndAt == nil) {
		return fmt.Errorf("%w: start and end must be set together", ErrInvalidSchedule)
	}
	if t.StartAt != nil && !t.EndAt.After(*t.StartAt) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidSchedule)
	}
	if t.RepeatUntil != nil && t.RepeatUntil.Before(t.Date) {
		return fmt.Errorf("%w: repeat end %s is before %s", ErrInvalidSchedule, t.RepeatUntil, t.Date)
	}
	if t.FocusMode {
		if t.FocusDuration <= 0 || t.BreakDuration < 0 {
			return fmt.Errorf("%w: focus %dm, break %dm", ErrInvalidDuration, t.FocusDuration, t.BreakDuration)
		}
		if t.Cycles < 1 {
			return fmt.Errorf("%w: cycles must be positive", ErrInvalidDuration)
		}
	}
	return nil
}

// IsScheduled reports whether the task is time-blocked.
func (t *Task) IsScheduled() bool {
	return t.StartAt != nil && t.EndAt != nil
}

// IsRecurring reports whether the task repeats.
func (t *Task) IsRecurring() bool {
	return t.Repeat == RepeatDaily || t.Repeat == RepeatWeekly
}

// Toggle flips Done and returns the new value.
func (t *Task) Toggle() bool {
	t.Done = !t.Done
	t.UpdatedAt = time.Now()
	return t.Done
}

// HasException reports whether the occurrence on d is suppressed.
func (t *Task) HasException(d Date) bool {
	return slices.Contains(t.Exceptions, d)
}

// AddException suppresses the occurrence on d, keeping the rest of the series.
func (t *Task) AddException(d Date) {
	if t.HasException(d) {
		return
	}
	t.Exceptions = append(t.Exceptions, d)
	t.UpdatedAt = time.Now()
}

// XPReward returns the XP granted for completing the task.
func (t *Task) XPReward() int {
	if t.FocusMode {
		return XPFocusTask
	}
	return XPPlainTask
}

// SessionConfig returns the focus session configuration that starting this
// task opens. Focus-mode tasks run their own focus/break cycles.
func (t *Task) SessionConfig() SessionConfig {
	id := t.ID
	cfg := SessionConfig{
		Mode:     string(t.Category),
		Name:     t.Title,
		Duration: t.FocusDuration,
		TaskID:   &id,
	}
	if !t.FocusMode {
		return cfg
	}

	cycles := max(t.Cycles, 1)
	cfg.BreakType = BreakCustom
	cfg.CustomCycles = make([]Cycle, cycles)
	for i := range cfg.CustomCycles {
		cfg.CustomCycles[i] = Cycle{Focus: t.FocusDuration, Break: t.BreakDuration}
	}
	return cfg
}
