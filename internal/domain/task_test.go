package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewTask(t *testing.T) {
	day := NewDate(2026, time.March, 2)

	tests := []struct {
		name        string
		title       string
		category    Category
		wantErr     bool
		errExpected error
	}{
		{
			name:     "valid task",
			title:    "Read chapter 3",
			category: CategoryReading,
		},
		{
			name:        "empty title",
			title:       "",
			category:    CategoryWork,
			wantErr:     true,
			errExpected: ErrEmptyTaskTitle,
		},
		{
			name:        "blank title",
			title:       "   ",
			category:    CategoryWork,
			wantErr:     true,
			errExpected: ErrEmptyTaskTitle,
		},
		{
			name:     "default category",
			title:    "Stretch",
			category: "",
		},
		{
			name:        "unknown category",
			title:       "Stretch",
			category:    Category("gym"),
			wantErr:     true,
			errExpected: ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewTask(tt.title, tt.category, day)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewTask() error = nil, wantErr %v", tt.wantErr)
				}
				if tt.errExpected != nil && !errors.Is(err, tt.errExpected) {
					t.Errorf("NewTask() error = %v, want %v", err, tt.errExpected)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewTask() unexpected error = %v", err)
			}
			if task.ID == "" {
				t.Error("NewTask() ID is empty")
			}
			if task.Repeat != RepeatNone {
				t.Errorf("NewTask() repeat = %v, want none", task.Repeat)
			}
			if task.Date != day {
				t.Errorf("NewTask() date = %v, want %v", task.Date, day)
			}
			if task.Done {
				t.Error("NewTask() should not be done")
			}
			if tt.category == "" && task.Category != CategoryRoutine {
				t.Errorf("NewTask() category = %v, want routine", task.Category)
			}
		})
	}
}

func TestTask_Validate(t *testing.T) {
	day := NewDate(2026, time.March, 2)
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	before := day.AddDays(-1)

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr error
	}{
		{"plain", func(*Task) {}, nil},
		{"time blocked", func(t *Task) { t.StartAt, t.EndAt = &start, &end }, nil},
		{"start without end", func(t *Task) { t.StartAt = &start }, ErrInvalidSchedule},
		{"end before start", func(t *Task) { t.StartAt, t.EndAt = &end, &start }, ErrInvalidSchedule},
		{"repeat until before date", func(t *Task) {
			t.Repeat = RepeatDaily
			t.RepeatUntil = &before
		}, ErrInvalidSchedule},
		{"bad repeat", func(t *Task) { t.Repeat = Repeat("monthly") }, ErrInvalidRepeat},
		{"focus without duration", func(t *Task) { t.FocusMode = true }, ErrInvalidDuration},
		{"focus without cycles", func(t *Task) {
			t.FocusMode, t.FocusDuration, t.Cycles = true, 25, 0
		}, ErrInvalidDuration},
		{"missing date", func(t *Task) { t.Date = Date{} }, ErrInvalidSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewTask("Plan", CategoryWork, day)
			if err != nil {
				t.Fatalf("NewTask() error = %v", err)
			}
			tt.mutate(task)

			err = task.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTask_Toggle(t *testing.T) {
	task, _ := NewTask("Meditate", CategorySelfCare, NewDate(2026, time.March, 2))

	if !task.Toggle() || !task.Done {
		t.Error("first Toggle() should mark done")
	}
	if task.Toggle() || task.Done {
		t.Error("second Toggle() should mark not done")
	}
}

func TestTask_AddException(t *testing.T) {
	day := NewDate(2026, time.March, 2)
	task, _ := NewTask("Walk", CategorySelfCare, day)

	task.AddException(day)
	task.AddException(day)

	if len(task.Exceptions) != 1 {
		t.Errorf("AddException() len = %d, want 1", len(task.Exceptions))
	}
	if !task.HasException(day) {
		t.Error("HasException() = false, want true")
	}
}

func TestTask_XPReward(t *testing.T) {
	task, _ := NewTask("Write", CategoryWork, NewDate(2026, time.March, 2))
	if got := task.XPReward(); got != XPPlainTask {
		t.Errorf("XPReward() = %d, want %d", got, XPPlainTask)
	}

	task.FocusMode = true
	if got := task.XPReward(); got != XPFocusTask {
		t.Errorf("XPReward() focus = %d, want %d", got, XPFocusTask)
	}
}

func TestTask_SessionConfig(t *testing.T) {
	task, _ := NewTask("Thesis", CategoryStudy, NewDate(2026, time.March, 2))
	task.FocusMode = true
	task.FocusDuration = 40
	task.BreakDuration = 10
	task.Cycles = 3

	cfg := task.SessionConfig()

	if cfg.BreakType != BreakCustom {
		t.Fatalf("BreakType = %v, want custom", cfg.BreakType)
	}
	if len(cfg.CustomCycles) != 3 {
		t.Fatalf("len(CustomCycles) = %d, want 3", len(cfg.CustomCycles))
	}
	if cfg.TaskID == nil || *cfg.TaskID != task.ID {
		t.Errorf("TaskID = %v, want %v", cfg.TaskID, task.ID)
	}
	if got := TotalFocusMinutes(BuildPhases(cfg)); got != 120 {
		t.Errorf("total focus = %d, want 120", got)
	}
}

func TestValidateCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"study", CategoryStudy, false},
		{"Work", CategoryWork, false},
		{" selfcare ", CategorySelfCare, false},
		{"personalwork", CategoryPersonalWork, false},
		{"cooking", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ValidateCategory(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCategory(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateCategory(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateRepeat(t *testing.T) {
	tests := []struct {
		input   string
		want    Repeat
		wantErr bool
	}{
		{"", RepeatNone, false},
		{"none", RepeatNone, false},
		{"daily", RepeatDaily, false},
		{"WEEKLY", RepeatWeekly, false},
		{"monthly", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ValidateRepeat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRepeat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateRepeat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTask_InputRoundTrip(t *testing.T) {
	day := NewDate(2026, time.March, 2)
	until := day.AddDays(14)
	task, _ := NewTask("Thesis", CategoryStudy, day)
	task.Repeat = RepeatWeekly
	task.RepeatUntil = &until
	task.FocusMode = true
	task.FocusDuration = 50
	task.BreakDuration = 10
	task.Cycles = 2

	in := task.Input()
	in.Title = "Thesis chapter 2"

	edited := *task
	in.ApplyTo(&edited)

	if edited.Title != "Thesis chapter 2" {
		t.Errorf("Title = %q", edited.Title)
	}
	if edited.Repeat != RepeatWeekly || edited.RepeatUntil != &until || edited.Cycles != 2 || edited.FocusDuration != 50 {
		t.Errorf("unchanged fields were lost: %+v", edited)
	}
}
