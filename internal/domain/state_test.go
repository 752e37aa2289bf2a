package domain

import (
	"testing"
)

func TestCurrentState_IsSessionActive(t *testing.T) {
	tests := []struct {
		name    string
		session *SessionSnapshot
		want    bool
	}{
		{
			name:    "no session",
			session: nil,
			want:    false,
		},
		{
			name:    "running session",
			session: &SessionSnapshot{Status: SessionStatusRunning},
			want:    true,
		},
		{
			name:    "paused session",
			session: &SessionSnapshot{Status: SessionStatusPaused},
			want:    true,
		},
		{
			name:    "completed session",
			session: &SessionSnapshot{Status: SessionStatusCompleted},
			want:    false,
		},
		{
			name:    "abandoned session",
			session: &SessionSnapshot{Status: SessionStatusAbandoned},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := &CurrentState{ActiveSession: tt.session}
			if got := cs.IsSessionActive(); got != tt.want {
				t.Errorf("IsSessionActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCurrentState_PendingCount(t *testing.T) {
	cs := &CurrentState{
		Occurrences: []Task{
			{Title: "a", Done: true},
			{Title: "b"},
			{Title: "c"},
		},
	}

	if got := cs.PendingCount(); got != 2 {
		t.Errorf("PendingCount() = %d, want 2", got)
	}
}

func TestGetPhaseLabel(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{Phase{Type: PhaseFocus}, "Focus"},
		{Phase{Type: PhaseBreak}, "Break"},
		{Phase{Type: "nap"}, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase.Type), func(t *testing.T) {
			if got := GetPhaseLabel(tt.phase); got != tt.want {
				t.Errorf("GetPhaseLabel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetStatusLabel(t *testing.T) {
	tests := []struct {
		status SessionStatus
		want   string
	}{
		{SessionStatusRunning, "Running"},
		{SessionStatusPaused, "Paused"},
		{SessionStatusCompleted, "Completed"},
		{SessionStatusAbandoned, "Abandoned"},
		{SessionStatus("unknown"), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := GetStatusLabel(tt.status); got != tt.want {
				t.Errorf("GetStatusLabel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCategoryLabel(t *testing.T) {
	for _, c := range ValidCategories {
		if GetCategoryLabel(c) == "Unknown" {
			t.Errorf("GetCategoryLabel(%q) has no label", c)
		}
	}
	if got := GetCategoryLabel("gym"); got != "Unknown" {
		t.Errorf("GetCategoryLabel(gym) = %v, want Unknown", got)
	}
}
