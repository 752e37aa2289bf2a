package domain

import (
	"time"
)

// SessionStatus represents the current state of a live session.
type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusPaused    SessionStatus = "paused"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// IsTerminal reports whether no further transitions are possible.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusAbandoned
}

// LiveSessionState is the resumable position of an in-flight session.
// It is written on every tick and removed when the session ends.
type LiveSessionState struct {
	CurrentPhaseIndex              int       `json:"currentPhaseIndex"`
	TimeRemainingSeconds           int       `json:"timeRemainingSeconds"`
	TotalFocusMinutesAccrued       int       `json:"totalFocusMinutesAccrued"`
	TimeSpentInCurrentPhaseSeconds int       `json:"timeSpentInCurrentPhaseSeconds"`
	TaskID                         *string   `json:"taskId,omitempty"`
	StartedAt                      time.Time `json:"startedAt"`
	LastSavedAt                    time.Time `json:"lastSavedAt"`
}

// NewLiveSessionState positions a session at the start of its first phase.
func NewLiveSessionState(phases []Phase, taskID *string, now time.Time) LiveSessionState {
	return LiveSessionState{
		TimeRemainingSeconds: phases[0].DurationSeconds,
		TaskID:               taskID,
		StartedAt:            now,
		LastSavedAt:          now,
	}
}

// FitsPhases reports whether a restored state is a valid position in phases.
// States that do not fit are discarded and the session starts fresh.
func (s LiveSessionState) FitsPhases(phases []Phase) bool {
	if s.CurrentPhaseIndex < 0 || s.CurrentPhaseIndex >= len(phases) {
		return false
	}
	p := phases[s.CurrentPhaseIndex]
	if s.TimeRemainingSeconds < 0 || s.TimeRemainingSeconds > p.DurationSeconds {
		return false
	}
	if s.TimeSpentInCurrentPhaseSeconds < 0 || s.TotalFocusMinutesAccrued < 0 {
		return false
	}
	// Only focus time is counted within a phase.
	spent := 0
	if p.IsFocus() {
		spent = p.DurationSeconds - s.TimeRemainingSeconds
	}
	if s.TimeSpentInCurrentPhaseSeconds != spent {
		return false
	}
	return s.TotalFocusMinutesAccrued == TotalFocusMinutes(phases[:s.CurrentPhaseIndex])
}

// SessionResult is emitted when a session ends with credit.
// Completed is false for partial-credit sessions stopped early.
type SessionResult struct {
	Key             string    `json:"key"`
	Name            string    `json:"name"`
	Mode            string    `json:"mode,omitempty"`
	BreakType       BreakType `json:"breakType"`
	TaskID          *string   `json:"taskId,omitempty"`
	DurationMinutes int       `json:"durationMinutes"`
	Completed       bool      `json:"completed"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
}

// SessionRecord is a history entry for a credited session.
type SessionRecord struct {
	ID              string
	TaskID          *string
	Name            string
	Mode            string
	BreakType       BreakType
	DurationMinutes int
	Completed       bool
	StartedAt       time.Time
	EndedAt         time.Time
	GitBranch       string
	GitCommit       string
}

// NewSessionRecord turns a session result into a history entry.
func NewSessionRecord(r SessionResult) *SessionRecord {
	return &SessionRecord{
		ID:              generateID(),
		TaskID:          r.TaskID,
		Name:            r.Name,
		Mode:            r.Mode,
		BreakType:       r.BreakType,
		DurationMinutes: r.DurationMinutes,
		Completed:       r.Completed,
		StartedAt:       r.StartedAt,
		EndedAt:         r.EndedAt,
	}
}

// SetGitContext stores git information for the record.
func (r *SessionRecord) SetGitContext(branch, commit string) {
	r.GitBranch = branch
	r.GitCommit = commit
}

// SessionSnapshot is a read-only view of a live session for display.
type SessionSnapshot struct {
	Key                      string
	Name                     string
	Status                   SessionStatus
	Phase                    Phase
	PhaseIndex               int
	PhaseCount               int
	TimeRemaining            time.Duration
	TotalFocusMinutesAccrued int
	FocusMinutesPlanned      int
	TaskID                   *string
	Resumed                  bool
	Result                   *SessionResult
}

// PhaseProgress returns the completion ratio of the current phase (0.0 to 1.0).
func (s SessionSnapshot) PhaseProgress() float64 {
	total := time.Duration(s.Phase.DurationSeconds) * time.Second
	if total <= 0 {
		return 1
	}
	p := float64(total-s.TimeRemaining) / float64(total)
	return min(max(p, 0), 1)
}

// IsLastPhase reports whether the current phase ends the session.
func (s SessionSnapshot) IsLastPhase() bool {
	return s.PhaseIndex == s.PhaseCount-1
}
