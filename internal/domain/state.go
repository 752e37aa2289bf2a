package domain

// CurrentState represents what the user sees at a glance.
type CurrentState struct {
	Date          Date
	Progress      DailyProgress
	Occurrences   []Task
	ActiveSession *SessionSnapshot
	TodayStats    DailyStats
}

// DailyStats aggregates session history for a day.
type DailyStats struct {
	Date              Date
	FocusMinutes      int
	CompletedSessions int
	PartialSessions   int
	TasksDone         int
}

// IsSessionActive returns true if there's a running or paused session.
func (cs *CurrentState) IsSessionActive() bool {
	return cs.ActiveSession != nil && !cs.ActiveSession.Status.IsTerminal()
}

// PendingCount returns how many of today's occurrences are not done.
func (cs *CurrentState) PendingCount() int {
	n := 0
	for _, t := range cs.Occurrences {
		if !t.Done {
			n++
		}
	}
	return n
}

// GetPhaseLabel returns a human-readable label for a phase.
func GetPhaseLabel(p Phase) string {
	switch p.Type {
	case PhaseFocus:
		return "Focus"
	case PhaseBreak:
		return "Break"
	default:
		return "Unknown"
	}
}

// GetStatusLabel returns a human-readable label for the session status.
func GetStatusLabel(s SessionStatus) string {
	switch s {
	case SessionStatusRunning:
		return "Running"
	case SessionStatusPaused:
		return "Paused"
	case SessionStatusCompleted:
		return "Completed"
	case SessionStatusAbandoned:
		return "Abandoned"
	default:
		return "Unknown"
	}
}

// GetCategoryLabel returns a human-readable label for a task category.
func GetCategoryLabel(c Category) string {
	switch c {
	case CategoryStudy:
		return "Study"
	case CategoryWork:
		return "Work"
	case CategoryReading:
		return "Reading"
	case CategorySelfCare:
		return "Self-care"
	case CategoryRoutine:
		return "Routine"
	case CategoryPersonalWork:
		return "Personal work"
	default:
		return "Unknown"
	}
}
