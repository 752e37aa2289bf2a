package domain

import (
	"fmt"
	"strings"
)

// PomodoroBreakMinutes is the fixed break after a pomodoro focus block.
const PomodoroBreakMinutes = 5

// PhaseType distinguishes focus time from break time.
type PhaseType string

const (
	PhaseFocus PhaseType = "focus"
	PhaseBreak PhaseType = "break"
)

// Phase is one contiguous focus or break interval of a session.
type Phase struct {
	Type            PhaseType `json:"type"`
	DurationSeconds int       `json:"durationSeconds"`
	CycleIndex      int       `json:"cycleIndex"`
}

// IsFocus reports whether the phase counts as focus time.
func (p Phase) IsFocus() bool {
	return p.Type == PhaseFocus
}

// BreakType selects how a session's phase sequence is laid out.
type BreakType string

const (
	BreakNone     BreakType = "none"
	BreakPomodoro BreakType = "pomodoro"
	BreakCustom   BreakType = "custom"
)

// ValidBreakTypes lists all supported break types.
var ValidBreakTypes = []BreakType{
	BreakNone,
	BreakPomodoro,
	BreakCustom,
}

// ValidateBreakType checks if a string is a valid break type. Empty means none.
func ValidateBreakType(s string) (BreakType, error) {
	if s == "" {
		return BreakNone, nil
	}
	b := BreakType(strings.ToLower(s))
	for _, valid := range ValidBreakTypes {
		if b == valid {
			return b, nil
		}
	}
	return "", fmt.Errorf("invalid break type %q: must be one of none, pomodoro, custom", s)
}

// Label returns a human-readable label.
func (b BreakType) Label() string {
	switch b {
	case BreakNone, "":
		return "Single block"
	case BreakPomodoro:
		return "Pomodoro"
	case BreakCustom:
		return "Custom cycles"
	default:
		return "Unknown"
	}
}

// Cycle is one focus/break pair of a custom session, in minutes.
type Cycle struct {
	Focus int `json:"focus"`
	Break int `json:"break"`
}

// SessionConfig describes a focus session before it starts. It is not persisted.
type SessionConfig struct {
	Mode         string    `json:"mode,omitempty"`
	Name         string    `json:"name"`
	Duration     int       `json:"duration"`
	BreakType    BreakType `json:"breakType"`
	CustomCycles []Cycle   `json:"customCycles,omitempty"`
	TaskID       *string   `json:"taskId,omitempty"`
}

// Validate rejects configurations that would produce an empty or
// nonsensical phase sequence.
func (c SessionConfig) Validate() error {
	if _, err := ValidateBreakType(string(c.BreakType)); err != nil {
		return err
	}
	if c.BreakType == BreakCustom {
		if len(c.CustomCycles) == 0 {
			return fmt.Errorf("%w: custom session needs at least one cycle", ErrEmptyPhaseSequence)
		}
		for i, cy := range c.CustomCycles {
			if cy.Focus <= 0 || cy.Break < 0 {
				return fmt.Errorf("%w: cycle %d is %d/%d minutes", ErrInvalidDuration, i+1, cy.Focus, cy.Break)
			}
		}
		return nil
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: %d minutes", ErrInvalidDuration, c.Duration)
	}
	return nil
}

// BuildPhases lays out the ordered phase sequence for a session.
// Custom sessions keep the break after their last cycle.
func BuildPhases(cfg SessionConfig) []Phase {
	switch cfg.BreakType {
	case BreakCustom:
		phases := make([]Phase, 0, 2*len(cfg.CustomCycles))
		for i, cy := range cfg.CustomCycles {
			phases = append(phases,
				Phase{Type: PhaseFocus, DurationSeconds: cy.Focus * 60, CycleIndex: i},
				Phase{Type: PhaseBreak, DurationSeconds: cy.Break * 60, CycleIndex: i},
			)
		}
		return phases
	case BreakPomodoro:
		return []Phase{
			{Type: PhaseFocus, DurationSeconds: cfg.Duration * 60},
			{Type: PhaseBreak, DurationSeconds: PomodoroBreakMinutes * 60},
		}
	default:
		return []Phase{{Type: PhaseFocus, DurationSeconds: cfg.Duration * 60}}
	}
}

// TotalFocusMinutes sums the focus phases of a sequence.
func TotalFocusMinutes(phases []Phase) int {
	seconds := 0
	for _, p := range phases {
		if p.IsFocus() {
			seconds += p.DurationSeconds
		}
	}
	return seconds / 60
}

// ParseCycles parses "50/10,25/5" into custom cycles.
func ParseCycles(s string) ([]Cycle, error) {
	var cycles []Cycle
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var cy Cycle
		if _, err := fmt.Sscanf(part, "%d/%d", &cy.Focus, &cy.Break); err != nil {
			return nil, fmt.Errorf("invalid cycle %q: want focus/break minutes like 25/5", part)
		}
		if cy.Focus <= 0 || cy.Break < 0 {
			return nil, fmt.Errorf("%w: cycle %q", ErrInvalidDuration, part)
		}
		cycles = append(cycles, cy)
	}
	if len(cycles) == 0 {
		return nil, fmt.Errorf("%w: no cycles in %q", ErrEmptyPhaseSequence, s)
	}
	return cycles, nil
}

// SessionKey derives the persistence key of a session from its shape, so a
// restarted session of the same shape resumes where it left off. Sessions
// bound to a task include the task ID; ad-hoc sessions fall back to the name.
func SessionKey(cfg SessionConfig) string {
	breakType := cfg.BreakType
	if breakType == "" {
		breakType = BreakNone
	}
	shape := fmt.Sprint(TotalFocusMinutes(BuildPhases(cfg)))
	if breakType == BreakCustom {
		shape = cycleLayout(cfg.CustomCycles)
	}
	if cfg.TaskID != nil && *cfg.TaskID != "" {
		return fmt.Sprintf("session:task:%s:%s:%s", *cfg.TaskID, shape, breakType)
	}
	return fmt.Sprintf("session:%s:%s:%s", slugify(cfg.Name), shape, breakType)
}

// cycleLayout writes cycles as "50x10+25x5".
func cycleLayout(cycles []Cycle) string {
	parts := make([]string, len(cycles))
	for i, cy := range cycles {
		parts[i] = fmt.Sprintf("%dx%d", cy.Focus, cy.Break)
	}
	return strings.Join(parts, "+")
}

func slugify(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), "-"))
	if s == "" {
		return "untitled"
	}
	return s
}
