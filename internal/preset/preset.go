// Package preset holds named session shapes that can be picked instead of
// spelling out durations and cycles.
package preset

import (
	"fmt"
	"strings"

	"github.com/xvierd/wellflow/internal/domain"
)

// Preset is a named session shape.
type Preset struct {
	Name        string
	Description string
	BreakType   domain.BreakType
	// Duration is the focus length in minutes for single-block and pomodoro presets.
	Duration int
	Cycles   []domain.Cycle
}

var presets = []Preset{
	{Name: "pomodoro", Description: "25 minutes of focus, 5 minute break", BreakType: domain.BreakPomodoro, Duration: 25},
	{Name: "short", Description: "15 minutes of focus, 5 minute break", BreakType: domain.BreakPomodoro, Duration: 15},
	{Name: "sprint", Description: "four pomodoros back to back", BreakType: domain.BreakCustom, Cycles: repeat(domain.Cycle{Focus: 25, Break: 5}, 4)},
	{Name: "deep", Description: "two 50 minute blocks with a 10 minute break", BreakType: domain.BreakCustom, Cycles: repeat(domain.Cycle{Focus: 50, Break: 10}, 2)},
	{Name: "highlight", Description: "one uninterrupted hour", BreakType: domain.BreakNone, Duration: 60},
	{Name: "marathon", Description: "90 minutes with no breaks", BreakType: domain.BreakNone, Duration: 90},
}

func repeat(c domain.Cycle, n int) []domain.Cycle {
	out := make([]domain.Cycle, n)
	for i := range out {
		out[i] = c
	}
	return out
}

// All returns every preset in display order.
func All() []Preset {
	out := make([]Preset, len(presets))
	for i, p := range presets {
		p.Cycles = append([]domain.Cycle(nil), p.Cycles...)
		out[i] = p
	}
	return out
}

// Names returns the preset names in display order.
func Names() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// Lookup finds a preset by name, ignoring case.
func Lookup(name string) (Preset, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, p := range All() {
		if p.Name == want {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown preset %q: must be one of %s", name, strings.Join(Names(), ", "))
}

// FocusMinutes returns the planned focus time of the preset.
func (p Preset) FocusMinutes() int {
	if p.BreakType != domain.BreakCustom {
		return p.Duration
	}
	total := 0
	for _, c := range p.Cycles {
		total += c.Focus
	}
	return total
}
