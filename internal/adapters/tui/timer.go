package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/xvierd/wellflow/internal/config"
	"github.com/xvierd/wellflow/internal/ports"
)

// Timer implements the ports.Timer interface using Bubbletea.
type Timer struct {
	theme   *config.ThemeConfig
	options []tea.ProgramOption
}

// NewTimer creates a new TUI timer adapter.
func NewTimer(theme *config.ThemeConfig) *Timer {
	return &Timer{
		theme:   theme,
		options: []tea.ProgramOption{tea.WithAltScreen()},
	}
}

// WithIO replaces the terminal the timer draws on and drops the alt screen.
func (t *Timer) WithIO(in io.Reader, out io.Writer) *Timer {
	t.options = []tea.ProgramOption{tea.WithInput(in), tea.WithOutput(out)}
	return t
}

// Run draws the session until it reaches a terminal state or the user
// quits. Quitting leaves the session active; closing it is up to the caller.
func (t *Timer) Run(ctx context.Context, session ports.LiveSession) error {
	m := NewModel(session, t.theme)
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		m.width = w
	}

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, t.options...)
	p := tea.NewProgram(m, opts...)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("timer UI failed: %w", err)
	}
	return nil
}

var _ ports.Timer = (*Timer)(nil)
