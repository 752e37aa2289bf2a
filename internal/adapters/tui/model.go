// Package tui renders live focus sessions and task pickers in the terminal.
package tui

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/wellflow/internal/config"
	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

// refreshInterval is how often the view polls the session.
const refreshInterval = 250 * time.Millisecond

// resolveTheme fills any empty fields in theme with defaults.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// tickMsg is sent on every refresh.
type tickMsg time.Time

// Model is the bubbletea model of a live session view.
type Model struct {
	session    ports.LiveSession
	snap       domain.SessionSnapshot
	theme      config.ThemeConfig
	width      int
	confirmEnd bool
	lastErr    error
	// closed is set when the user leaves a session that is still active.
	closed bool
}

// NewModel creates a view over session.
func NewModel(session ports.LiveSession, theme *config.ThemeConfig) Model {
	return Model{
		session: session,
		snap:    session.Snapshot(),
		theme:   resolveTheme(theme),
		width:   80,
	}
}

// Snapshot returns the last state the view rendered.
func (m Model) Snapshot() domain.SessionSnapshot {
	return m.snap
}

// Closed reports whether the user quit while the session was still active.
func (m Model) Closed() bool {
	return m.closed
}

// Init starts polling.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.snap = m.session.Snapshot()
		if m.snap.Status.IsTerminal() {
			return m, tea.Quit
		}
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.confirmEnd {
		switch key {
		case "e", "y", "enter":
			m.confirmEnd = false
			return m.apply(m.session.End)
		case "ctrl+c":
			return m.quit()
		default:
			m.confirmEnd = false
			return m, nil
		}
	}

	switch key {
	case "q", "ctrl+c":
		return m.quit()
	case "p", " ":
		if m.snap.Status == domain.SessionStatusPaused {
			return m.apply(m.session.Resume)
		}
		return m.apply(m.session.Pause)
	case "s":
		if m.snap.Phase.IsFocus() {
			return m, nil
		}
		return m.apply(m.session.SkipBreak)
	case "e":
		m.confirmEnd = true
	}
	return m, nil
}

// apply runs a session command and refreshes the view from the session.
func (m Model) apply(command func() error) (tea.Model, tea.Cmd) {
	m.lastErr = command()
	m.snap = m.session.Snapshot()
	if m.snap.Status.IsTerminal() {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.snap = m.session.Snapshot()
	m.closed = !m.snap.Status.IsTerminal()
	return m, tea.Quit
}

func (m Model) phaseColor() lipgloss.Color {
	if m.snap.Status == domain.SessionStatusPaused {
		return lipgloss.Color(m.theme.ColorPaused)
	}
	if m.snap.Phase.IsFocus() {
		return lipgloss.Color(m.theme.ColorFocus)
	}
	return lipgloss.Color(m.theme.ColorBreak)
}

// View renders the session.
func (m Model) View() string {
	if m.snap.Status.IsTerminal() {
		return ""
	}

	color := m.phaseColor()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	phaseStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	var sections []string
	sections = append(sections, titleStyle.Render(m.snap.Name))

	status := fmt.Sprintf("%s %d/%d", domain.GetPhaseLabel(m.snap.Phase), m.snap.PhaseIndex+1, m.snap.PhaseCount)
	if m.snap.Resumed {
		status += "  (resumed)"
	}
	sections = append(sections, phaseStyle.Render(status))

	sections = append(sections, "")
	sections = append(sections, renderBigTime(formatDuration(m.snap.TimeRemaining), color, m.width))

	if m.snap.Status == domain.SessionStatusPaused {
		badge := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(m.theme.ColorPaused)).
			Padding(0, 1).
			Render("PAUSED")
		sections = append(sections, "", badge)
	}

	sections = append(sections, "")
	bar := progress.New(progress.WithSolidFill(string(color)), progress.WithoutPercentage())
	bar.Width = max(m.width-4, 10)
	sections = append(sections, bar.ViewAs(m.snap.PhaseProgress()))

	if m.snap.FocusMinutesPlanned > 0 {
		sections = append(sections, helpStyle.Render(fmt.Sprintf("Focus: %d/%d min",
			m.snap.TotalFocusMinutesAccrued, m.snap.FocusMinutesPlanned)))
	}

	if m.lastErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
		sections = append(sections, errStyle.Render("Error: "+m.lastErr.Error()))
	}

	sections = append(sections, "")
	sections = append(sections, helpStyle.Render(m.helpLine()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) helpLine() string {
	if m.confirmEnd {
		return "End session now? [e] confirm  [esc] cancel"
	}
	pause := "[p]ause"
	if m.snap.Status == domain.SessionStatusPaused {
		pause = "[p]resume"
	}
	parts := []string{pause}
	if !m.snap.Phase.IsFocus() {
		parts = append(parts, "[s]kip break")
	}
	parts = append(parts, "[e]nd", "[q]uit")
	return strings.Join(parts, "  ")
}

// tickCmd creates a command that sends a tick message.
func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// formatDuration formats a duration as MM:SS.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
