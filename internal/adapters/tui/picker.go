package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"github.com/xvierd/wellflow/internal/config"
	"github.com/xvierd/wellflow/internal/domain"
)

// maxPickerRows caps how many matches are listed at once.
const maxPickerRows = 8

// PickerResult holds the outcome of a picker interaction.
type PickerResult struct {
	Task    *domain.Task
	Aborted bool
}

type taskTitles []domain.Task

func (t taskTitles) String(i int) string { return t[i].Title }
func (t taskTitles) Len() int            { return len(t) }

type pickerModel struct {
	title   string
	tasks   []domain.Task
	matches []int
	input   textinput.Model
	cursor  int
	chosen  bool
	aborted bool
	theme   config.ThemeConfig
}

func newPickerModel(title string, tasks []domain.Task, theme *config.ThemeConfig) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.CharLimit = 120
	ti.Width = 40
	ti.Focus()

	m := pickerModel{
		title: title,
		tasks: tasks,
		input: ti,
		theme: resolveTheme(theme),
	}
	m.filter()
	return m
}

// filter recomputes matches from the query, best match first.
func (m *pickerModel) filter() {
	query := strings.TrimSpace(m.input.Value())
	matches := make([]int, 0, len(m.tasks))
	if query == "" {
		for i := range m.tasks {
			matches = append(matches, i)
		}
	} else {
		for _, match := range fuzzy.FindFrom(query, taskTitles(m.tasks)) {
			matches = append(matches, match.Index)
		}
	}
	m.matches = matches
	if m.cursor >= len(m.matches) {
		m.cursor = max(len(m.matches)-1, 0)
	}
}

func (m pickerModel) selected() *domain.Task {
	if len(m.matches) == 0 {
		return nil
	}
	t := m.tasks[m.matches[m.cursor]]
	return &t
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if len(m.matches) == 0 {
				return m, nil
			}
			m.chosen = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filter()
	return m, cmd
}

func (m pickerModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle))
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorFocus)).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  "+m.title) + " ")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.matches) == 0 {
		b.WriteString(dimStyle.Render("    no matching tasks") + "\n")
	}

	start := 0
	if m.cursor >= maxPickerRows {
		start = m.cursor - maxPickerRows + 1
	}
	end := min(start+maxPickerRows, len(m.matches))
	for i := start; i < end; i++ {
		task := m.tasks[m.matches[i]]
		line := fmt.Sprintf(" %-30s %s", task.Title, pickerDesc(task))
		if i == m.cursor {
			b.WriteString("  " + activeStyle.Render("▸"+line) + "\n")
		} else {
			b.WriteString(dimStyle.Render("   "+line) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  ↑/↓ navigate · enter select · esc back") + "\n")

	return b.String()
}

func pickerDesc(t domain.Task) string {
	desc := domain.GetCategoryLabel(t.Category)
	if t.FocusMode {
		desc += fmt.Sprintf(" · %d×%dm", max(t.Cycles, 1), t.FocusDuration)
	}
	return desc
}

// RunTaskPicker lets the user fuzzy-search tasks and returns the chosen one.
func RunTaskPicker(title string, tasks []domain.Task, theme *config.ThemeConfig) PickerResult {
	if len(tasks) == 0 {
		return PickerResult{Aborted: true}
	}

	p := tea.NewProgram(newPickerModel(title, tasks, theme))
	result, err := p.Run()
	if err != nil {
		return PickerResult{Aborted: true}
	}

	final := result.(pickerModel)
	if final.aborted || !final.chosen {
		return PickerResult{Aborted: true}
	}
	return PickerResult{Task: final.selected()}
}
