package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xvierd/wellflow/internal/config"
	"github.com/xvierd/wellflow/internal/domain"
)

type sent struct {
	title, message string
}

func newTestNotifier(enabled bool) (*Notifier, *[]sent) {
	var got []sent
	n := New(&config.NotificationConfig{Enabled: enabled}, nil).WithSender(func(title, message string) error {
		got = append(got, sent{title, message})
		return nil
	})
	return n, &got
}

func TestNotifier_Disabled(t *testing.T) {
	n, got := newTestNotifier(false)

	n.SessionComplete(domain.SessionResult{Name: "Essay", DurationMinutes: 25, Completed: true})
	assert.Empty(t, *got)
	assert.False(t, n.IsEnabled())

	assert.False(t, New(nil, nil).IsEnabled())
	assert.NoError(t, New(nil, nil).Notify("x", "y"))
}

func TestNotifier_PhaseChanged(t *testing.T) {
	n, got := newTestNotifier(true)

	n.PhaseChanged(domain.SessionSnapshot{
		Name:          "Thesis",
		Phase:         domain.Phase{Type: domain.PhaseBreak, DurationSeconds: 600},
		TimeRemaining: 10 * time.Minute,
	})
	n.PhaseChanged(domain.SessionSnapshot{
		Name:          "Thesis",
		Phase:         domain.Phase{Type: domain.PhaseFocus, DurationSeconds: 1500},
		TimeRemaining: 25 * time.Minute,
	})

	if assert.Len(t, *got, 2) {
		assert.Equal(t, "Focus block done", (*got)[0].title)
		assert.Contains(t, (*got)[0].message, "10 minute break")
		assert.Equal(t, "Break over", (*got)[1].title)
		assert.Contains(t, (*got)[1].message, "25 minutes")
	}
}

func TestNotifier_SessionComplete(t *testing.T) {
	n, got := newTestNotifier(true)

	n.SessionComplete(domain.SessionResult{Name: "Essay", DurationMinutes: 25, Completed: true})
	n.SessionComplete(domain.SessionResult{Name: "Essay", DurationMinutes: 7})

	if assert.Len(t, *got, 2) {
		assert.Equal(t, "Session complete", (*got)[0].title)
		assert.Equal(t, "Session ended", (*got)[1].title)
		assert.Contains(t, (*got)[1].message, "7 focus minutes")
	}
}

func TestNotifier_SendErrorIsSwallowed(t *testing.T) {
	n := New(&config.NotificationConfig{Enabled: true}, nil).WithSender(func(string, string) error {
		return errors.New("no dbus")
	})

	assert.Error(t, n.Notify("a", "b"))
	assert.NotPanics(t, func() {
		n.SessionComplete(domain.SessionResult{Completed: true})
	})
}
