// Package notification provides desktop notifications for focus sessions.
package notification

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"
	"github.com/xvierd/wellflow/internal/config"
	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

// SendFunc delivers one notification.
type SendFunc func(title, message string) error

// Notifier turns session events into desktop notifications.
type Notifier struct {
	ports.NopEvents
	cfg    *config.NotificationConfig
	send   SendFunc
	logger *slog.Logger
}

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Notifier{cfg: cfg, logger: logger}
	n.send = n.beeep
	return n
}

// WithSender replaces the delivery function.
func (n *Notifier) WithSender(send SendFunc) *Notifier {
	n.send = send
	return n
}

func (n *Notifier) beeep(title, message string) error {
	if n.cfg.Sound {
		if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
			n.logger.Debug("beep failed", "error", err)
		}
	}
	return beeep.Notify(title, message, "")
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}
	return n.send(title, message)
}

func (n *Notifier) notify(title, message string) {
	if err := n.Notify(title, message); err != nil {
		n.logger.Debug("notification failed", "title", title, "error", err)
	}
}

// PhaseChanged announces the start of a focus or break phase.
func (n *Notifier) PhaseChanged(snap domain.SessionSnapshot) {
	minutes := int(snap.TimeRemaining.Minutes())
	if snap.Phase.IsFocus() {
		n.notify("Break over", fmt.Sprintf("%s: %d minutes of focus. Ready?", snap.Name, minutes))
		return
	}
	n.notify("Focus block done", fmt.Sprintf("%s: take a %d minute break.", snap.Name, minutes))
}

// SessionComplete announces the end of a credited session.
func (n *Notifier) SessionComplete(result domain.SessionResult) {
	if result.Completed {
		n.notify("Session complete", fmt.Sprintf("Great job! %d focus minutes on %s.", result.DurationMinutes, result.Name))
		return
	}
	n.notify("Session ended", fmt.Sprintf("%d focus minutes on %s were saved.", result.DurationMinutes, result.Name))
}

var _ ports.SessionEvents = (*Notifier)(nil)
