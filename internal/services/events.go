package services

import (
	"context"
	"log/slog"

	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

// MultiEvents fans every event out to each collaborator in order.
type MultiEvents []ports.SessionEvents

func (m MultiEvents) ProgressUpdate(taskID *string, minutes int) {
	for _, e := range m {
		e.ProgressUpdate(taskID, minutes)
	}
}

func (m MultiEvents) PhaseChanged(snap domain.SessionSnapshot) {
	for _, e := range m {
		e.PhaseChanged(snap)
	}
}

func (m MultiEvents) SessionComplete(result domain.SessionResult) {
	for _, e := range m {
		e.SessionComplete(result)
	}
}

func (m MultiEvents) SessionAbandoned() {
	for _, e := range m {
		e.SessionAbandoned()
	}
}

func (m MultiEvents) OnPause() {
	for _, e := range m {
		e.OnPause()
	}
}

func (m MultiEvents) OnResume() {
	for _, e := range m {
		e.OnResume()
	}
}

// LedgerCredit awards one XP per credited focus minute when a session ends.
type LedgerCredit struct {
	ports.NopEvents
	ctx    context.Context
	ledger *LedgerService
	logger *slog.Logger
}

// NewLedgerCredit creates the ledger listener.
func NewLedgerCredit(ctx context.Context, ledger *LedgerService, logger *slog.Logger) *LedgerCredit {
	return &LedgerCredit{ctx: ctx, ledger: ledger, logger: loggerOrDefault(logger)}
}

func (c *LedgerCredit) SessionComplete(result domain.SessionResult) {
	if result.DurationMinutes <= 0 {
		return
	}
	if _, err := c.ledger.AwardXP(c.ctx, result.DurationMinutes); err != nil {
		c.logger.Warn("failed to credit session", "key", result.Key, "error", err)
	}
}

var (
	_ ports.SessionEvents = MultiEvents(nil)
	_ ports.SessionEvents = (*LedgerCredit)(nil)
)
