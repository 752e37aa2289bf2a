package services

import (
	"context"
	"time"

	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

// historyWindow bounds GetHistory lookups.
const historyWindow = 30 * 24 * time.Hour

// StateService implements the MCPStateProvider interface.
type StateService struct {
	tasks    *TaskService
	ledger   *LedgerService
	sessions *SessionService
	live     ports.LiveSession
}

// NewStateService creates a new state service.
func NewStateService(tasks *TaskService, ledger *LedgerService, sessions *SessionService) *StateService {
	return &StateService{tasks: tasks, ledger: ledger, sessions: sessions}
}

// SetLiveSession exposes an in-process session in GetCurrentState.
func (s *StateService) SetLiveSession(live ports.LiveSession) {
	s.live = live
}

// GetCurrentState implements ports.MCPStateProvider.
func (s *StateService) GetCurrentState(ctx context.Context) (*domain.CurrentState, error) {
	today := s.tasks.Today()

	progress, err := s.ledger.Progress(ctx)
	if err != nil {
		return nil, err
	}

	occ, err := s.tasks.OccurrencesForDate(ctx, today)
	if err != nil {
		return nil, err
	}

	stats, err := s.sessions.DailyStats(ctx, today)
	if err != nil {
		stats = &domain.DailyStats{Date: today}
	}

	state := &domain.CurrentState{
		Date:        today,
		Progress:    *progress,
		Occurrences: occ,
		TodayStats:  *stats,
	}
	if s.live != nil {
		snap := s.live.Snapshot()
		state.ActiveSession = &snap
	}
	return state, nil
}

// ListOccurrences implements ports.MCPStateProvider.
func (s *StateService) ListOccurrences(ctx context.Context, day domain.Date) ([]domain.Task, error) {
	return s.tasks.OccurrencesForDate(ctx, day)
}

// AddTask implements ports.MCPStateProvider.
func (s *StateService) AddTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	return s.tasks.AddTask(ctx, in)
}

// ToggleTask implements ports.MCPStateProvider.
func (s *StateService) ToggleTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.ToggleTask(ctx, id)
}

// DeleteOccurrence implements ports.MCPStateProvider.
func (s *StateService) DeleteOccurrence(ctx context.Context, id string, day domain.Date) error {
	return s.tasks.DeleteOccurrence(ctx, id, day)
}

// DeleteSeries implements ports.MCPStateProvider.
func (s *StateService) DeleteSeries(ctx context.Context, id string) error {
	return s.tasks.DeleteSeries(ctx, id)
}

// GetHistory implements ports.MCPStateProvider.
func (s *StateService) GetHistory(ctx context.Context, limit int) ([]*domain.SessionRecord, error) {
	since := s.sessions.clock.Now().Add(-historyWindow)
	return s.sessions.History(ctx, since, limit)
}

// SetDailyGoal implements ports.MCPStateProvider.
func (s *StateService) SetDailyGoal(ctx context.Context, minutes int) (*domain.DailyProgress, error) {
	return s.ledger.SetDailyGoal(ctx, minutes)
}

// Ensure StateService implements MCPStateProvider.
var _ ports.MCPStateProvider = (*StateService)(nil)
