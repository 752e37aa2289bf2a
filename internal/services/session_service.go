package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

// FocusDefaults are applied to sessions that do not specify their own shape.
type FocusDefaults struct {
	Duration          int
	BreakType         domain.BreakType
	SkipTrailingBreak bool
}

// DefaultFocusDefaults returns a 25 minute pomodoro.
func DefaultFocusDefaults() FocusDefaults {
	return FocusDefaults{Duration: 25, BreakType: domain.BreakPomodoro}
}

// SessionService handles focus session use cases.
type SessionService struct {
	kv          ports.KVStore
	history     ports.HistoryRepository
	tasks       *TaskService
	ledger      *LedgerService
	clock       ports.Clock
	lock        ports.SessionLock
	gitDetector ports.GitDetector
	logger      *slog.Logger
	defaults    FocusDefaults
}

// NewSessionService creates a new session service. lock and gitDetector may be nil.
func NewSessionService(
	kv ports.KVStore,
	history ports.HistoryRepository,
	tasks *TaskService,
	ledger *LedgerService,
	clock ports.Clock,
	lock ports.SessionLock,
	gitDetector ports.GitDetector,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		kv:          kv,
		history:     history,
		tasks:       tasks,
		ledger:      ledger,
		clock:       clock,
		lock:        lock,
		gitDetector: gitDetector,
		logger:      loggerOrDefault(logger),
		defaults:    DefaultFocusDefaults(),
	}
}

// SetDefaults updates the defaults for new sessions.
func (s *SessionService) SetDefaults(d FocusDefaults) {
	s.defaults = d
}

// StartSessionRequest contains data to start a focus session.
type StartSessionRequest struct {
	// Task selects a task by ID or fuzzy title. Empty means an ad-hoc session.
	Task       string
	Name       string
	Duration   int
	BreakType  domain.BreakType
	Cycles     []domain.Cycle
	WorkingDir string
	// Events receives session events in addition to history and ledger credit.
	Events []ports.SessionEvents
}

// ResolveConfig turns a request into a session configuration.
func (s *SessionService) ResolveConfig(ctx context.Context, req StartSessionRequest) (domain.SessionConfig, error) {
	var cfg domain.SessionConfig

	if strings.TrimSpace(req.Task) != "" {
		matches, err := s.tasks.FindByTitle(ctx, req.Task)
		if err != nil {
			return cfg, err
		}
		if len(matches) == 0 {
			return cfg, fmt.Errorf("%w: %q", domain.ErrTaskNotFound, req.Task)
		}
		cfg = matches[0].SessionConfig()
	} else {
		cfg.Name = strings.TrimSpace(req.Name)
		if cfg.Name == "" {
			cfg.Name = "Focus"
		}
	}

	switch {
	case len(req.Cycles) > 0:
		cfg.BreakType = domain.BreakCustom
		cfg.CustomCycles = req.Cycles
	case cfg.BreakType == domain.BreakCustom:
		if req.Duration > 0 || req.BreakType != "" {
			return cfg, fmt.Errorf("%w: use --cycles to change %q", domain.ErrTaskShapesSession, cfg.Name)
		}
	default:
		cfg.BreakType = req.BreakType
		if cfg.BreakType == "" {
			cfg.BreakType = s.defaults.BreakType
		}
		cfg.CustomCycles = nil
		if req.Duration > 0 {
			cfg.Duration = req.Duration
		}
		if cfg.Duration <= 0 {
			cfg.Duration = s.defaults.Duration
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Begin resolves a request, wires history and ledger credit, and starts
// (or resumes) the focus session.
func (s *SessionService) Begin(ctx context.Context, req StartSessionRequest) (*FocusSession, error) {
	cfg, err := s.ResolveConfig(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	var gitInfo *ports.GitInfo
	if s.gitDetector != nil && req.WorkingDir != "" {
		info, err := s.gitDetector.Detect(ctx, req.WorkingDir)
		if err != nil {
			s.logger.Debug("git detection failed", "dir", req.WorkingDir, "error", err)
		} else {
			gitInfo = info
		}
	}

	events := MultiEvents{
		NewHistoryRecorder(ctx, s.history, gitInfo, s.logger),
		NewLedgerCredit(ctx, s.ledger, s.logger),
	}
	events = append(events, req.Events...)

	session, err := NewFocusSession(FocusSessionOptions{
		Config:            cfg,
		Clock:             s.clock,
		Store:             s.kv,
		Events:            events,
		Lock:              s.lock,
		Logger:            s.logger,
		SkipTrailingBreak: s.defaults.SkipTrailingBreak,
	})
	if err != nil {
		return nil, err
	}

	if err := session.Start(ctx); err != nil {
		if errors.Is(err, domain.ErrSessionLocked) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionLocked, cfg.Name)
		}
		return nil, err
	}
	return session, nil
}

// History returns the most recent session records.
func (s *SessionService) History(ctx context.Context, since time.Time, limit int) ([]*domain.SessionRecord, error) {
	records, err := s.history.FindRecent(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return records, nil
}

// HistoryForTask returns every record bound to a task.
func (s *SessionService) HistoryForTask(ctx context.Context, taskID string) ([]*domain.SessionRecord, error) {
	records, err := s.history.FindByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task history: %w", err)
	}
	return records, nil
}

// DailyStats aggregates the sessions of a day and counts finished tasks.
func (s *SessionService) DailyStats(ctx context.Context, day domain.Date) (*domain.DailyStats, error) {
	stats, err := s.history.GetDailyStats(ctx, day, s.clock.Now().Location())
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	occ, err := s.tasks.OccurrencesForDate(ctx, day)
	if err != nil {
		return nil, err
	}
	for _, t := range occ {
		if t.Done {
			stats.TasksDone++
		}
	}
	return stats, nil
}
