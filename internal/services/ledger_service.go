package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

// LedgerService owns the persisted XP ledger.
type LedgerService struct {
	mu          sync.Mutex
	kv          ports.KVStore
	clock       ports.Clock
	logger      *slog.Logger
	defaultGoal int
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(kv ports.KVStore, clock ports.Clock, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		kv:          kv,
		clock:       clock,
		logger:      loggerOrDefault(logger),
		defaultGoal: domain.DefaultDailyGoal,
	}
}

// SetDefaultGoal sets the goal used when no ledger has been stored yet.
func (s *LedgerService) SetDefaultGoal(minutes int) {
	s.defaultGoal = domain.ClampDailyGoal(minutes)
}

func (s *LedgerService) today() domain.Date {
	return domain.DateOf(s.clock.Now())
}

// load reads the ledger. A corrupt blob is logged and replaced by a fresh ledger.
func (s *LedgerService) load(ctx context.Context) (domain.Ledger, error) {
	fresh := domain.NewLedger()
	fresh.DailyGoal = s.defaultGoal

	raw, ok, err := s.kv.Get(ctx, ports.KeyLedger)
	if err != nil {
		return fresh, fmt.Errorf("failed to read ledger: %w", err)
	}
	if !ok {
		return fresh, nil
	}

	var l domain.Ledger
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		s.logger.Warn("discarding unreadable ledger", "error", err)
		return fresh, nil
	}
	if l.DailyGoal == 0 {
		l.DailyGoal = s.defaultGoal
	}
	return l, nil
}

func (s *LedgerService) save(ctx context.Context, l domain.Ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := s.kv.Set(ctx, ports.KeyLedger, string(data)); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// AwardXP adds amount (possibly negative) to today's ledger.
func (s *LedgerService) AwardXP(ctx context.Context, amount int) (*domain.DailyProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	before := l.StreakDays
	l.Award(today, amount)

	if err := s.save(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Debug("xp awarded", "amount", amount, "daily_xp", l.DailyXP, "streak", l.StreakDays)
	if l.StreakDays > before {
		s.logger.Info("daily goal reached", "streak", l.StreakDays)
	}

	p := l.Progress(today)
	return &p, nil
}

// SetDailyGoal updates the goal, clamped to the supported range.
func (s *LedgerService) SetDailyGoal(ctx context.Context, minutes int) (*domain.DailyProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	l.RolloverIfNewDay(today)
	l.DailyGoal = domain.ClampDailyGoal(minutes)

	if err := s.save(ctx, l); err != nil {
		return nil, err
	}

	p := l.Progress(today)
	return &p, nil
}

// CheckAndResetDaily applies a pending day rollover and persists it.
// It reports whether anything changed.
func (s *LedgerService) CheckAndResetDaily(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, changed, err := s.rollover(ctx)
	return changed, err
}

// Progress returns today's progress, rolling the ledger over first.
func (s *LedgerService) Progress(ctx context.Context) (*domain.DailyProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, _, err := s.rollover(ctx)
	if err != nil {
		return nil, err
	}
	p := l.Progress(s.today())
	return &p, nil
}

func (s *LedgerService) rollover(ctx context.Context) (domain.Ledger, bool, error) {
	l, err := s.load(ctx)
	if err != nil {
		return l, false, err
	}
	if !l.RolloverIfNewDay(s.today()) {
		return l, false, nil
	}
	if err := s.save(ctx, l); err != nil {
		return l, false, err
	}
	s.logger.Debug("ledger rolled over", "streak", l.StreakDays)
	return l, true, nil
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
