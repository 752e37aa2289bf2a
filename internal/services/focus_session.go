package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

// FocusSessionOptions wires a FocusSession to its collaborators.
type FocusSessionOptions struct {
	Config domain.SessionConfig
	Clock  ports.Clock
	Store  ports.KVStore
	Events ports.SessionEvents
	// Lock is optional. When set, Start holds it until the session ends.
	Lock   ports.SessionLock
	Logger *slog.Logger
	// SkipTrailingBreak ends the session instead of entering a break that
	// follows the final focus phase.
	SkipTrailingBreak bool
}

// FocusSession drives one run of a phase sequence. It ticks down the
// current phase once per second, persists its position on every change so
// a later session of the same shape resumes it, and reports progress
// through ports.SessionEvents.
//
// Event handlers run after the internal lock is released, so they may
// call Snapshot.
type FocusSession struct {
	mu sync.Mutex

	cfg    domain.SessionConfig
	key    string
	phases []domain.Phase

	clock             ports.Clock
	store             ports.KVStore
	events            ports.SessionEvents
	lock              ports.SessionLock
	logger            *slog.Logger
	skipTrailingBreak bool

	ctx     context.Context
	state   domain.LiveSessionState
	status  domain.SessionStatus
	started bool
	closed  bool
	resumed bool
	result  *domain.SessionResult

	cancelTick func()
	tickGen    int
	release    func() error
}

// NewFocusSession validates the configuration and lays out its phases.
// The session does nothing until Start.
func NewFocusSession(opts FocusSessionOptions) (*FocusSession, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	phases := domain.BuildPhases(opts.Config)
	if len(phases) == 0 {
		return nil, domain.ErrEmptyPhaseSequence
	}
	if opts.Clock == nil || opts.Store == nil {
		return nil, fmt.Errorf("focus session needs a clock and a store")
	}

	events := opts.Events
	if events == nil {
		events = ports.NopEvents{}
	}

	return &FocusSession{
		cfg:               opts.Config,
		key:               domain.SessionKey(opts.Config),
		phases:            phases,
		clock:             opts.Clock,
		store:             opts.Store,
		events:            events,
		lock:              opts.Lock,
		logger:            loggerOrDefault(opts.Logger),
		skipTrailingBreak: opts.SkipTrailingBreak,
		status:            domain.SessionStatusRunning,
	}, nil
}

// Key returns the persistence key of the session.
func (s *FocusSession) Key() string {
	return s.key
}

// Phases returns a copy of the phase sequence.
func (s *FocusSession) Phases() []domain.Phase {
	return append([]domain.Phase(nil), s.phases...)
}

// Start resumes a persisted run of the same key, or begins at the first
// phase, and starts ticking. Calling Start on a running session is a no-op.
func (s *FocusSession) Start(ctx context.Context) error {
	s.mu.Lock()
	var fire []func()
	defer func() { s.mu.Unlock(); run(fire) }()

	if s.closed || s.status.IsTerminal() {
		return domain.ErrSessionFinished
	}
	if s.started {
		return nil
	}

	if s.lock != nil {
		release, err := s.lock.Acquire(s.key)
		if err != nil {
			s.logger.Debug("session lock held elsewhere", "key", s.key, "error", err)
			return fmt.Errorf("failed to start session: %w", err)
		}
		s.release = release
	}

	s.ctx = ctx
	s.started = true
	s.state, s.resumed = s.restore()
	s.status = domain.SessionStatusRunning
	s.persist()

	s.logger.Debug("session started", "key", s.key, "resumed", s.resumed,
		"phase", s.state.CurrentPhaseIndex, "remaining", s.state.TimeRemainingSeconds)

	if s.state.TimeRemainingSeconds <= 0 {
		s.completePhase(&fire)
	}
	if s.status == domain.SessionStatusRunning {
		s.startTick()
	}
	return nil
}

// restore loads the persisted position for this key. Unreadable or
// out-of-range blobs are ignored.
func (s *FocusSession) restore() (domain.LiveSessionState, bool) {
	fresh := domain.NewLiveSessionState(s.phases, s.cfg.TaskID, s.clock.Now())

	raw, ok, err := s.store.Get(s.ctx, s.key)
	if err != nil {
		s.logger.Debug("session state unavailable", "key", s.key, "error", err)
		return fresh, false
	}
	if !ok {
		return fresh, false
	}

	var st domain.LiveSessionState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.logger.Debug("discarding unreadable session state", "key", s.key, "error", err)
		return fresh, false
	}
	if !st.FitsPhases(s.phases) {
		s.logger.Debug("discarding session state that does not fit", "key", s.key)
		return fresh, false
	}
	if st.StartedAt.IsZero() {
		st.StartedAt = fresh.StartedAt
	}
	st.TaskID = s.cfg.TaskID
	return st, true
}

// persist writes the current position. Failures are logged, not returned.
func (s *FocusSession) persist() {
	s.state.LastSavedAt = s.clock.Now()
	data, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Warn("failed to encode session state", "error", err)
		return
	}
	if err := s.store.Set(s.ctx, s.key, string(data)); err != nil {
		s.logger.Warn("failed to persist session state", "key", s.key, "error", err)
	}
}

func (s *FocusSession) clear() {
	if err := s.store.Remove(s.ctx, s.key); err != nil {
		s.logger.Warn("failed to clear session state", "key", s.key, "error", err)
	}
}

func (s *FocusSession) startTick() {
	if s.cancelTick != nil {
		return
	}
	s.tickGen++
	gen := s.tickGen
	s.cancelTick = s.clock.EverySecond(func() { s.tick(gen) })
}

func (s *FocusSession) stopTick() {
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
}

func (s *FocusSession) tick(gen int) {
	s.mu.Lock()
	var fire []func()
	defer func() { s.mu.Unlock(); run(fire) }()

	// A tick from a cancelled handle may still be in flight.
	if gen != s.tickGen || s.cancelTick == nil || s.status != domain.SessionStatusRunning {
		return
	}

	s.state.TimeRemainingSeconds--
	if s.currentPhase().IsFocus() {
		s.state.TimeSpentInCurrentPhaseSeconds++
		taskID := s.cfg.TaskID
		minutes := s.state.TotalFocusMinutesAccrued + s.state.TimeSpentInCurrentPhaseSeconds/60
		fire = append(fire, func() { s.events.ProgressUpdate(taskID, minutes) })
	}

	if s.state.TimeRemainingSeconds <= 0 {
		s.completePhase(&fire)
		return
	}
	s.persist()
}

func (s *FocusSession) currentPhase() domain.Phase {
	return s.phases[s.state.CurrentPhaseIndex]
}

func (s *FocusSession) isLastPhase() bool {
	return s.state.CurrentPhaseIndex == len(s.phases)-1
}

// completePhase credits a finished focus phase and moves on.
func (s *FocusSession) completePhase(fire *[]func()) {
	if p := s.currentPhase(); p.IsFocus() {
		s.state.TotalFocusMinutesAccrued += p.DurationSeconds / 60
	}
	s.advance(fire)
}

// advance moves past the current phase. Zero-length phases are completed
// immediately; the run finishes after the last phase.
func (s *FocusSession) advance(fire *[]func()) {
	for {
		if s.isLastPhase() {
			s.finish(fire, domain.TotalFocusMinutes(s.phases), true)
			return
		}

		s.state.CurrentPhaseIndex++
		s.state.TimeRemainingSeconds = s.currentPhase().DurationSeconds
		s.state.TimeSpentInCurrentPhaseSeconds = 0

		if s.skipTrailingBreak && s.isLastPhase() && !s.currentPhase().IsFocus() {
			s.finish(fire, domain.TotalFocusMinutes(s.phases), true)
			return
		}
		if s.state.TimeRemainingSeconds > 0 {
			break
		}
		if p := s.currentPhase(); p.IsFocus() {
			s.state.TotalFocusMinutesAccrued += p.DurationSeconds / 60
		}
	}

	s.persist()
	snap := s.snapshotLocked()
	*fire = append(*fire, func() { s.events.PhaseChanged(snap) })
}

// finish ends the run with credit.
func (s *FocusSession) finish(fire *[]func(), minutes int, completed bool) {
	s.stopTick()
	s.clear()
	s.status = domain.SessionStatusCompleted
	s.result = &domain.SessionResult{
		Key:             s.key,
		Name:            s.cfg.Name,
		Mode:            s.cfg.Mode,
		BreakType:       s.breakType(),
		TaskID:          s.cfg.TaskID,
		DurationMinutes: minutes,
		Completed:       completed,
		StartedAt:       s.state.StartedAt,
		EndedAt:         s.clock.Now(),
	}
	s.releaseLock()

	s.logger.Debug("session complete", "key", s.key, "minutes", minutes, "completed", completed)
	result := *s.result
	*fire = append(*fire, func() { s.events.SessionComplete(result) })
}

func (s *FocusSession) abandon(fire *[]func()) {
	s.stopTick()
	s.clear()
	s.status = domain.SessionStatusAbandoned
	s.releaseLock()

	s.logger.Debug("session abandoned", "key", s.key)
	*fire = append(*fire, s.events.SessionAbandoned)
}

func (s *FocusSession) releaseLock() {
	if s.release == nil {
		return
	}
	if err := s.release(); err != nil {
		s.logger.Warn("failed to release session lock", "key", s.key, "error", err)
	}
	s.release = nil
}

func (s *FocusSession) breakType() domain.BreakType {
	if s.cfg.BreakType == "" {
		return domain.BreakNone
	}
	return s.cfg.BreakType
}

func (s *FocusSession) checkActive() error {
	if !s.started {
		return fmt.Errorf("session has not been started")
	}
	if s.closed || s.status.IsTerminal() {
		return domain.ErrSessionFinished
	}
	return nil
}

// Pause suspends ticking. Pausing a paused session is a no-op.
func (s *FocusSession) Pause() error {
	s.mu.Lock()
	var fire []func()
	defer func() { s.mu.Unlock(); run(fire) }()

	if err := s.checkActive(); err != nil {
		return err
	}
	if s.status == domain.SessionStatusPaused {
		return nil
	}

	s.stopTick()
	s.status = domain.SessionStatusPaused
	s.persist()
	fire = append(fire, s.events.OnPause)
	return nil
}

// Resume restarts ticking. Resuming a running session is a no-op.
func (s *FocusSession) Resume() error {
	s.mu.Lock()
	var fire []func()
	defer func() { s.mu.Unlock(); run(fire) }()

	if err := s.checkActive(); err != nil {
		return err
	}
	if s.status == domain.SessionStatusRunning {
		return nil
	}

	s.status = domain.SessionStatusRunning
	s.startTick()
	fire = append(fire, s.events.OnResume)
	return nil
}

// SkipBreak drops the rest of the current break. It fails during focus.
// Skipping the last phase completes the session. A paused session stays
// paused in the next phase.
func (s *FocusSession) SkipBreak() error {
	s.mu.Lock()
	var fire []func()
	defer func() { s.mu.Unlock(); run(fire) }()

	if err := s.checkActive(); err != nil {
		return err
	}
	if s.currentPhase().IsFocus() {
		return domain.ErrNotBreakPhase
	}

	s.advance(&fire)
	return nil
}

// End stops the session early. Focus time already spent is credited as a
// partial session; with none, the session is abandoned.
func (s *FocusSession) End() error {
	s.mu.Lock()
	var fire []func()
	defer func() { s.mu.Unlock(); run(fire) }()

	if err := s.checkActive(); err != nil {
		return err
	}

	minutes := s.state.TotalFocusMinutesAccrued
	if s.currentPhase().IsFocus() {
		minutes += s.state.TimeSpentInCurrentPhaseSeconds / 60
	}

	if minutes > 0 {
		s.finish(&fire, minutes, false)
	} else {
		s.abandon(&fire)
	}
	return nil
}

// Close stops ticking and releases the lock without ending the session.
// The persisted position is kept, so a later session resumes it.
func (s *FocusSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stopTick()
	if s.started && !s.status.IsTerminal() {
		s.persist()
	}
	s.releaseLock()
}

// Snapshot returns the current view of the session.
func (s *FocusSession) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *FocusSession) snapshotLocked() domain.SessionSnapshot {
	snap := domain.SessionSnapshot{
		Key:                      s.key,
		Name:                     s.cfg.Name,
		Status:                   s.status,
		Phase:                    s.currentPhase(),
		PhaseIndex:               s.state.CurrentPhaseIndex,
		PhaseCount:               len(s.phases),
		TimeRemaining:            secondsToDuration(s.state.TimeRemainingSeconds),
		TotalFocusMinutesAccrued: s.state.TotalFocusMinutesAccrued,
		FocusMinutesPlanned:      domain.TotalFocusMinutes(s.phases),
		TaskID:                   s.cfg.TaskID,
		Resumed:                  s.resumed,
	}
	if !s.started {
		snap.TimeRemaining = secondsToDuration(s.phases[0].DurationSeconds)
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

// State returns the persisted position of the session.
func (s *FocusSession) State() domain.LiveSessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func secondsToDuration(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func run(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

var _ ports.LiveSession = (*FocusSession)(nil)
