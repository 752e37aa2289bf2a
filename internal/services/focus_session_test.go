package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/wellflow/internal/adapters/clock"
	"github.com/xvierd/wellflow/internal/adapters/filestore"
	"github.com/xvierd/wellflow/internal/adapters/storage"
	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

func setupTestStorage(t *testing.T) (ports.Storage, func()) {
	store, err := storage.NewMemory()
	if err != nil {
		t.Fatalf("Failed to create test storage: %v", err)
	}
	return store, func() { _ = store.Close() }
}

func newTestClock() *clock.Fake {
	return clock.NewFake(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.Local))
}

// recorder captures session events.
type recorder struct {
	mu        sync.Mutex
	progress  []int
	phases    []int
	completed []domain.SessionResult
	abandoned int
	pauses    int
	resumes   int
}

func (r *recorder) ProgressUpdate(_ *string, minutes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, minutes)
}

func (r *recorder) PhaseChanged(snap domain.SessionSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, snap.PhaseIndex)
}

func (r *recorder) SessionComplete(result domain.SessionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, result)
}

func (r *recorder) SessionAbandoned() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandoned++
}

func (r *recorder) OnPause()  { r.pauses++ }
func (r *recorder) OnResume() { r.resumes++ }

type sessionFixture struct {
	clock  *clock.Fake
	kv     ports.KVStore
	events *recorder
}

func newSessionFixture(t *testing.T) *sessionFixture {
	store, cleanup := setupTestStorage(t)
	t.Cleanup(cleanup)
	return &sessionFixture{clock: newTestClock(), kv: store.KV(), events: &recorder{}}
}

func (f *sessionFixture) start(t *testing.T, cfg domain.SessionConfig) *FocusSession {
	t.Helper()
	s, err := NewFocusSession(FocusSessionOptions{
		Config: cfg,
		Clock:  f.clock,
		Store:  f.kv,
		Events: f.events,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	return s
}

var customCycles = domain.SessionConfig{
	Name:         "Thesis",
	BreakType:    domain.BreakCustom,
	CustomCycles: []domain.Cycle{{Focus: 50, Break: 10}, {Focus: 25, Break: 5}},
}

func TestFocusSession_NaturalCompletion(t *testing.T) {
	f := newSessionFixture(t)
	s := f.start(t, customCycles)

	assert.Equal(t, 1, f.clock.Active())

	f.clock.Tick(3000)
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.PhaseIndex)
	assert.Equal(t, 50, snap.TotalFocusMinutesAccrued)
	assert.Equal(t, 10*time.Minute, snap.TimeRemaining)

	f.clock.Tick(600 + 1500 + 300)

	require.Len(t, f.events.completed, 1)
	result := f.events.completed[0]
	assert.Equal(t, 75, result.DurationMinutes)
	assert.True(t, result.Completed)
	assert.Equal(t, domain.BreakCustom, result.BreakType)
	assert.Equal(t, []int{1, 2, 3}, f.events.phases)

	assert.Equal(t, domain.SessionStatusCompleted, s.Snapshot().Status)
	assert.Equal(t, 0, f.clock.Active(), "tick handle is cancelled")

	_, ok, err := f.kv.Get(context.Background(), s.Key())
	require.NoError(t, err)
	assert.False(t, ok, "persisted state is cleared")

	f.clock.Tick(10)
	assert.Len(t, f.events.completed, 1, "no further events")
}

func TestFocusSession_ProgressUpdates(t *testing.T) {
	f := newSessionFixture(t)
	f.start(t, domain.SessionConfig{Name: "Read", Duration: 2, BreakType: domain.BreakPomodoro})

	f.clock.Tick(120 + 10)

	assert.Len(t, f.events.progress, 120, "progress only during focus")
	assert.Equal(t, 0, f.events.progress[58])
	assert.Equal(t, 1, f.events.progress[59])
	assert.Equal(t, 2, f.events.progress[119])
}

func TestFocusSession_ResumeRoundTrip(t *testing.T) {
	f := newSessionFixture(t)
	first := f.start(t, customCycles)

	f.clock.Tick(100)
	before := first.State()
	first.Close()
	assert.Equal(t, 0, f.clock.Active())

	second := f.start(t, customCycles)
	after := second.State()

	assert.True(t, second.Snapshot().Resumed)
	assert.Equal(t, before.CurrentPhaseIndex, after.CurrentPhaseIndex)
	assert.Equal(t, before.TimeRemainingSeconds, after.TimeRemainingSeconds)
	assert.Equal(t, before.TimeSpentInCurrentPhaseSeconds, after.TimeSpentInCurrentPhaseSeconds)
	assert.Equal(t, 2900, after.TimeRemainingSeconds)

	f.clock.Tick(1)
	assert.Equal(t, 2899, second.State().TimeRemainingSeconds)
}

func TestFocusSession_ResumeAcrossPhases(t *testing.T) {
	f := newSessionFixture(t)
	first := f.start(t, customCycles)
	f.clock.Tick(3000 + 30)
	first.Close()

	second := f.start(t, customCycles)
	snap := second.Snapshot()
	assert.Equal(t, 1, snap.PhaseIndex)
	assert.Equal(t, 50, snap.TotalFocusMinutesAccrued)
	assert.Equal(t, 570*time.Second, snap.TimeRemaining)
}

func TestFocusSession_DifferentCyclesStartFresh(t *testing.T) {
	f := newSessionFixture(t)
	long := domain.SessionConfig{Name: "Deep", BreakType: domain.BreakCustom,
		CustomCycles: []domain.Cycle{{Focus: 50, Break: 10}}}
	split := domain.SessionConfig{Name: "Deep", BreakType: domain.BreakCustom,
		CustomCycles: []domain.Cycle{{Focus: 25, Break: 5}, {Focus: 25, Break: 5}}}

	first := f.start(t, long)
	f.clock.Tick(1600)
	first.Close()

	second := f.start(t, split)
	snap := second.Snapshot()
	assert.False(t, snap.Resumed)
	assert.Equal(t, 0, snap.PhaseIndex)
	assert.Equal(t, 25*time.Minute, snap.TimeRemaining)

	require.NoError(t, second.End())
	assert.Empty(t, f.events.completed, "nothing focused in the new shape yet")
}

func TestFocusSession_CorruptStateStartsFresh(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not json", "{oops"},
		{"index out of range", `{"currentPhaseIndex":9,"timeRemainingSeconds":10}`},
		{"remaining too long", `{"currentPhaseIndex":0,"timeRemainingSeconds":99999}`},
		{"spent longer than phase", `{"currentPhaseIndex":0,"timeRemainingSeconds":1400,"timeSpentInCurrentPhaseSeconds":1600}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			require.NoError(t, f.kv.Set(context.Background(), domain.SessionKey(customCycles), tt.blob))

			s := f.start(t, customCycles)

			snap := s.Snapshot()
			assert.False(t, snap.Resumed)
			assert.Equal(t, 0, snap.PhaseIndex)
			assert.Equal(t, 50*time.Minute, snap.TimeRemaining)
		})
	}
}

func TestFocusSession_EndWithPartialCredit(t *testing.T) {
	f := newSessionFixture(t)
	s := f.start(t, domain.SessionConfig{Name: "Essay", Duration: 25})

	f.clock.Tick(90)
	require.NoError(t, s.End())

	require.Len(t, f.events.completed, 1)
	assert.Equal(t, 1, f.events.completed[0].DurationMinutes)
	assert.False(t, f.events.completed[0].Completed)
	assert.Equal(t, 0, f.events.abandoned)
	assert.Equal(t, 0, f.clock.Active())

	_, ok, _ := f.kv.Get(context.Background(), s.Key())
	assert.False(t, ok)
}

func TestFocusSession_EndCountsCompletedFocusPhases(t *testing.T) {
	f := newSessionFixture(t)
	s := f.start(t, customCycles)

	f.clock.Tick(3000 + 2)
	require.NoError(t, s.End())

	require.Len(t, f.events.completed, 1)
	assert.Equal(t, 50, f.events.completed[0].DurationMinutes, "break seconds are not credited")
	assert.False(t, f.events.completed[0].Completed)
}

func TestFocusSession_EndWithoutFocusTimeAbandons(t *testing.T) {
	tests := []struct {
		name  string
		ticks int
	}{
		{"immediately", 0},
		{"under a minute", 59},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			s := f.start(t, domain.SessionConfig{Name: "Quick", Duration: 25, BreakType: domain.BreakPomodoro})

			f.clock.Tick(tt.ticks)
			require.NoError(t, s.End())

			assert.Equal(t, 1, f.events.abandoned)
			assert.Empty(t, f.events.completed)
			assert.Equal(t, domain.SessionStatusAbandoned, s.Snapshot().Status)

			_, ok, _ := f.kv.Get(context.Background(), s.Key())
			assert.False(t, ok)
		})
	}
}

func TestFocusSession_PauseSuspendsTicks(t *testing.T) {
	f := newSessionFixture(t)
	s := f.start(t, domain.SessionConfig{Name: "Code", Duration: 25})

	f.clock.Tick(10)
	require.NoError(t, s.Pause())
	require.NoError(t, s.Pause())
	assert.Equal(t, 0, f.clock.Active())

	progress := len(f.events.progress)
	f.clock.Tick(30)
	assert.Equal(t, 25*time.Minute-10*time.Second, s.Snapshot().TimeRemaining)
	assert.Len(t, f.events.progress, progress, "no progress while paused")
	assert.Equal(t, domain.SessionStatusPaused, s.Snapshot().Status)

	require.NoError(t, s.Resume())
	require.NoError(t, s.Resume())
	assert.Equal(t, 1, f.clock.Active(), "one tick handle")

	f.clock.Tick(5)
	assert.Equal(t, 25*time.Minute-15*time.Second, s.Snapshot().TimeRemaining)
	assert.Equal(t, 1, f.events.pauses)
	assert.Equal(t, 1, f.events.resumes)
}

func TestFocusSession_SkipBreak(t *testing.T) {
	t.Run("rejected during focus", func(t *testing.T) {
		f := newSessionFixture(t)
		s := f.start(t, customCycles)

		assert.ErrorIs(t, s.SkipBreak(), domain.ErrNotBreakPhase)
	})

	t.Run("mid sequence advances", func(t *testing.T) {
		f := newSessionFixture(t)
		s := f.start(t, customCycles)
		f.clock.Tick(3000 + 5)

		require.NoError(t, s.SkipBreak())

		snap := s.Snapshot()
		assert.Equal(t, 2, snap.PhaseIndex)
		assert.Equal(t, 25*time.Minute, snap.TimeRemaining)
		assert.Equal(t, domain.SessionStatusRunning, snap.Status)
	})

	t.Run("last break completes", func(t *testing.T) {
		f := newSessionFixture(t)
		s := f.start(t, domain.SessionConfig{Name: "Pomo", Duration: 25, BreakType: domain.BreakPomodoro})
		f.clock.Tick(1500 + 1)

		require.NoError(t, s.SkipBreak())

		require.Len(t, f.events.completed, 1)
		assert.Equal(t, 25, f.events.completed[0].DurationMinutes)
		assert.True(t, f.events.completed[0].Completed)
		assert.Equal(t, 0, f.clock.Active())
	})

	t.Run("while paused stays paused", func(t *testing.T) {
		f := newSessionFixture(t)
		s := f.start(t, customCycles)
		f.clock.Tick(3000 + 5)
		require.NoError(t, s.Pause())

		require.NoError(t, s.SkipBreak())

		snap := s.Snapshot()
		assert.Equal(t, 2, snap.PhaseIndex)
		assert.Equal(t, domain.SessionStatusPaused, snap.Status)
		assert.Equal(t, 0, f.clock.Active())
	})
}

func TestFocusSession_SkipTrailingBreak(t *testing.T) {
	f := newSessionFixture(t)
	s, err := NewFocusSession(FocusSessionOptions{
		Config:            domain.SessionConfig{Name: "Pomo", Duration: 1, BreakType: domain.BreakPomodoro},
		Clock:             f.clock,
		Store:             f.kv,
		Events:            f.events,
		SkipTrailingBreak: true,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	f.clock.Tick(60)

	require.Len(t, f.events.completed, 1)
	assert.True(t, f.events.completed[0].Completed)
	assert.Equal(t, 1, f.events.completed[0].DurationMinutes)
}

func TestFocusSession_ZeroLengthBreakIsSkipped(t *testing.T) {
	f := newSessionFixture(t)
	s := f.start(t, domain.SessionConfig{
		Name:         "Sprint",
		BreakType:    domain.BreakCustom,
		CustomCycles: []domain.Cycle{{Focus: 1, Break: 0}, {Focus: 1, Break: 0}},
	})

	f.clock.Tick(60)
	assert.Equal(t, 2, s.Snapshot().PhaseIndex)

	f.clock.Tick(60)
	require.Len(t, f.events.completed, 1)
	assert.Equal(t, 2, f.events.completed[0].DurationMinutes)
}

func TestFocusSession_FinishedRejectsCommands(t *testing.T) {
	f := newSessionFixture(t)
	s := f.start(t, domain.SessionConfig{Name: "Tiny", Duration: 1})
	f.clock.Tick(60)

	assert.ErrorIs(t, s.Pause(), domain.ErrSessionFinished)
	assert.ErrorIs(t, s.Resume(), domain.ErrSessionFinished)
	assert.ErrorIs(t, s.SkipBreak(), domain.ErrSessionFinished)
	assert.ErrorIs(t, s.End(), domain.ErrSessionFinished)
	assert.ErrorIs(t, s.Start(context.Background()), domain.ErrSessionFinished)
}

func TestFocusSession_InvalidConfig(t *testing.T) {
	f := newSessionFixture(t)

	_, err := NewFocusSession(FocusSessionOptions{
		Config: domain.SessionConfig{BreakType: domain.BreakCustom},
		Clock:  f.clock,
		Store:  f.kv,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyPhaseSequence)

	_, err = NewFocusSession(FocusSessionOptions{
		Config: domain.SessionConfig{Duration: 0},
		Clock:  f.clock,
		Store:  f.kv,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestFocusSession_LockIsExclusive(t *testing.T) {
	f := newSessionFixture(t)
	locker, err := filestore.NewLocker(t.TempDir())
	require.NoError(t, err)

	opts := FocusSessionOptions{
		Config: domain.SessionConfig{Name: "Shared", Duration: 25},
		Clock:  f.clock,
		Store:  f.kv,
		Lock:   locker,
	}

	first, err := NewFocusSession(opts)
	require.NoError(t, err)
	require.NoError(t, first.Start(context.Background()))

	second, err := NewFocusSession(opts)
	require.NoError(t, err)
	assert.ErrorIs(t, second.Start(context.Background()), domain.ErrSessionLocked)

	first.Close()
	require.NoError(t, second.Start(context.Background()))
	assert.True(t, second.Snapshot().Resumed)
	second.Close()
}
