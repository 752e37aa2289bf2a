package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/wellflow/internal/domain"
)

func TestStateService_GetCurrentState(t *testing.T) {
	f := newSessionServiceFixture(t, nil)
	ctx := context.Background()
	state := NewStateService(f.tasks, f.ledger, f.sessions)

	_, err := state.AddTask(ctx, domain.TaskInput{Title: "Inbox zero", Category: domain.CategoryWork})
	require.NoError(t, err)
	done, err := state.AddTask(ctx, domain.TaskInput{Title: "Walk"})
	require.NoError(t, err)
	_, err = state.ToggleTask(ctx, done.ID)
	require.NoError(t, err)

	current, err := state.GetCurrentState(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.tasks.Today(), current.Date)
	assert.Len(t, current.Occurrences, 2)
	assert.Equal(t, 1, current.PendingCount())
	assert.Equal(t, domain.XPPlainTask, current.Progress.DailyXP)
	assert.Equal(t, 1, current.TodayStats.TasksDone)
	assert.False(t, current.IsSessionActive())

	session, err := f.sessions.Begin(ctx, StartSessionRequest{Name: "Deep", Duration: 25})
	require.NoError(t, err)
	state.SetLiveSession(session)
	f.clock.Tick(10)

	current, err = state.GetCurrentState(ctx)
	require.NoError(t, err)
	require.True(t, current.IsSessionActive())
	assert.Equal(t, "Deep", current.ActiveSession.Name)
	session.Close()
}

func TestStateService_Operations(t *testing.T) {
	f := newSessionServiceFixture(t, nil)
	ctx := context.Background()
	state := NewStateService(f.tasks, f.ledger, f.sessions)
	today := f.tasks.Today()

	daily, err := state.AddTask(ctx, domain.TaskInput{Title: "Journal", Repeat: domain.RepeatDaily})
	require.NoError(t, err)

	require.NoError(t, state.DeleteOccurrence(ctx, daily.ID, today))
	occ, err := state.ListOccurrences(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, occ)

	occ, err = state.ListOccurrences(ctx, today.AddDays(1))
	require.NoError(t, err)
	assert.Len(t, occ, 1)

	require.NoError(t, state.DeleteSeries(ctx, daily.ID))
	occ, err = state.ListOccurrences(ctx, today.AddDays(1))
	require.NoError(t, err)
	assert.Empty(t, occ)

	p, err := state.SetDailyGoal(ctx, 120)
	require.NoError(t, err)
	assert.Equal(t, 120, p.DailyGoal)

	session, err := f.sessions.Begin(ctx, StartSessionRequest{Name: "Short", Duration: 1, BreakType: domain.BreakNone})
	require.NoError(t, err)
	f.clock.Tick(60)
	assert.Equal(t, domain.SessionStatusCompleted, session.Snapshot().Status)

	history, err := state.GetHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Short", history[0].Name)
}
