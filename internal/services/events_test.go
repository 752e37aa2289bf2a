package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

func TestMultiEvents_FansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := MultiEvents{a, b, ports.NopEvents{}}

	m.ProgressUpdate(nil, 3)
	m.PhaseChanged(domain.SessionSnapshot{PhaseIndex: 1})
	m.SessionComplete(domain.SessionResult{DurationMinutes: 3})
	m.SessionAbandoned()
	m.OnPause()
	m.OnResume()

	for _, r := range []*recorder{a, b} {
		assert.Equal(t, []int{3}, r.progress)
		assert.Equal(t, []int{1}, r.phases)
		assert.Len(t, r.completed, 1)
		assert.Equal(t, 1, r.abandoned)
		assert.Equal(t, 1, r.pauses)
		assert.Equal(t, 1, r.resumes)
	}
}

func TestLedgerCredit_SkipsZeroMinutes(t *testing.T) {
	store, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	ledger := NewLedgerService(store.KV(), newTestClock(), nil)
	credit := NewLedgerCredit(ctx, ledger, nil)

	credit.SessionComplete(domain.SessionResult{DurationMinutes: 0})
	credit.SessionComplete(domain.SessionResult{DurationMinutes: 12})

	p, err := ledger.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, p.XP)
}

func TestHistoryRecorder_GitStamping(t *testing.T) {
	tests := []struct {
		mode       string
		wantBranch string
	}{
		{"", "feature/x"},
		{string(domain.CategoryWork), "feature/x"},
		{string(domain.CategoryPersonalWork), "feature/x"},
		{string(domain.CategoryReading), ""},
		{string(domain.CategorySelfCare), ""},
	}

	for _, tt := range tests {
		t.Run("mode "+tt.mode, func(t *testing.T) {
			store, cleanup := setupTestStorage(t)
			defer cleanup()

			git := &ports.GitInfo{Branch: "feature/x", Commit: "deadbee"}
			rec := NewHistoryRecorder(context.Background(), store.History(), git, nil)

			now := time.Now()
			rec.SessionComplete(domain.SessionResult{
				Name:            "Block",
				Mode:            tt.mode,
				BreakType:       domain.BreakNone,
				DurationMinutes: 10,
				Completed:       true,
				StartedAt:       now.Add(-10 * time.Minute),
				EndedAt:         now,
			})

			recorded := rec.Recorded()
			require.Len(t, recorded, 1)
			assert.Equal(t, tt.wantBranch, recorded[0].GitBranch)
		})
	}
}
