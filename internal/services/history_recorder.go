package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

// HistoryRecorder stores a history entry for every credited session,
// including partial ones.
type HistoryRecorder struct {
	ports.NopEvents
	mu      sync.Mutex
	ctx     context.Context
	repo    ports.HistoryRepository
	git     *ports.GitInfo
	logger  *slog.Logger
	records []*domain.SessionRecord
}

// NewHistoryRecorder creates a recorder. git may be nil.
func NewHistoryRecorder(ctx context.Context, repo ports.HistoryRepository, git *ports.GitInfo, logger *slog.Logger) *HistoryRecorder {
	return &HistoryRecorder{ctx: ctx, repo: repo, git: git, logger: loggerOrDefault(logger)}
}

func (h *HistoryRecorder) SessionComplete(result domain.SessionResult) {
	rec := domain.NewSessionRecord(result)
	if h.git != nil && stampsGit(result.Mode) {
		rec.SetGitContext(h.git.Branch, h.git.Commit)
	}

	if err := h.repo.Save(h.ctx, rec); err != nil {
		h.logger.Warn("failed to record session", "key", result.Key, "error", err)
		return
	}
	h.mu.Lock()
	h.records = append(h.records, rec)
	h.mu.Unlock()
}

// Recorded returns the records saved through this recorder.
func (h *HistoryRecorder) Recorded() []*domain.SessionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*domain.SessionRecord(nil), h.records...)
}

// stampsGit reports whether sessions of a mode carry repository context.
func stampsGit(mode string) bool {
	switch domain.Category(mode) {
	case domain.CategoryWork, domain.CategoryPersonalWork:
		return true
	}
	return mode == ""
}

var _ ports.SessionEvents = (*HistoryRecorder)(nil)
