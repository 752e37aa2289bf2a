package ports

import (
	"context"

	"github.com/xvierd/wellflow/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
// This is a driving port (called by the application layer).
type MCPHandler interface {
	// Start begins serving MCP requests.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the server.
	Stop() error

	// IsRunning returns true if the server is active.
	IsRunning() bool
}

// MCPStateProvider provides state and planner operations to the MCP server.
// This is a driven port (implemented by services layer).
type MCPStateProvider interface {
	// GetCurrentState returns today's occurrences, progress and stats.
	GetCurrentState(ctx context.Context) (*domain.CurrentState, error)

	// ListOccurrences returns the sorted occurrences of a day.
	ListOccurrences(ctx context.Context, day domain.Date) ([]domain.Task, error)

	// AddTask creates a task.
	AddTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error)

	// ToggleTask flips a task's done flag and returns the updated task.
	ToggleTask(ctx context.Context, id string) (*domain.Task, error)

	// DeleteOccurrence hides one occurrence of a task.
	DeleteOccurrence(ctx context.Context, id string, day domain.Date) error

	// DeleteSeries removes a task and all its occurrences.
	DeleteSeries(ctx context.Context, id string) error

	// GetHistory returns the most recent session records.
	GetHistory(ctx context.Context, limit int) ([]*domain.SessionRecord, error)

	// SetDailyGoal updates the daily goal and returns the new progress.
	SetDailyGoal(ctx context.Context, minutes int) (*domain.DailyProgress, error)
}
