// Package ports defines the interfaces (driven and driving ports)
// for wellflow following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"
	"time"

	"github.com/xvierd/wellflow/internal/domain"
)

// Well-known keys of the durable store.
const (
	KeyTasks  = "tasks"
	KeyLedger = "ledger"
)

// KVStore persists string-keyed JSON blobs.
// This is a driven port (implemented by adapters).
type KVStore interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// HistoryRepository persists credited focus sessions.
// This is a driven port (implemented by adapters).
type HistoryRepository interface {
	// Save persists a session record.
	Save(ctx context.Context, rec *domain.SessionRecord) error

	// FindRecent returns records that started at or after since, newest first.
	FindRecent(ctx context.Context, since time.Time, limit int) ([]*domain.SessionRecord, error)

	// FindByTask returns every record bound to a task, newest first.
	FindByTask(ctx context.Context, taskID string) ([]*domain.SessionRecord, error)

	// GetDailyStats aggregates the records that started on day in loc.
	GetDailyStats(ctx context.Context, day domain.Date, loc *time.Location) (*domain.DailyStats, error)
}

// SessionLock guarantees at most one live controller per session key.
// This is a driven port (implemented by adapters).
type SessionLock interface {
	// Acquire takes the lock for key without blocking. It returns
	// domain.ErrSessionLocked when another holder owns it.
	Acquire(key string) (release func() error, err error)
}

// Storage is the combined persistence interface.
// This is a driven port (implemented by adapters).
type Storage interface {
	// KV provides the durable key-value store.
	KV() KVStore

	// History provides access to session history.
	History() HistoryRepository

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}
