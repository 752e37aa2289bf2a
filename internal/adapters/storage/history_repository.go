package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xvierd/wellflow/internal/domain"
	"github.com/xvierd/wellflow/internal/ports"
)

// historyRepository implements ports.HistoryRepository using SQLite.
// Instants are stored as Unix milliseconds.
type historyRepository struct {
	db *sql.DB
}

// newHistoryRepository creates a new history repository.
func newHistoryRepository(db *sql.DB) ports.HistoryRepository {
	return &historyRepository{db: db}
}

const historyColumns = `
	id, task_id, name, mode, break_type, duration_minutes, completed,
	started_at, ended_at, git_branch, git_commit
`

// Save persists a session record.
func (r *historyRepository) Save(ctx context.Context, rec *domain.SessionRecord) error {
	query := `INSERT INTO sessions (` + historyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.TaskID,
		rec.Name,
		rec.Mode,
		string(rec.BreakType),
		rec.DurationMinutes,
		rec.Completed,
		rec.StartedAt.UnixMilli(),
		rec.EndedAt.UnixMilli(),
		rec.GitBranch,
		rec.GitCommit,
	)
	if isUniqueConstraintError(err) {
		return fmt.Errorf("session record %s already exists", rec.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to save session record: %w", err)
	}

	return nil
}

// FindRecent retrieves records started at or after since, newest first.
// A limit of zero or less returns every record.
func (r *historyRepository) FindRecent(ctx context.Context, since time.Time, limit int) ([]*domain.SessionRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM sessions WHERE started_at >= ? ORDER BY started_at DESC`
	args := []any{since.UnixMilli()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

// FindByTask retrieves all records associated with a task.
func (r *historyRepository) FindByTask(ctx context.Context, taskID string) ([]*domain.SessionRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM sessions WHERE task_id = ? ORDER BY started_at DESC`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions by task: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

// GetDailyStats returns aggregated statistics for one calendar day in loc.
func (r *historyRepository) GetDailyStats(ctx context.Context, day domain.Date, loc *time.Location) (*domain.DailyStats, error) {
	if loc == nil {
		loc = time.Local
	}
	startOfDay := day.In(loc)
	endOfDay := day.AddDays(1).In(loc)

	query := `
		SELECT
			COALESCE(SUM(duration_minutes), 0),
			COUNT(CASE WHEN completed = 1 THEN 1 END),
			COUNT(CASE WHEN completed = 0 THEN 1 END)
		FROM sessions
		WHERE started_at >= ? AND started_at < ?
	`

	stats := &domain.DailyStats{Date: day}
	err := r.db.QueryRowContext(ctx, query, startOfDay.UnixMilli(), endOfDay.UnixMilli()).Scan(
		&stats.FocusMinutes,
		&stats.CompletedSessions,
		&stats.PartialSessions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	return stats, nil
}

// scanRecords scans multiple session rows.
func scanRecords(rows *sql.Rows) ([]*domain.SessionRecord, error) {
	var records []*domain.SessionRecord

	for rows.Next() {
		var rec domain.SessionRecord
		var taskID, mode, gitBranch, gitCommit sql.NullString
		var breakType string
		var startedMs, endedMs int64

		err := rows.Scan(
			&rec.ID,
			&taskID,
			&rec.Name,
			&mode,
			&breakType,
			&rec.DurationMinutes,
			&rec.Completed,
			&startedMs,
			&endedMs,
			&gitBranch,
			&gitCommit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session record: %w", err)
		}

		if taskID.Valid {
			rec.TaskID = &taskID.String
		}
		rec.Mode = mode.String
		rec.BreakType = domain.BreakType(breakType)
		rec.StartedAt = time.UnixMilli(startedMs)
		rec.EndedAt = time.UnixMilli(endedMs)
		rec.GitBranch = gitBranch.String
		rec.GitCommit = gitCommit.String

		records = append(records, &rec)
	}

	return records, rows.Err()
}
