package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/latoulicious/Reactor/pkg/logging"
	"github.com/latoulicious/Reactor/pkg/reactor"
	_ "github.com/mattn/go-sqlite3"
)

// ActivityLog stores one row per engine operation in SQLite. It is a
// diagnostics trail only; nothing here is read back to restore sessions.
type ActivityLog struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenActivityLog opens (or creates) the SQLite database at path
func OpenActivityLog(path string, logger logging.Logger) (*ActivityLog, error) {
	if path == "" {
		return nil, ErrInvalidDatabasePath
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log, err := NewActivityLog(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return log, nil
}

// NewActivityLog wraps an existing connection and ensures the schema exists
func NewActivityLog(db *sql.DB, logger logging.Logger) (*ActivityLog, error) {
	if db == nil {
		return nil, ErrDatabaseNotConnected
	}
	if logger == nil {
		logger = logging.NullLogger()
	}

	if err := initSchema(db); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &ActivityLog{
		db:     db,
		logger: logger.With(logging.String("component", "activity_log")),
	}, nil
}

func initSchema(db *sql.DB) error {
	createActivityTable := `
	CREATE TABLE IF NOT EXISTS reaction_activity (
		id TEXT PRIMARY KEY,
		operation TEXT NOT NULL,
		guild_id TEXT NOT NULL DEFAULT '',
		channel_id TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL DEFAULT '',
		applied INTEGER NOT NULL DEFAULT 0,
		removed INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	`

	createIndexes := `
	CREATE INDEX IF NOT EXISTS idx_reaction_activity_created ON reaction_activity(created_at);
	CREATE INDEX IF NOT EXISTS idx_reaction_activity_operation ON reaction_activity(operation);
	`

	for _, query := range []string{createActivityTable, createIndexes} {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Observe implements reactor.Observer. Storage failures are logged, never returned.
func (l *ActivityLog) Observe(ctx context.Context, activity reactor.Activity) {
	if err := l.Store(ctx, activity); err != nil {
		l.logger.Warn("Failed to store activity",
			logging.String("operation", activity.Operation),
			logging.Error(err))
	}
}

// Store inserts one activity row
func (l *ActivityLog) Store(ctx context.Context, activity reactor.Activity) error {
	if activity.ID == "" {
		return ErrInvalidActivity
	}
	if activity.At.IsZero() {
		activity.At = time.Now()
	}

	query := `
	INSERT INTO reaction_activity (id, operation, guild_id, channel_id, user_id, applied, removed, failed, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := l.db.ExecContext(ctx, query,
		activity.ID, activity.Operation, activity.GuildID, activity.ChannelID, activity.UserID,
		activity.Applied, activity.Removed, activity.Failed, activity.Status, activity.At.UTC())
	if err != nil {
		return fmt.Errorf("failed to store activity: %w", err)
	}
	return nil
}

// Recent returns the most recent activities, newest first
func (l *ActivityLog) Recent(ctx context.Context, limit int) ([]reactor.Activity, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, operation, guild_id, channel_id, user_id, applied, removed, failed, status, created_at
	FROM reaction_activity
	ORDER BY created_at DESC
	LIMIT ?
	`
	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	var out []reactor.Activity
	for rows.Next() {
		var a reactor.Activity
		if err := rows.Scan(&a.ID, &a.Operation, &a.GuildID, &a.ChannelID, &a.UserID,
			&a.Applied, &a.Removed, &a.Failed, &a.Status, &a.At); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// OperationStats holds totals for one operation
type OperationStats struct {
	Count   int64 `json:"count"`
	Applied int64 `json:"applied"`
	Removed int64 `json:"removed"`
	Failed  int64 `json:"failed"`
}

// Stats returns per-operation totals
func (l *ActivityLog) Stats(ctx context.Context) (map[string]OperationStats, error) {
	query := `
	SELECT operation, COUNT(*), SUM(applied), SUM(removed), SUM(failed)
	FROM reaction_activity
	GROUP BY operation
	`
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]OperationStats)
	for rows.Next() {
		var op string
		var s OperationStats
		if err := rows.Scan(&op, &s.Count, &s.Applied, &s.Removed, &s.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats[op] = s
	}
	return stats, rows.Err()
}

// CleanOlderThan deletes activities older than retention and returns the count
func (l *ActivityLog) CleanOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, ErrInvalidRetention
	}

	cutoff := time.Now().Add(-retention).UTC()
	res, err := l.db.ExecContext(ctx, "DELETE FROM reaction_activity WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean activity: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		l.logger.Info("Pruned old activity", logging.Int("rows", int(n)), logging.Duration("retention", retention))
	}
	return n, nil
}

// Close closes the database connection
func (l *ActivityLog) Close() error {
	return l.db.Close()
}
