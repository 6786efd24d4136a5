// Package db stores report runs in SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DefaultBusyTimeoutMs is used when no busy timeout is configured.
const DefaultBusyTimeoutMs = 5000

// DB wraps a SQLite connection pool.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the database at path and ensures the
// report schema exists.
func Open(ctx context.Context, path string, busyTimeoutMs int) (*DB, error) {
	if busyTimeoutMs <= 0 {
		busyTimeoutMs = DefaultBusyTimeoutMs
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", path, busyTimeoutMs)

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}
	// One writer; keeps the streaming transaction and its statement on one connection.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to report database: %w", err)
	}

	db := &DB{DB: sqlDB, path: path}
	if err := db.ensureSchema(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS report_runs (
			run_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			users_path TEXT NOT NULL,
			messages_path TEXT NOT NULL,
			columns_json TEXT,
			row_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS report_rows (
			run_id TEXT NOT NULL REFERENCES report_runs(run_id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			user_id TEXT NOT NULL,
			thread_head INTEGER NOT NULL,
			type TEXT NOT NULL,
			date TEXT NOT NULL,
			subject TEXT NOT NULL,
			content TEXT NOT NULL,
			message_id TEXT NOT NULL,
			parent_id TEXT NOT NULL,
			attributes_json TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS report_rows_user_idx ON report_rows(run_id, user_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize report schema: %w", err)
		}
	}
	return nil
}
