package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tOgg1/threadreport/internal/report"
)

var errRolledBack = errors.New("report run rolled back after a failed row")

// RunInfo describes the inputs of a report run.
type RunInfo struct {
	UsersPath    string
	MessagesPath string
}

// ReportSink streams report rows into SQLite. All rows of a run are written
// in one transaction that commits on Close.
type ReportSink struct {
	db     *DB
	ownsDB bool
	ctx    context.Context
	runID  string
	tx     *sql.Tx
	stmt   *sql.Stmt
	rows   int
	failed bool
}

// NewReportSink registers a new run in db and returns a sink for its rows.
func NewReportSink(ctx context.Context, db *DB, info RunInfo) (*ReportSink, error) {
	runID := uuid.New().String()
	err := db.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO report_runs (run_id, created_at, users_path, messages_path)
			VALUES (?, ?, ?, ?)
		`, runID, time.Now().UTC().Format(time.RFC3339), info.UsersPath, info.MessagesPath)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register report run: %w", err)
	}
	return &ReportSink{db: db, ctx: ctx, runID: runID}, nil
}

// CreateReportSink opens the database at path and returns a sink that
// closes the database together with the run.
func CreateReportSink(ctx context.Context, path string, busyTimeoutMs int, info RunInfo) (*ReportSink, error) {
	database, err := Open(ctx, path, busyTimeoutMs)
	if err != nil {
		return nil, err
	}
	sink, err := NewReportSink(ctx, database, info)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	sink.ownsDB = true
	return sink, nil
}

// RunID returns the identifier of the run being written.
func (s *ReportSink) RunID() string {
	return s.runID
}

// Rows returns the number of rows written so far.
func (s *ReportSink) Rows() int {
	return s.rows
}

// WriteHeader records the column names and opens the row transaction.
func (s *ReportSink) WriteHeader(ctx context.Context, columns []string) error {
	if s.tx != nil {
		return errors.New("report header already written")
	}
	columnsJSON, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("failed to marshal columns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin report transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE report_runs SET columns_json = ? WHERE run_id = ?`, string(columnsJSON), s.runID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to store report columns: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO report_rows (
			run_id, seq, user_id, thread_head, type, date, subject,
			content, message_id, parent_id, attributes_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	s.tx = tx
	s.stmt = stmt
	return nil
}

// WriteRow inserts one row.
func (s *ReportSink) WriteRow(ctx context.Context, row report.Row) error {
	if s.stmt == nil {
		return errors.New("report header not written")
	}
	attrs, err := json.Marshal(row.Attributes)
	if err != nil {
		s.failed = true
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}

	head := 0
	if row.Head {
		head = 1
	}
	_, err = s.stmt.ExecContext(ctx,
		s.runID,
		s.rows,
		row.UserID,
		head,
		row.Type,
		row.Date,
		row.Subject,
		row.Content,
		row.MessageID,
		row.ParentID,
		string(attrs),
	)
	if err != nil {
		s.failed = true
		return fmt.Errorf("failed to insert report row: %w", err)
	}
	s.rows++
	return nil
}

// Close commits the run, or rolls it back if a row failed to insert.
func (s *ReportSink) Close() error {
	err := s.finish()
	if s.ownsDB {
		if closeErr := s.db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		s.ownsDB = false
	}
	return err
}

// Abort rolls back any rows written and removes the run.
func (s *ReportSink) Abort() error {
	s.failed = true
	err := s.finish()
	if errors.Is(err, errRolledBack) {
		err = nil
	}
	if err == nil {
		err = s.db.Transaction(s.ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(s.ctx, `DELETE FROM report_runs WHERE run_id = ?`, s.runID)
			return err
		})
	}
	if s.ownsDB {
		if closeErr := s.db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		s.ownsDB = false
	}
	return err
}

func (s *ReportSink) finish() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	_ = s.stmt.Close()
	s.stmt = nil

	if s.failed {
		_ = tx.Rollback()
		return errRolledBack
	}
	if _, err := tx.ExecContext(s.ctx, `UPDATE report_runs SET row_count = ? WHERE run_id = ?`, s.rows, s.runID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to update row count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report run: %w", err)
	}
	return nil
}

var _ report.Sink = (*ReportSink)(nil)
