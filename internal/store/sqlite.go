package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/glebarez/go-sqlite"

	"github.com/tyler180/nfl-pbp-reports/internal/summary"
)

const schema = `
CREATE TABLE IF NOT EXISTS summary_records (
	run_id      TEXT NOT NULL,
	report      TEXT NOT NULL,
	subject     TEXT NOT NULL,
	scope       TEXT NOT NULL,
	metric      TEXT NOT NULL,
	numerator   INTEGER NOT NULL DEFAULT 0,
	denominator INTEGER NOT NULL DEFAULT 0,
	value       REAL NOT NULL,
	rank        INTEGER NOT NULL DEFAULT 0,
	peers       INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (run_id, report, subject, scope, metric)
);
CREATE INDEX IF NOT EXISTS summary_records_subject ON summary_records (report, subject, created_at);
`

// SQLite keeps every run's records so results can be compared over time.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the history database at path.
// Use "file::memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); !isMemory(path) && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if isMemory(path) {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func isMemory(path string) bool { return strings.Contains(path, ":memory:") }

func (s *SQLite) Close() error { return s.db.Close() }

// Save inserts recs in one transaction. Re-saving a run replaces its rows.
func (s *SQLite) Save(ctx context.Context, recs []summary.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO summary_records
		(run_id, report, subject, scope, metric, numerator, denominator, value, rank, peers, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.RunID, r.Report, r.Subject, r.Scope, r.Metric,
			r.Numerator, r.Denominator, r.Value, r.Rank, r.Peers, r.CreatedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s %s: %w", r.Key(), r.SortKey(), err)
		}
	}
	return tx.Commit()
}

// Latest returns the records of the newest run stored for report/subject,
// ordered by scope and metric.
func (s *SQLite) Latest(ctx context.Context, report, subject string) ([]summary.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, report, subject, scope, metric, numerator, denominator, value, rank, peers, created_at
		FROM summary_records
		WHERE report = ? AND subject = ? AND run_id = (
			SELECT run_id FROM summary_records
			WHERE report = ? AND subject = ?
			ORDER BY created_at DESC, rowid DESC LIMIT 1)
		ORDER BY scope, metric`, report, subject, report, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []summary.Record
	for rows.Next() {
		var r summary.Record
		if err := rows.Scan(&r.RunID, &r.Report, &r.Subject, &r.Scope, &r.Metric,
			&r.Numerator, &r.Denominator, &r.Value, &r.Rank, &r.Peers, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs lists distinct run ids for report/subject, newest first.
func (s *SQLite) Runs(ctx context.Context, report, subject string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id FROM summary_records WHERE report = ? AND subject = ?
		GROUP BY run_id ORDER BY MAX(created_at) DESC`, report, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
