package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

// ErrDuplicateRun is returned when a run ID is appended twice.
var ErrDuplicateRun = errors.New("trace: run already stored")

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
	id      TEXT PRIMARY KEY,
	ts      INTEGER NOT NULL,
	variant TEXT NOT NULL,
	summary TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS runs_variant_ts ON runs (variant, ts)`,
	`CREATE TABLE IF NOT EXISTS run_steps (
	run_id TEXT NOT NULL REFERENCES runs (id),
	idx    INTEGER NOT NULL,
	record TEXT NOT NULL,
	PRIMARY KEY (run_id, idx)
)`,
}

// SQLiteStore keeps one row per run plus one row per dispatch step, so
// summaries can be listed without decoding whole traces.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, errors.Join(fmt.Errorf("trace schema: %w", err), db.Close())
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Append stores the run and its steps in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, rec RunRecord) (err error) {
	if rec.ID == "" {
		rec.ID = NewRunID()
	}
	summary := rec
	summary.Records = nil
	head, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM runs WHERE id = ?)`, rec.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRun, rec.ID)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO runs (id, ts, variant, summary) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UnixNano(), rec.Variant, string(head)); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_steps (run_id, idx, record) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for i, step := range rec.Records {
		b, merr := json.Marshal(step)
		if merr != nil {
			return merr
		}
		if _, err = stmt.ExecContext(ctx, rec.ID, i, string(b)); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Query returns the runs matching q, oldest first, with their steps.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]RunRecord, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		where = append(where, cond)
		args = append(args, v)
	}
	if !q.Start.IsZero() {
		add("ts >= ?", q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		add("ts <= ?", q.End.UnixNano())
	}
	if q.Variant != "" {
		add("variant = ?", q.Variant)
	}
	if q.ID != "" {
		add("id = ?", q.ID)
	}
	query := "SELECT summary FROM runs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var runs []RunRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			_ = rows.Close()
			return nil, err
		}
		var r RunRecord
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("decode run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return nil, err
	}
	// Steps are loaded after the cursor is released; the pool holds one
	// connection.
	for i := range runs {
		if runs[i].Records, err = s.steps(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (s *SQLiteStore) steps(ctx context.Context, runID string) ([]model.DispatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM run_steps WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.DispatchRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec model.DispatchRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode step of %s: %w", runID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
