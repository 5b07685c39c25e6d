// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists verification runs to SQLite so past batches
// can be listed and re-examined without re-querying providers.
// Implements: prd005-history (R1-R3);
//
//	docs/ARCHITECTURE.md § Run History.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xyshuai/LLM-generated-reference-checker/pkg/types"
)

// Store manages the run history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at cfg.Path, creating the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = "refcheck.db"
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			citations INTEGER NOT NULL,
			verified INTEGER NOT NULL,
			ambiguous INTEGER NOT NULL,
			unverified INTEGER NOT NULL,
			retracted INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			idx INTEGER NOT NULL,
			raw TEXT NOT NULL,
			status TEXT NOT NULL,
			provider TEXT NOT NULL,
			filled_doi TEXT,
			doi_fill TEXT NOT NULL,
			retracted INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			PRIMARY KEY (run_id, idx)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_status ON results(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run summarizes one saved verification batch.
type Run struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Citations  int       `json:"citations"`
	Verified   int       `json:"verified"`
	Ambiguous  int       `json:"ambiguous"`
	Unverified int       `json:"unverified"`
	Retracted  int       `json:"retracted"`
}

// SaveRun persists a batch of outcomes as one run and returns its ID.
// The full Outcome is stored as JSON alongside queryable summary
// columns, so history queries never need to re-parse citations.
func (s *Store) SaveRun(ctx context.Context, startedAt time.Time, outcomes []types.Outcome) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var verified, ambiguous, unverified, retracted int
	for i := range outcomes {
		switch outcomes[i].Status {
		case types.StatusVerified:
			verified++
		case types.StatusAmbiguous:
			ambiguous++
		default:
			unverified++
		}
		if outcomes[i].Comparison.Retracted {
			retracted++
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, citations, verified, ambiguous, unverified, retracted)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		startedAt.UTC().Format(time.RFC3339), len(outcomes),
		verified, ambiguous, unverified, retracted,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, idx, raw, status, provider, filled_doi, doi_fill, retracted, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range outcomes {
		o := &outcomes[i]
		outcomeJSON, err := json.Marshal(o)
		if err != nil {
			return 0, fmt.Errorf("encoding outcome %d: %w", o.Index, err)
		}
		_, err = stmt.ExecContext(ctx,
			runID, o.Index, o.Reference.Raw, string(o.Status), string(o.Provider()),
			o.FilledDOI, string(o.DOIFill), boolInt(o.Comparison.Retracted),
			string(outcomeJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting result %d: %w", o.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs lists saved runs, most recent first. limit <= 0 means all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, started_at, citations, verified, ambiguous, unverified, retracted
	      FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.Citations, &r.Verified, &r.Ambiguous, &r.Unverified, &r.Retracted); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Outcomes loads the full outcomes of one run, in input order.
func (s *Store) Outcomes(ctx context.Context, runID int64) ([]types.Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome FROM results WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var outcomes []types.Outcome
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		var o types.Outcome
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			return nil, fmt.Errorf("decoding outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if outcomes == nil {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	return outcomes, nil
}

// Totals aggregates all saved runs.
type Totals struct {
	Runs       int `json:"runs"`
	Citations  int `json:"citations"`
	Verified   int `json:"verified"`
	Ambiguous  int `json:"ambiguous"`
	Unverified int `json:"unverified"`
	Retracted  int `json:"retracted"`
}

// Stats returns aggregate counts across all runs.
func (s *Store) Stats(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*),
		        coalesce(sum(citations), 0),
		        coalesce(sum(verified), 0),
		        coalesce(sum(ambiguous), 0),
		        coalesce(sum(unverified), 0),
		        coalesce(sum(retracted), 0)
		 FROM runs`,
	).Scan(&t.Runs, &t.Citations, &t.Verified, &t.Ambiguous, &t.Unverified, &t.Retracted)
	if err != nil {
		return Totals{}, fmt.Errorf("querying totals: %w", err)
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
