// Package audit persists one row per resize/recombine/mutate run to a
// local DuckDB database: sql.Open("duckdb", path), ensureSchema on open,
// one long-lived *sql.DB. This is purely additive run bookkeeping: the
// core's own correctness never depends on it.
package audit

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/google/uuid"

	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
)

// Store wraps a DuckDB connection holding the runs table.
type Store struct {
	db *sql.DB
}

// Open opens or creates the DuckDB database at path and ensures the
// runs table exists. An empty path opens an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, corerr.IO(path, err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, corerr.IO(path, err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		run_id            TEXT PRIMARY KEY,
		kind              TEXT,
		started_at        TIMESTAMP,
		finished_at        TIMESTAMP,
		bed_dir           TEXT,
		gvcf_dir          TEXT,
		donors            INTEGER,
		targets           INTEGER,
		straddling_indels INTEGER,
		skipped_indels    INTEGER,
		input_digest      TEXT,
		error             TEXT
	)`)
	if err != nil {
		return corerr.IO("audit schema", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one recorded resize/recombine/mutate invocation.
type Run struct {
	Kind             string // "recombine" or "mutate"
	StartedAt        time.Time
	FinishedAt       time.Time
	BEDDir           string
	GVCFDir          string
	Donors           int
	Targets          int
	StraddlingIndels int
	SkippedIndels    int
	InputDigest      string
	Err              error
}

// RecordRun generates a fresh run_id and inserts r as one row. A failed
// run (r.Err != nil) is still recorded, with its error message. A zero
// FinishedAt is stored as NULL. RecordRun returns the generated run_id.
func (s *Store) RecordRun(r Run) (string, error) {
	runID := uuid.NewString()

	var finishedAt interface{}
	if !r.FinishedAt.IsZero() {
		finishedAt = r.FinishedAt
	}
	var errMsg interface{}
	if r.Err != nil {
		errMsg = r.Err.Error()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, kind, started_at, finished_at, bed_dir, gvcf_dir, donors, targets, straddling_indels, skipped_indels, input_digest, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, r.Kind, r.StartedAt, finishedAt, r.BEDDir, r.GVCFDir, r.Donors, r.Targets, r.StraddlingIndels, r.SkippedIndels, r.InputDigest, errMsg,
	)
	if err != nil {
		return "", corerr.IO("audit insert", err)
	}
	return runID, nil
}
