// Package ledger records per-item pipeline outcomes in SQLite. The corpus
// itself stays the source of truth for what is pending (the differ only looks
// at files); the ledger exists so operators can see what happened on past
// runs, including short-body skips, which never produce output and would
// otherwise be invisible.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Terminal item statuses.
const (
	StatusCleaned          = "cleaned"
	StatusEnriched         = "enriched"
	StatusFailed           = "failed"
	StatusSkippedShort     = "skipped_short"
	StatusSkippedMalformed = "skipped_malformed"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS runs (
    run_id      INTEGER PRIMARY KEY AUTOINCREMENT,
    command     TEXT NOT NULL,
    provider    TEXT,
    started_at  TIMESTAMP NOT NULL,
    finished_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    item_id    INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id     INTEGER NOT NULL,
    source     TEXT NOT NULL,
    rel_path   TEXT NOT NULL,
    status     TEXT NOT NULL,
    attempts   INTEGER NOT NULL DEFAULT 0,
    error      TEXT,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_items_run ON items(run_id);
CREATE INDEX IF NOT EXISTS idx_items_source_status ON items(source, status);
`

// Ledger wraps the SQLite handle. Safe for concurrent use by workers;
// database/sql serializes access to the single connection pool.
type Ledger struct {
	db *sql.DB
}

// Open creates or opens the ledger database and applies the schema.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// BeginRun registers a pipeline invocation and returns its id.
func (l *Ledger) BeginRun(command, provider string) (int64, error) {
	res, err := l.db.Exec(
		`INSERT INTO runs (command, provider, started_at) VALUES (?, ?, ?)`,
		command, provider, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("recording run start: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun stamps the run's completion time.
func (l *Ledger) FinishRun(runID int64) error {
	_, err := l.db.Exec(
		`UPDATE runs SET finished_at = ? WHERE run_id = ?`,
		time.Now().UTC(), runID,
	)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// RecordItem stores one terminal outcome.
func (l *Ledger) RecordItem(runID int64, source, relPath, status string, attempts int, itemErr string) error {
	_, err := l.db.Exec(
		`INSERT INTO items (run_id, source, rel_path, status, attempts, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, source, relPath, status, attempts, nullable(itemErr), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording item outcome: %w", err)
	}
	return nil
}

// SourceSummary is one (source, status) tally.
type SourceSummary struct {
	Source string
	Status string
	Count  int
}

// Summary tallies item outcomes per source and status across all runs.
func (l *Ledger) Summary() ([]SourceSummary, error) {
	rows, err := l.db.Query(
		`SELECT source, status, COUNT(*) FROM items GROUP BY source, status ORDER BY source, status`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying ledger summary: %w", err)
	}
	defer rows.Close()

	var out []SourceSummary
	for rows.Next() {
		var s SourceSummary
		if err := rows.Scan(&s.Source, &s.Status, &s.Count); err != nil {
			return nil, fmt.Errorf("scanning ledger summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
