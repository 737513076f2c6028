// Package history keeps a SQLite ledger with one row per build attempt.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
)

// Record summarizes one build attempt.
type Record struct {
	BuildID       string
	SiteRoot      string
	BuildRoot     string
	StartedAt     time.Time
	FinishedAt    time.Time
	Outcome       string
	RenderedPages int
	Paginated     int
	CopiedFiles   int
	Error         string
}

// Duration is the wall time of the build.
func (r Record) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Store is a SQLite-backed build ledger.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens the ledger at dbPath. ":memory:" gives a private
// in-memory store.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.HistoryError("failed to open history database").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}
	// Every pooled connection to ":memory:" would see its own database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.HistoryError("failed to initialize history schema").
			WithCause(err).
			WithContext("path", dbPath).
			Build()
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL UNIQUE,
		site_root TEXT NOT NULL,
		build_root TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		rendered_pages INTEGER NOT NULL DEFAULT 0,
		paginated_pages INTEGER NOT NULL DEFAULT 0,
		copied_files INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends r to the ledger.
func (s *Store) Record(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, site_root, build_root, started_at, finished_at, outcome,
			rendered_pages, paginated_pages, copied_files, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BuildID, r.SiteRoot, r.BuildRoot, r.StartedAt.UnixNano(), r.FinishedAt.UnixNano(), r.Outcome,
		r.RenderedPages, r.Paginated, r.CopiedFiles, nullString(r.Error),
	)
	if err != nil {
		return errors.HistoryError("failed to record build").
			WithCause(err).
			WithContext("build_id", r.BuildID).
			Build()
	}
	return nil
}

// Recent returns up to limit records, newest first. A non-positive limit
// returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, site_root, build_root, started_at, finished_at, outcome,
			rendered_pages, paginated_pages, copied_files, error
		FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errors.HistoryError("failed to query builds").WithCause(err).Build()
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var r Record
		var started, finished int64
		var errText sql.NullString
		if err := rows.Scan(&r.BuildID, &r.SiteRoot, &r.BuildRoot, &started, &finished, &r.Outcome,
			&r.RenderedPages, &r.Paginated, &r.CopiedFiles, &errText); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		r.StartedAt = time.Unix(0, started).UTC()
		r.FinishedAt = time.Unix(0, finished).UTC()
		r.Error = errText.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
