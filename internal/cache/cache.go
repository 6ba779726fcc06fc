// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores language-model responses in SQLite so re-running on
// the same folder does not pay for chunks that have not changed.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdf-summarizer/pkg/types"
)

// FileName is the database name under the cache directory.
const FileName = "responses.db"

// DefaultPath returns <outputDir>/.cache/responses.db.
func DefaultPath(outputDir string) string {
	return filepath.Join(outputDir, types.DefaultCacheSubdir, FileName)
}

// Store is a response cache keyed by prompt hash.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS responses (
			key TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			model TEXT NOT NULL,
			response TEXT NOT NULL,
			created_at TEXT NOT NULL,
			hits INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_kind ON responses(kind)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns the cached response for key and counts the hit.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT response FROM responses WHERE key = ?`, key).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache entry: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE responses SET hits = hits + 1 WHERE key = ?`, key); err != nil {
		return "", false, fmt.Errorf("counting cache hit: %w", err)
	}
	return text, true, nil
}

// Put stores or replaces the response for key.
func (s *Store) Put(ctx context.Context, key, kind, model, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (key, kind, model, response, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET kind = excluded.kind, model = excluded.model,
		 response = excluded.response, created_at = excluded.created_at`,
		key, kind, model, text, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Stats describes the cache contents.
type Stats struct {
	Entries int
	Hits    int
	Bytes   int64
	ByKind  map[string]int
	Oldest  time.Time
	Newest  time.Time
}

// Stats counts entries per kind.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByKind: make(map[string]int)}

	var oldest, newest sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*), coalesce(sum(hits), 0), coalesce(sum(length(response)), 0), min(created_at), max(created_at) FROM responses`,
	).Scan(&st.Entries, &st.Hits, &st.Bytes, &oldest, &newest)
	if err != nil {
		return st, fmt.Errorf("reading cache stats: %w", err)
	}
	st.Oldest = parseTime(oldest)
	st.Newest = parseTime(newest)

	rows, err := s.db.QueryContext(ctx, `SELECT kind, count(*) FROM responses GROUP BY kind`)
	if err != nil {
		return st, fmt.Errorf("reading cache kinds: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return st, fmt.Errorf("scanning cache kinds: %w", err)
		}
		st.ByKind[kind] = n
	}
	return st, rows.Err()
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses`)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return res.RowsAffected()
}

func parseTime(ns sql.NullString) time.Time {
	if !ns.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
