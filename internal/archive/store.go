// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists finished research runs in SQLite and searches
// them by query text, report text, and product names.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/product-research/pkg/types"
)

// ErrNotFound is returned when no run matches an ID.
var ErrNotFound = errors.New("research run not found")

const defaultMaxResults = 20

// Store manages the run archive database.
type Store struct {
	db         *sql.DB
	path       string
	maxResults int

	// fts is false when the SQLite build lacks FTS5; Search then falls
	// back to LIKE matching.
	fts bool

	now func() time.Time
}

// Open opens or creates the archive at cfg.Path, creating parent
// directories and the schema as needed.
func Open(cfg types.ArchiveConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultConfig().Archive.Path
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path, maxResults: defaultMaxResults, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			query TEXT NOT NULL,
			created_at TEXT NOT NULL,
			policy TEXT,
			product_count INTEGER,
			processing_ms INTEGER,
			summary TEXT,
			search_text TEXT NOT NULL,
			response TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT,
			price REAL,
			rating REAL,
			sentiment_score REAL,
			overall_score REAL,
			source TEXT,
			source_url TEXT,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='runs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE runs_fts USING fts5(search_text, content=runs, content_rowid=rowid)`,
		`CREATE TRIGGER runs_ai AFTER INSERT ON runs BEGIN
			INSERT INTO runs_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
		END`,
		`CREATE TRIGGER runs_ad AFTER DELETE ON runs BEGIN
			INSERT INTO runs_fts(runs_fts, rowid, search_text) VALUES('delete', old.rowid, old.search_text);
		END`,
		`CREATE TRIGGER runs_au AFTER UPDATE ON runs BEGIN
			INSERT INTO runs_fts(runs_fts, rowid, search_text) VALUES('delete', old.rowid, old.search_text);
			INSERT INTO runs_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
		END`,
	}
	if _, err := s.db.Exec(ftsStatements[0]); err != nil {
		if strings.Contains(err.Error(), "no such module") {
			return nil
		}
		return fmt.Errorf("creating FTS table: %w", err)
	}
	for _, stmt := range ftsStatements[1:] {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	s.fts = true
	return nil
}

// Save stores resp, replacing any earlier run with the same ID.
func (s *Store) Save(ctx context.Context, resp *types.DeepResearchResponse) error {
	if resp == nil || resp.RunID == "" {
		return fmt.Errorf("saving run: missing run ID")
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE run_id = ?`, resp.RunID); err != nil {
		return fmt.Errorf("deleting old products: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, created_at, policy, product_count, processing_ms, summary, search_text, response)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			query=excluded.query, created_at=excluded.created_at, policy=excluded.policy,
			product_count=excluded.product_count, processing_ms=excluded.processing_ms,
			summary=excluded.summary, search_text=excluded.search_text, response=excluded.response`,
		resp.RunID, resp.Query, s.now().UTC().Format(time.RFC3339Nano), resp.ScoringPolicy,
		len(resp.Products), resp.TotalProcessingTime, resp.ResearchSummary,
		searchText(resp), string(body),
	)
	if err != nil {
		return fmt.Errorf("upserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO products (run_id, position, name, price, rating, sentiment_score, overall_score, source, source_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range resp.Products {
		_, err := stmt.ExecContext(ctx,
			resp.RunID, i, p.Name, p.Price, p.Rating,
			p.SentimentScore, p.OverallScore, p.Source, p.SourceURL,
		)
		if err != nil {
			return fmt.Errorf("inserting product %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Delete removes a run and its products.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func searchText(resp *types.DeepResearchResponse) string {
	parts := []string{resp.Query, resp.ResearchSummary}
	for _, p := range resp.Products {
		parts = append(parts, p.Name)
	}
	return strings.Join(parts, "\n")
}
