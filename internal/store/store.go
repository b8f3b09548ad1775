// Package store provides a SQLite-backed document ledger for the docrag
// backend. Each successfully ingested document is recorded with its chunk
// count and detected language so the /api/documents listing survives server
// restarts without querying the vector store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Document is a single ledger entry for an ingested file.
type Document struct {
	// Filename is the original upload filename, unique per document.
	Filename string
	// TotalChunks is the number of chunks indexed for this document.
	TotalChunks int
	// OriginalLanguage is the detected source language (ISO 639-1 or "unknown").
	OriginalLanguage string
	// IngestedAt is when the document was last (re-)ingested.
	IngestedAt time.Time
}

// DocumentStore persists and lists ingested document records.
// Implementations must be safe for concurrent use.
type DocumentStore interface {
	// Record upserts the ledger entry for a document. Re-ingesting the same
	// filename replaces the previous entry.
	Record(ctx context.Context, doc Document) error
	// List returns all recorded documents ordered by filename.
	List(ctx context.Context) ([]Document, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a DocumentStore backed by a local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the document ledger database.
// It resolves to ~/.docrag/documents.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".docrag")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "documents.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
    filename           TEXT    PRIMARY KEY,
    total_chunks       INTEGER NOT NULL,
    original_language  TEXT    NOT NULL,
    ingested_at        INTEGER NOT NULL  -- Unix timestamp (seconds)
);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Record upserts the ledger entry for a document.
func (s *SQLiteStore) Record(ctx context.Context, doc Document) error {
	const q = `
INSERT INTO documents (filename, total_chunks, original_language, ingested_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(filename) DO UPDATE SET
    total_chunks      = excluded.total_chunks,
    original_language = excluded.original_language,
    ingested_at       = excluded.ingested_at`

	ts := doc.IngestedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	if _, err := s.db.ExecContext(ctx, q, doc.Filename, doc.TotalChunks, doc.OriginalLanguage, ts.Unix()); err != nil {
		return fmt.Errorf("store: record %s: %w", doc.Filename, err)
	}
	return nil
}

// List returns all recorded documents ordered by filename.
func (s *SQLiteStore) List(ctx context.Context) ([]Document, error) {
	const q = `
SELECT filename, total_chunks, original_language, ingested_at
FROM   documents
ORDER  BY filename ASC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var ts int64
		if err := rows.Scan(&d.Filename, &d.TotalChunks, &d.OriginalLanguage, &ts); err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		d.IngestedAt = time.Unix(ts, 0)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list rows: %w", err)
	}
	return docs, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
