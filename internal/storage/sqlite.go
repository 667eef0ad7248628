package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pages (
	url          TEXT NOT NULL,
	crawl_id     TEXT NOT NULL,
	language     TEXT NOT NULL,
	status_code  INTEGER NOT NULL,
	title        TEXT,
	word_count   INTEGER,
	load_time    REAL,
	content_hash TEXT,
	timestamp    REAL,
	PRIMARY KEY (url, crawl_id)
);
CREATE INDEX IF NOT EXISTS idx_pages_content_hash ON pages(content_hash);
`

const sqliteUpsert = `
INSERT INTO pages (url, crawl_id, language, status_code, title, word_count, load_time, content_hash, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url, crawl_id) DO UPDATE SET
	language = excluded.language,
	status_code = excluded.status_code,
	title = excluded.title,
	word_count = excluded.word_count,
	load_time = excluded.load_time,
	content_hash = excluded.content_hash,
	timestamp = excluded.timestamp`

// SQLiteSink keeps a queryable page index in a local SQLite file.
type SQLiteSink struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteSink opens or creates the database at path.
func NewSQLiteSink(ctx context.Context, path string, logger *slog.Logger) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteSink{
		db:     db,
		path:   path,
		logger: logger.With("component", "sqlite_sink"),
	}, nil
}

func (s *SQLiteSink) Name() string { return "sqlite" }

func (s *SQLiteSink) Store(ctx context.Context, rec *types.PageRecord) error {
	r := NewIndexRow(rec)
	_, err := s.db.ExecContext(ctx, sqliteUpsert,
		r.URL, r.CrawlID, r.Language, r.StatusCode, r.Title, r.WordCount, r.LoadTime, r.ContentHash, r.Timestamp)
	if err != nil {
		return &types.StorageError{Backend: "sqlite", Op: "upsert", Err: err}
	}
	return nil
}

// Count returns the number of indexed pages for a crawl.
func (s *SQLiteSink) Count(ctx context.Context, crawlID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages WHERE crawl_id = ?", crawlID).Scan(&n)
	return n, err
}

// Duplicates returns groups of URLs in a crawl that share a content hash.
func (s *SQLiteSink) Duplicates(ctx context.Context, crawlID string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT content_hash, url FROM pages
WHERE crawl_id = ? AND content_hash IN (
	SELECT content_hash FROM pages WHERE crawl_id = ? GROUP BY content_hash HAVING COUNT(*) > 1
)
ORDER BY content_hash, url`, crawlID, crawlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make(map[string][]string)
	for rows.Next() {
		var hash, url string
		if err := rows.Scan(&hash, &url); err != nil {
			return nil, err
		}
		groups[hash] = append(groups[hash], url)
	}
	return groups, rows.Err()
}

func (s *SQLiteSink) Close() error {
	s.logger.Debug("sqlite sink closing", "path", s.path)
	return s.db.Close()
}
