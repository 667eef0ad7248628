package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS seo_pages (
	url          TEXT NOT NULL,
	crawl_id     TEXT NOT NULL,
	language     TEXT NOT NULL,
	status_code  INTEGER NOT NULL,
	title        TEXT,
	word_count   INTEGER,
	load_time    DOUBLE PRECISION,
	content_hash TEXT,
	fetched_at   DOUBLE PRECISION,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (url, crawl_id)
)`

// PostgresSink keeps the page index in PostgreSQL.
type PostgresSink struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresSink connects a pool and creates the index table.
func NewPostgresSink(ctx context.Context, connStr string, logger *slog.Logger) (*PostgresSink, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &PostgresSink{
		db:     db,
		logger: logger.With("component", "postgres_sink"),
	}, nil
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Store(ctx context.Context, rec *types.PageRecord) error {
	r := NewIndexRow(rec)
	_, err := s.db.Exec(ctx,
		`INSERT INTO seo_pages (url, crawl_id, language, status_code, title, word_count, load_time, content_hash, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (url, crawl_id) DO UPDATE SET
		   language = EXCLUDED.language, status_code = EXCLUDED.status_code, title = EXCLUDED.title,
		   word_count = EXCLUDED.word_count, load_time = EXCLUDED.load_time,
		   content_hash = EXCLUDED.content_hash, fetched_at = EXCLUDED.fetched_at, updated_at = NOW()`,
		r.URL, r.CrawlID, r.Language, r.StatusCode, r.Title, r.WordCount, r.LoadTime, r.ContentHash, r.Timestamp,
	)
	if err != nil {
		return &types.StorageError{Backend: "postgres", Op: "upsert", Err: err}
	}
	return nil
}

func (s *PostgresSink) Close() error {
	s.db.Close()
	s.logger.Debug("postgres sink closed")
	return nil
}
