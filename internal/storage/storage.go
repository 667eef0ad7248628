package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/IshaanNene/SEOCrawl/internal/config"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// Sink is the interface for all PageRecord destinations.
type Sink interface {
	// Store persists one page record.
	Store(ctx context.Context, rec *types.PageRecord) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the sink identifier.
	Name() string
}

// MultiSink writes every record to several sinks.
type MultiSink struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewMultiSink creates a sink that fans out to sinks in order.
func NewMultiSink(sinks []Sink, logger *slog.Logger) *MultiSink {
	return &MultiSink{
		sinks:  sinks,
		logger: logger.With("component", "multi_sink"),
	}
}

func (s *MultiSink) Name() string { return "multi" }

// Store writes to every sink and returns the first failure. A failing sink
// does not stop the others.
func (s *MultiSink) Store(ctx context.Context, rec *types.PageRecord) error {
	var firstErr error
	for _, sink := range s.sinks {
		if err := sink.Store(ctx, rec); err != nil {
			s.logger.Error("sink store failed", "sink", sink.Name(), "url", rec.URL, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *MultiSink) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Sinks returns the wrapped sinks.
func (s *MultiSink) Sinks() []Sink {
	return s.sinks
}

// Open builds the configured sinks for a crawl directory. The file sink is
// always first; unknown names are rejected.
func Open(ctx context.Context, cfg *config.StorageConfig, root string, logger *slog.Logger) (*MultiSink, error) {
	file, err := NewFileSink(root, logger)
	if err != nil {
		return nil, err
	}
	sinks := []Sink{file}

	fail := func(err error) (*MultiSink, error) {
		for _, s := range sinks {
			_ = s.Close()
		}
		return nil, err
	}

	for _, name := range cfg.Sinks {
		var (
			sink Sink
			err  error
		)
		switch name {
		case "file":
			continue
		case "jsonl":
			sink, err = NewJSONLSink(root, logger)
		case "csv":
			sink, err = NewCSVSink(root, logger)
		case "mongo":
			sink, err = NewMongoSink(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		case "sqlite":
			path := cfg.SQLitePath
			if path == "" {
				path = filepath.Join(root, "pages.db")
			}
			sink, err = NewSQLiteSink(ctx, path, logger)
		case "postgres":
			sink, err = NewPostgresSink(ctx, cfg.PostgresDSN, logger)
		case "kafka":
			sink, err = NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		default:
			err = fmt.Errorf("unknown sink %q", name)
		}
		if err != nil {
			return fail(&types.StorageError{Backend: name, Op: "open", Err: err})
		}
		sinks = append(sinks, sink)
	}

	return NewMultiSink(sinks, logger), nil
}

// IndexRow is the compact per-page projection stored by the database sinks
// and published as a page event.
type IndexRow struct {
	URL         string  `json:"url"`
	CrawlID     string  `json:"crawl_id"`
	Language    string  `json:"language"`
	StatusCode  int     `json:"status_code"`
	Title       string  `json:"title"`
	WordCount   int     `json:"word_count"`
	LoadTime    float64 `json:"load_time"`
	ContentHash string  `json:"content_hash"`
	Timestamp   float64 `json:"timestamp"`
}

// NewIndexRow projects a record onto its index row.
func NewIndexRow(rec *types.PageRecord) IndexRow {
	return IndexRow{
		URL:         rec.URL,
		CrawlID:     rec.CrawlID,
		Language:    rec.DetectedLanguage,
		StatusCode:  rec.StatusCode,
		Title:       rec.MetaData.Title,
		WordCount:   rec.ContentAnalysis.TotalWordCount,
		LoadTime:    rec.LoadTime,
		ContentHash: rec.ContentAnalysis.ContentHash,
		Timestamp:   rec.Timestamp,
	}
}
