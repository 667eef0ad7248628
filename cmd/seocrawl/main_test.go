package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/IshaanNene/SEOCrawl/internal/config"
	"github.com/IshaanNene/SEOCrawl/internal/engine"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func resetFlags() {
	maxPages, workers, delay, outputDir = 0, 0, "", ""
	resume, sitemapAudit, verbose = false, false, false
	sinks, logFormat = nil, ""
}

func TestApplyCLIOverrides(t *testing.T) {
	t.Cleanup(resetFlags)
	maxPages, workers, delay, outputDir = 10, 4, "250ms", "out"
	resume, verbose = true, true
	sinks = []string{"jsonl"}

	cfg := config.DefaultConfig()
	if err := applyCLIOverrides(cfg); err != nil {
		t.Fatalf("applyCLIOverrides: %v", err)
	}
	if cfg.Crawl.MaxPages != 10 || cfg.Crawl.Workers != 4 {
		t.Errorf("max_pages/workers = %d/%d", cfg.Crawl.MaxPages, cfg.Crawl.Workers)
	}
	if cfg.Crawl.Delay != 250*time.Millisecond {
		t.Errorf("delay = %s", cfg.Crawl.Delay)
	}
	if cfg.Crawl.OutputDir != "out" || !cfg.Crawl.Resume {
		t.Errorf("output/resume = %q/%v", cfg.Crawl.OutputDir, cfg.Crawl.Resume)
	}
	if len(cfg.Storage.Sinks) != 2 || cfg.Storage.Sinks[1] != "jsonl" {
		t.Errorf("sinks = %v", cfg.Storage.Sinks)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if err := config.Validate(cfg); err != nil {
		t.Errorf("overridden config invalid: %v", err)
	}
}

func TestApplyCLIOverridesBadDelay(t *testing.T) {
	t.Cleanup(resetFlags)
	delay = "soon"
	if err := applyCLIOverrides(config.DefaultConfig()); err == nil {
		t.Fatal("expected error for unparseable delay")
	}
}

func TestPrepareJobFresh(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Crawl.OutputDir = t.TempDir()
	store := engine.NewFileCheckpointStore(cfg.Crawl.OutputDir)

	job, root, cp, err := prepareJob(context.Background(), cfg, "https://example.com/", store, testLogger)
	if err != nil {
		t.Fatalf("prepareJob: %v", err)
	}
	if cp != nil {
		t.Error("fresh crawl should not carry a checkpoint")
	}
	if job.ID == "" || job.Domain != "example.com" {
		t.Errorf("job = %+v", job)
	}
	want := filepath.Join(cfg.Crawl.OutputDir, "example.com", job.Timestamp())
	if root != want {
		t.Errorf("root = %q, want %q", root, want)
	}
}

func TestPrepareJobResume(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Crawl.OutputDir = t.TempDir()
	cfg.Crawl.Resume = true
	cfg.Crawl.MaxPages = 20
	store := engine.NewFileCheckpointStore(cfg.Crawl.OutputDir)

	saved := &engine.Checkpoint{
		CrawlID:   "crawl-1",
		SeedURL:   "https://example.com",
		Domain:    "example.com",
		StartedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Root:      filepath.Join(cfg.Crawl.OutputDir, "example.com", "2024-03-01_09-30-00"),
		Pending:   []string{"https://example.com/next"},
	}
	if err := store.Save(context.Background(), saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	job, root, cp, err := prepareJob(context.Background(), cfg, "https://example.com", store, testLogger)
	if err != nil {
		t.Fatalf("prepareJob: %v", err)
	}
	if cp == nil || cp.CrawlID != "crawl-1" {
		t.Fatalf("checkpoint = %+v", cp)
	}
	if job.ID != "crawl-1" || job.PageBudget != 20 {
		t.Errorf("job = %+v", job)
	}
	if root != saved.Root {
		t.Errorf("root = %q, want %q", root, saved.Root)
	}
}

func TestPrepareJobResumeWithoutCheckpoint(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Crawl.OutputDir = t.TempDir()
	cfg.Crawl.Resume = true
	store := engine.NewFileCheckpointStore(cfg.Crawl.OutputDir)

	job, _, cp, err := prepareJob(context.Background(), cfg, "https://example.com", store, testLogger)
	if err != nil {
		t.Fatalf("prepareJob: %v", err)
	}
	if cp != nil || job.ID == "" {
		t.Errorf("expected a fresh job, got cp=%v job=%+v", cp, job)
	}
}
