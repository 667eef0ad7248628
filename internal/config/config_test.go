package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero pages", func(c *Config) { c.Crawl.MaxPages = 0 }, "crawl.max_pages"},
		{"zero workers", func(c *Config) { c.Crawl.Workers = 0 }, "crawl.workers"},
		{"negative delay", func(c *Config) { c.Crawl.Delay = -time.Second }, "crawl.delay"},
		{"no timeout", func(c *Config) { c.Fetcher.Timeout = 0 }, "fetcher.timeout"},
		{"unknown sink", func(c *Config) { c.Storage.Sinks = []string{"file", "s3"} }, "storage.sinks"},
		{"postgres without dsn", func(c *Config) { c.Storage.Sinks = []string{"postgres"} }, "postgres_dsn"},
		{"kafka without brokers", func(c *Config) { c.Storage.Sinks = []string{"kafka"} }, "kafka_brokers"},
		{"bad checkpoint backend", func(c *Config) { c.Checkpoint.Backend = "etcd" }, "checkpoint.backend"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad metrics port", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Port = 0 }, "metrics.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	valid := []string{"https://example.com", "http://example.com/el/"}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) unexpected error: %v", u, err)
		}
	}
	invalid := []string{"ftp://example.com", "example.com", "https://", "://bad"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) expected error", u)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seocrawl.yaml")
	content := `
crawl:
  max_pages: 7
  delay: 2s
  workers: 3
storage:
  sinks: [file, sqlite]
  sqlite_path: ./index.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Crawl.MaxPages != 7 {
		t.Errorf("expected max_pages 7, got %d", cfg.Crawl.MaxPages)
	}
	if cfg.Crawl.Delay != 2*time.Second {
		t.Errorf("expected delay 2s, got %s", cfg.Crawl.Delay)
	}
	if cfg.Crawl.Workers != 3 {
		t.Errorf("expected workers 3, got %d", cfg.Crawl.Workers)
	}
	if len(cfg.Storage.Sinks) != 2 || cfg.Storage.Sinks[1] != "sqlite" {
		t.Errorf("unexpected sinks %v", cfg.Storage.Sinks)
	}
	// Untouched keys keep their defaults.
	if cfg.Fetcher.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %s", cfg.Fetcher.Timeout)
	}
	if cfg.Fetcher.UserAgent != DefaultUserAgent {
		t.Errorf("expected default user agent, got %q", cfg.Fetcher.UserAgent)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SEOCRAWL_CRAWL_MAX_PAGES", "12")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("explicit missing config path should fail")
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Crawl.MaxPages != 12 {
		t.Errorf("expected env override 12, got %d", cfg.Crawl.MaxPages)
	}
}
