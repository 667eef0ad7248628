package config

import (
	"fmt"
	"net/url"
)

var validSinks = map[string]bool{
	"file": true, "jsonl": true, "csv": true, "mongo": true, "sqlite": true, "postgres": true, "kafka": true,
}

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Crawl.MaxPages < 1 {
		return fmt.Errorf("crawl.max_pages must be >= 1, got %d", cfg.Crawl.MaxPages)
	}
	if cfg.Crawl.Workers < 1 {
		return fmt.Errorf("crawl.workers must be >= 1, got %d", cfg.Crawl.Workers)
	}
	if cfg.Crawl.Workers > 64 {
		return fmt.Errorf("crawl.workers must be <= 64, got %d", cfg.Crawl.Workers)
	}
	if cfg.Crawl.Delay < 0 {
		return fmt.Errorf("crawl.delay must be >= 0")
	}
	if cfg.Crawl.OutputDir == "" {
		return fmt.Errorf("crawl.output_dir must not be empty")
	}

	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.UserAgent == "" {
		return fmt.Errorf("fetcher.user_agent must not be empty")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.MaxRetries < 0 || cfg.Fetcher.MaxRetries > 10 {
		return fmt.Errorf("fetcher.max_retries must be 0-10, got %d", cfg.Fetcher.MaxRetries)
	}

	for _, s := range cfg.Storage.Sinks {
		if !validSinks[s] {
			return fmt.Errorf("storage.sinks: %q is not supported (valid: file, jsonl, csv, mongo, sqlite, postgres, kafka)", s)
		}
		switch s {
		case "mongo":
			if cfg.Storage.MongoURI == "" {
				return fmt.Errorf("storage.mongo_uri is required for the mongo sink")
			}
		case "postgres":
			if cfg.Storage.PostgresDSN == "" {
				return fmt.Errorf("storage.postgres_dsn is required for the postgres sink")
			}
		case "kafka":
			if len(cfg.Storage.KafkaBrokers) == 0 || cfg.Storage.KafkaTopic == "" {
				return fmt.Errorf("storage.kafka_brokers and storage.kafka_topic are required for the kafka sink")
			}
		}
	}

	if cfg.Checkpoint.Backend != "file" && cfg.Checkpoint.Backend != "redis" {
		return fmt.Errorf("checkpoint.backend must be 'file' or 'redis', got %q", cfg.Checkpoint.Backend)
	}
	if cfg.Checkpoint.Backend == "redis" && cfg.Checkpoint.RedisAddr == "" {
		return fmt.Errorf("checkpoint.redis_addr is required for the redis backend")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks if a URL string is valid as a crawl seed.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
