package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. SEOCRAWL_CRAWL_MAX_PAGES.
const EnvPrefix = "SEOCRAWL"

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults. CLI flags
// are applied by the caller after Load returns.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("seocrawl")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, "seocrawl"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides resolve
// for every key, including ones absent from the config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("crawl.max_pages", cfg.Crawl.MaxPages)
	v.SetDefault("crawl.delay", cfg.Crawl.Delay)
	v.SetDefault("crawl.workers", cfg.Crawl.Workers)
	v.SetDefault("crawl.output_dir", cfg.Crawl.OutputDir)
	v.SetDefault("crawl.resume", cfg.Crawl.Resume)
	v.SetDefault("crawl.sitemap_audit", cfg.Crawl.SitemapAudit)

	v.SetDefault("fetcher.timeout", cfg.Fetcher.Timeout)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.max_retries", cfg.Fetcher.MaxRetries)
	v.SetDefault("fetcher.tls_insecure", cfg.Fetcher.TLSInsecure)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)

	v.SetDefault("storage.sinks", cfg.Storage.Sinks)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.sqlite_path", cfg.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", cfg.Storage.PostgresDSN)
	v.SetDefault("storage.kafka_brokers", cfg.Storage.KafkaBrokers)
	v.SetDefault("storage.kafka_topic", cfg.Storage.KafkaTopic)

	v.SetDefault("checkpoint.backend", cfg.Checkpoint.Backend)
	v.SetDefault("checkpoint.redis_addr", cfg.Checkpoint.RedisAddr)
	v.SetDefault("checkpoint.interval", cfg.Checkpoint.Interval)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
