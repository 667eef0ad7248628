package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// DefaultUserAgent is the fixed client identity sent with every request.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config is the root configuration for SEOCrawl.
type Config struct {
	Crawl      CrawlConfig      `mapstructure:"crawl"      yaml:"crawl"`
	Fetcher    FetcherConfig    `mapstructure:"fetcher"    yaml:"fetcher"`
	Storage    StorageConfig    `mapstructure:"storage"    yaml:"storage"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint" yaml:"checkpoint"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"    yaml:"metrics"`
}

// CrawlConfig controls traversal.
type CrawlConfig struct {
	MaxPages     int           `mapstructure:"max_pages"     yaml:"max_pages"`
	Delay        time.Duration `mapstructure:"delay"         yaml:"delay"`
	Workers      int           `mapstructure:"workers"       yaml:"workers"`
	OutputDir    string        `mapstructure:"output_dir"    yaml:"output_dir"`
	Resume       bool          `mapstructure:"resume"        yaml:"resume"`
	SitemapAudit bool          `mapstructure:"sitemap_audit" yaml:"sitemap_audit"`
}

// FetcherConfig controls the HTTP fetcher.
type FetcherConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"           yaml:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	MaxRetries      int           `mapstructure:"max_retries"       yaml:"max_retries"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// StorageConfig selects where PageRecords are written. The file sink is
// always active; the others are opt-in.
type StorageConfig struct {
	Sinks         []string `mapstructure:"sinks"          yaml:"sinks"`
	MongoURI      string   `mapstructure:"mongo_uri"      yaml:"mongo_uri"`
	MongoDatabase string   `mapstructure:"mongo_database" yaml:"mongo_database"`
	SQLitePath    string   `mapstructure:"sqlite_path"    yaml:"sqlite_path"`
	PostgresDSN   string   `mapstructure:"postgres_dsn"   yaml:"postgres_dsn"`
	KafkaBrokers  []string `mapstructure:"kafka_brokers"  yaml:"kafka_brokers"`
	KafkaTopic    string   `mapstructure:"kafka_topic"    yaml:"kafka_topic"`
}

// CheckpointConfig controls resumable crawl state.
type CheckpointConfig struct {
	Backend   string        `mapstructure:"backend"    yaml:"backend"`
	RedisAddr string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	Interval  time.Duration `mapstructure:"interval"   yaml:"interval"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			MaxPages:  50,
			Delay:     500 * time.Millisecond,
			Workers:   1,
			OutputDir: "crawl_data",
		},
		Fetcher: FetcherConfig{
			Timeout:         30 * time.Second,
			UserAgent:       DefaultUserAgent,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
		},
		Storage: StorageConfig{
			Sinks:         []string{"file"},
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "seocrawl",
			KafkaTopic:    "seocrawl.pages",
		},
		Checkpoint: CheckpointConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
			Interval:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Port: 9090,
			Path: "/metrics",
		},
	}
}
