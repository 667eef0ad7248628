package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/SEOCrawl/internal/config"
	"github.com/IshaanNene/SEOCrawl/internal/engine"
	"github.com/IshaanNene/SEOCrawl/internal/fetcher"
	"github.com/IshaanNene/SEOCrawl/internal/observability"
	"github.com/IshaanNene/SEOCrawl/internal/storage"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

var (
	cfgFile      string
	verbose      bool
	logFormat    string
	maxPages     int
	workers      int
	delay        string
	outputDir    string
	resume       bool
	sitemapAudit bool
	sinks        []string
)

// redisCheckpointTTL bounds how long an abandoned crawl can be resumed.
const redisCheckpointTTL = 7 * 24 * time.Hour

func main() {
	rootCmd := &cobra.Command{
		Use:   "seocrawl",
		Short: "SEOCrawl — single-domain SEO crawler and page auditor",
		Long: `SEOCrawl crawls one website breadth-first and records an SEO profile for every page.

Features:
  • Metadata, headings, links, images, structured data and content analysis
  • Per-language page files plus a crawl summary
  • Optional sitemap.xml coverage audit
  • Checkpoint-based resume after interruption
  • Extra sinks: JSONL, CSV, SQLite, PostgreSQL, MongoDB, Kafka
  • Prometheus metrics endpoint`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (default from config)")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a website and record an SEO profile per page",
		Long: `Crawl the domain of the given seed URL breadth-first, writing one JSON record per
page under <output>/<domain>/<timestamp>/<language>/ and a _summary.json at the end.`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawl,
	}

	cmd.Flags().IntVarP(&maxPages, "max-pages", "m", 0, "maximum pages to record (0 = use config default of 50)")
	cmd.Flags().IntVarP(&workers, "workers", "n", 0, "number of concurrent workers (0 = use config)")
	cmd.Flags().StringVar(&delay, "delay", "", "politeness delay between requests, e.g. 500ms")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&resume, "resume", false, "resume the last interrupted crawl of this domain")
	cmd.Flags().BoolVar(&sitemapAudit, "sitemap-audit", false, "compare crawled pages with sitemap.xml")
	cmd.Flags().StringSliceVar(&sinks, "sink", nil, "additional sinks: jsonl, csv, sqlite, postgres, mongo, kafka")

	return cmd
}

// runCrawl executes the crawl command.
func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	seed := args[0]
	if err := config.ValidateURL(seed); err != nil {
		return fmt.Errorf("invalid URL %q: %w", seed, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	console := setupLogger(cfg, os.Stderr)

	checkpoints, closeCheckpoints, err := openCheckpointStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open checkpoint store: %w", err)
	}
	defer closeCheckpoints()

	job, root, cp, err := prepareJob(ctx, cfg, seed, checkpoints, console)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create crawl directory: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(root, "crawl.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open crawl log: %w", err)
	}
	defer logFile.Close()
	logger := setupLogger(cfg, os.Stderr, logFile)

	logger.Info("starting crawl",
		"seed", job.SeedURL,
		"crawl_id", job.ID,
		"max_pages", job.PageBudget,
		"workers", cfg.Crawl.Workers,
		"delay", cfg.Crawl.Delay,
		"output", root,
		"resumed", cp != nil,
	)

	crawler := engine.NewCrawler(cfg, job, root, logger)

	httpFetcher, err := fetcher.NewHTTPFetcher(&cfg.Fetcher, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	var f fetcher.Fetcher = httpFetcher
	if cfg.Fetcher.MaxRetries > 0 {
		f = fetcher.NewRetryingFetcher(httpFetcher, fetcher.RetryDelays(cfg.Fetcher.MaxRetries), logger)
	}
	defer f.Close()
	crawler.SetFetcher(f)

	sink, err := storage.Open(ctx, &cfg.Storage, root, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("closing sinks", "error", err)
		}
	}()
	crawler.SetSink(sink)
	crawler.SetCheckpointStore(checkpoints)

	if cfg.Metrics.Enabled {
		metrics := observability.NewMetrics(logger)
		metrics.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path)
		crawler.SetMetrics(metrics)
	}

	if cp != nil {
		if err := crawler.Restore(cp); err != nil {
			return fmt.Errorf("restore checkpoint: %w", err)
		}
	}

	res, err := crawler.Run(ctx)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	printResult(res)
	return nil
}

// prepareJob builds a fresh job, or the checkpointed one when resuming.
func prepareJob(ctx context.Context, cfg *config.Config, seed string, store engine.CheckpointStore, logger *slog.Logger) (*types.CrawlJob, string, *engine.Checkpoint, error) {
	if cfg.Crawl.Resume {
		fresh, err := types.NewCrawlJob("", seed, cfg.Crawl.MaxPages, time.Now())
		if err != nil {
			return nil, "", nil, err
		}
		cp, err := store.Load(ctx, fresh.Domain)
		switch {
		case err == nil:
			job, err := cp.Job(cfg.Crawl.MaxPages)
			if err != nil {
				return nil, "", nil, fmt.Errorf("checkpoint job: %w", err)
			}
			logger.Info("resuming crawl",
				"crawl_id", cp.CrawlID,
				"saved_at", cp.SavedAt,
				"crawled", cp.Crawled,
				"pending", len(cp.Pending),
			)
			return job, cp.Root, cp, nil
		case errors.Is(err, types.ErrNoCheckpoint):
			logger.Warn("no checkpoint to resume, starting a new crawl", "domain", fresh.Domain)
		default:
			return nil, "", nil, fmt.Errorf("load checkpoint: %w", err)
		}
	}

	job, err := types.NewCrawlJob(uuid.NewString(), seed, cfg.Crawl.MaxPages, time.Now())
	if err != nil {
		return nil, "", nil, err
	}
	root := filepath.Join(cfg.Crawl.OutputDir, job.Domain, job.Timestamp())
	return job, root, nil, nil
}

// openCheckpointStore returns the configured store and its release func.
func openCheckpointStore(ctx context.Context, cfg *config.Config) (engine.CheckpointStore, func(), error) {
	switch cfg.Checkpoint.Backend {
	case "redis":
		store, err := engine.NewRedisCheckpointStore(ctx, cfg.Checkpoint.RedisAddr, redisCheckpointTTL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return engine.NewFileCheckpointStore(cfg.Crawl.OutputDir), func() {}, nil
	}
}

func printResult(res *engine.Result) {
	fmt.Printf("\n✅ Crawl %s in %s\n", res.State, res.Elapsed.Round(time.Millisecond))
	fmt.Printf("   Pages:     %d recorded, %d still queued\n", res.Crawled, res.Pending)
	fmt.Printf("   Errors:    %d\n", len(res.Errors))
	if res.Summary != nil {
		issues := res.Summary.SEOIssues
		fmt.Printf("   SEO:       %d without title, %d without description, %d without h1\n",
			issues.PagesWithoutTitle,
			issues.PagesWithoutDescription,
			issues.PagesWithoutH1,
		)
		fmt.Printf("   Alt text:  %.1f%% coverage\n", res.Summary.SEOOverview.AltTextCoverage)
	}
	if res.Sitemap != nil && res.Sitemap.Error == "" {
		fmt.Printf("   Sitemap:   %d listed, %d not crawled, %d not listed\n",
			res.Sitemap.Listed,
			len(res.Sitemap.InSitemapNotCrawled),
			len(res.Sitemap.CrawledNotInSitemap),
		)
	}
	fmt.Printf("   Output:    %s\n", res.Root)

	if res.State == engine.StateCancelled || res.State == engine.StateBudgetExhausted {
		fmt.Println("\n💡 A checkpoint was saved. Continue with:")
		fmt.Printf("     seocrawl crawl %s --resume\n", res.Job.SeedURL)
	}
}

// loadConfig loads, overrides and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applyCLIOverrides(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) error {
	if maxPages > 0 {
		cfg.Crawl.MaxPages = maxPages
	}
	if workers > 0 {
		cfg.Crawl.Workers = workers
	}
	if delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid --delay %q: %w", delay, err)
		}
		cfg.Crawl.Delay = d
	}
	if outputDir != "" {
		cfg.Crawl.OutputDir = outputDir
	}
	if resume {
		cfg.Crawl.Resume = true
	}
	if sitemapAudit {
		cfg.Crawl.SitemapAudit = true
	}
	if len(sinks) > 0 {
		cfg.Storage.Sinks = append(cfg.Storage.Sinks, sinks...)
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return nil
}
