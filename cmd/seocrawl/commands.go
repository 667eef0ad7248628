package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/SEOCrawl/internal/aggregate"
	"github.com/IshaanNene/SEOCrawl/internal/config"
	"github.com/IshaanNene/SEOCrawl/internal/monitor"
	"github.com/IshaanNene/SEOCrawl/internal/report"
	"github.com/IshaanNene/SEOCrawl/internal/seo"
	"github.com/IshaanNene/SEOCrawl/internal/storage"
)

var (
	inspectLang string
	reportOut   string
)

// summarizeCmd creates the "summarize" subcommand.
func summarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <crawl-dir>",
		Short: "Rebuild _summary.json from the page files of a crawl",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg, os.Stderr)

			dir := args[0]
			summary, err := aggregate.Rebuild(dir, time.Now(), logger)
			if err != nil {
				return fmt.Errorf("rebuild summary: %w", err)
			}
			if err := storage.WriteSummary(dir, summary); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}

			fmt.Printf("Summary written to %s\n", filepath.Join(dir, storage.SummaryFile))
			fmt.Printf("   Pages:     %d\n", summary.CrawlInfo.TotalPagesCrawled)
			fmt.Printf("   Errors:    %d\n", summary.CrawlInfo.TotalErrors)
			fmt.Printf("   Languages: %d\n", len(summary.CrawlInfo.LanguageDistribution))
			return nil
		},
	}
}

// inspectCmd creates the "inspect" subcommand.
func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <crawl-dir|page.json>",
		Short: "Print a short SEO digest of recorded pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg, os.Stderr)

			pages, err := storage.NewLoader(logger).Load(args[0], inspectLang)
			if err != nil {
				return fmt.Errorf("load pages: %w", err)
			}
			if len(pages) == 0 {
				return fmt.Errorf("no page records found under %s", args[0])
			}

			digests := make([]report.PageDigest, 0, len(pages))
			for _, p := range pages {
				digests = append(digests, report.Digest(p.Record))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			if len(digests) == 1 {
				return enc.Encode(digests[0])
			}
			return enc.Encode(digests)
		},
	}
	cmd.Flags().StringVar(&inspectLang, "lang", "", "only pages detected as this language")
	return cmd
}

// reportCmd creates the "report" subcommand.
func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <crawl-dir>",
		Short: "Render the crawl summary as a Markdown report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, file, err := storage.LoadSummary(args[0])
			if err != nil {
				return fmt.Errorf("load summary: %w", err)
			}

			var sitemap *seo.SitemapReport
			var r seo.SitemapReport
			err = storage.ReadJSON(filepath.Join(filepath.Dir(file), storage.SitemapFile), &r)
			switch {
			case err == nil:
				sitemap = &r
			case !errors.Is(err, fs.ErrNotExist):
				return fmt.Errorf("read sitemap report: %w", err)
			}

			var out io.Writer = cmd.OutOrStdout()
			if reportOut != "" {
				f, err := os.Create(reportOut)
				if err != nil {
					return fmt.Errorf("create report: %w", err)
				}
				defer f.Close()
				out = f
			}

			if err := report.NewMarkdownWriter(out).Write(summary, sitemap); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if reportOut != "" {
				fmt.Printf("Report written to %s\n", reportOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&reportOut, "output", "o", "", "write the report to this file instead of stdout")
	return cmd
}

// diffCmd creates the "diff" subcommand.
func diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old-crawl-dir> <new-crawl-dir>",
		Short: "Compare the SEO fields of two crawls of the same site",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg, os.Stderr)

			r, err := monitor.NewChangeDetector(logger).CompareDirs(args[0], args[1])
			if err != nil {
				return fmt.Errorf("compare crawls: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(r)
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("SEOCrawl %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}
