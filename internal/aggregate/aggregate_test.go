package aggregate

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/SEOCrawl/internal/storage"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var testJob = JobInfo{
	CrawlID:        "c1",
	Domain:         "example.com",
	BaseURL:        "https://example.com",
	CrawlTimestamp: "2024-05-01_10-00-00",
	CrawlDate:      time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC),
}

type pageOpt func(*types.PageRecord)

func page(url string, opts ...pageOpt) *types.PageRecord {
	rec := &types.PageRecord{URL: url, StatusCode: 200, DetectedLanguage: "en", LoadTime: 0.5}
	rec.MetaData.Title = "T"
	rec.MetaData.Description = "D"
	rec.Headings.H1Count = 1
	rec.ContentAnalysis.TotalWordCount = 500
	rec.ContentAnalysis.ContentHash = url
	for _, o := range opts {
		o(rec)
	}
	return rec
}

func images(total, noAlt int) pageOpt {
	return func(r *types.PageRecord) {
		r.Images.TotalImages = total
		r.Images.ImagesWithoutAlt = noAlt
	}
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(testJob, nil, nil)

	if s.CrawlInfo.TotalPagesCrawled != 0 || s.CrawlInfo.TotalErrors != 0 {
		t.Errorf("crawl_info = %+v", s.CrawlInfo)
	}
	if s.SEOOverview.AltTextCoverage != 100 {
		t.Errorf("alt coverage = %v, want 100", s.SEOOverview.AltTextCoverage)
	}
	if s.Performance.PerformanceScore != 100 {
		t.Errorf("performance score = %v, want 100", s.Performance.PerformanceScore)
	}
	if s.Errors == nil || s.Duplicates == nil {
		t.Error("errors and duplicates must be empty, not nil")
	}
	if s.CrawlInfo.CrawlDate != "2024-05-01T10:05:00Z" {
		t.Errorf("crawl_date = %q", s.CrawlInfo.CrawlDate)
	}
}

func TestAggregateTotals(t *testing.T) {
	records := []*types.PageRecord{
		page("https://example.com/", images(4, 1), func(r *types.PageRecord) {
			r.Links.TotalInternal = 3
			r.Links.TotalExternal = 1
		}),
		page("https://example.com/slow", images(2, 2), func(r *types.PageRecord) {
			r.LoadTime = 4.2
			r.MetaData.Title = ""
			r.Headings.H1Count = 0
			r.ContentAnalysis.TotalWordCount = 120
		}),
		page("https://example.com/el", func(r *types.PageRecord) {
			r.DetectedLanguage = "el"
			r.MetaData.Description = ""
			r.Headings.H1Count = 2
			r.LoadTime = 0.8
			r.ContentAnalysis.TotalWordCount = 301
		}),
	}
	errs := []types.CrawlError{{URL: "https://example.com/missing", StatusCode: 404, Message: "HTTP 404"}}

	s := Aggregate(testJob, records, errs)

	if s.CrawlInfo.TotalPagesCrawled != 3 || s.CrawlInfo.TotalErrors != 1 {
		t.Errorf("crawl_info totals = %d pages, %d errors", s.CrawlInfo.TotalPagesCrawled, s.CrawlInfo.TotalErrors)
	}

	ov := s.SEOOverview
	if ov.TotalImages != 6 || ov.ImagesWithoutAlt != 3 || ov.AltTextCoverage != 50 {
		t.Errorf("seo_overview images = %+v", ov)
	}
	if ov.TotalInternalLinks != 3 || ov.TotalExternalLinks != 1 {
		t.Errorf("seo_overview links = %+v", ov)
	}

	want := types.SEOIssues{PagesWithoutTitle: 1, PagesWithoutDescription: 1, PagesWithoutH1: 1, PagesWithMultipleH1: 1}
	if s.SEOIssues != want {
		t.Errorf("seo_issues = %+v, want %+v", s.SEOIssues, want)
	}

	// (0.5 + 4.2 + 0.8) / 3 = 1.8333
	if s.Performance.AverageLoadTimeSeconds != 1.83 {
		t.Errorf("average load = %v", s.Performance.AverageLoadTimeSeconds)
	}
	if s.Performance.SlowPagesOver3s != 1 || s.Performance.PerformanceScore != 66.7 {
		t.Errorf("performance = %+v", s.Performance)
	}

	// (500 + 120 + 301) / 3 = 307
	if s.Content.AverageWordCount != 307 || s.Content.PagesWithLowContent != 1 {
		t.Errorf("content = %+v", s.Content)
	}

	langs := s.CrawlInfo.LanguageDistribution
	if langs["en"].Pages != 2 || langs["el"].Pages != 1 {
		t.Errorf("language distribution = %+v", langs)
	}
	if strings.Join(langs["en"].Files, ",") != "homepage.json,slow.json" {
		t.Errorf("en files = %v", langs["en"].Files)
	}
}

func TestAggregateDuplicates(t *testing.T) {
	same := func(r *types.PageRecord) { r.ContentAnalysis.ContentHash = "h1" }
	records := []*types.PageRecord{
		page("https://example.com/b", same),
		page("https://example.com/a", same),
		page("https://example.com/c"),
	}
	s := Aggregate(testJob, records, nil)
	if len(s.Duplicates) != 1 {
		t.Fatalf("duplicates = %+v", s.Duplicates)
	}
	g := s.Duplicates[0]
	if g.ContentHash != "h1" || strings.Join(g.URLs, ",") != "https://example.com/a,https://example.com/b" {
		t.Errorf("group = %+v", g)
	}
}

func TestAggregateIgnoresEmptyHashes(t *testing.T) {
	empty := func(r *types.PageRecord) { r.ContentAnalysis.ContentHash = "" }
	records := []*types.PageRecord{
		page("https://example.com/a", empty),
		page("https://example.com/b", empty),
		page("https://example.com/c", empty),
	}
	if s := Aggregate(testJob, records, nil); len(s.Duplicates) != 0 {
		t.Errorf("duplicates = %+v, want none", s.Duplicates)
	}
}

func TestAggregateKeysByURL(t *testing.T) {
	records := []*types.PageRecord{
		page("https://example.com/", images(2, 0)),
		page("https://example.com/", images(2, 0)),
	}
	s := Aggregate(testJob, records, nil)
	if s.CrawlInfo.TotalPagesCrawled != 1 || s.SEOOverview.TotalImages != 2 {
		t.Errorf("duplicate url counted twice: %+v", s.SEOOverview)
	}
}

func TestRebuild(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "example.com", "2024-05-01_10-00-00")
	sink, err := storage.NewFileSink(dir, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	records := []*types.PageRecord{
		page("https://example.com/", images(3, 0)),
		page("https://example.com/about", images(1, 1)),
		page("https://example.com/el/", func(r *types.PageRecord) { r.DetectedLanguage = "el" }),
	}
	for _, rec := range records {
		if err := sink.Store(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}
	errs := []types.CrawlError{{URL: "https://example.com/x", Message: "timeout"}}
	if err := storage.WriteErrors(dir, errs); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	s, err := Rebuild(dir, now, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	if s.CrawlInfo.Domain != "example.com" || s.CrawlInfo.CrawlTimestamp != "2024-05-01_10-00-00" {
		t.Errorf("crawl_info identity = %+v", s.CrawlInfo)
	}
	if s.CrawlInfo.BaseURL != "https://example.com" {
		t.Errorf("base_url = %q", s.CrawlInfo.BaseURL)
	}
	if s.CrawlInfo.TotalPagesCrawled != 3 || s.CrawlInfo.TotalErrors != 1 {
		t.Errorf("totals = %+v", s.CrawlInfo)
	}
	if s.SEOOverview.TotalImages != 4 || s.SEOOverview.AltTextCoverage != 75 {
		t.Errorf("overview = %+v", s.SEOOverview)
	}
	if got := s.CrawlInfo.LanguageDistribution["el"]; got.Pages != 1 || got.Files[0] != "el.json" {
		t.Errorf("el stats = %+v", got)
	}

	// A prior summary keeps the crawl identity.
	prior := Aggregate(JobInfo{CrawlID: "keep-me", Domain: "example.com", BaseURL: "https://example.com/start", CrawlTimestamp: "2024-05-01_10-00-00"}, nil, nil)
	if err := storage.WriteSummary(dir, prior); err != nil {
		t.Fatal(err)
	}
	s, err = Rebuild(dir, now, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if s.CrawlInfo.CrawlID != "keep-me" || s.CrawlInfo.BaseURL != "https://example.com/start" {
		t.Errorf("identity not preserved: %+v", s.CrawlInfo)
	}
	if s.CrawlInfo.TotalPagesCrawled != 3 {
		t.Errorf("summary file counted as a page: %d", s.CrawlInfo.TotalPagesCrawled)
	}
}

func TestRebuildMissingDir(t *testing.T) {
	if _, err := Rebuild(filepath.Join(t.TempDir(), "nope"), time.Now(), testLogger); err == nil {
		t.Error("expected error for a missing directory")
	}
}
