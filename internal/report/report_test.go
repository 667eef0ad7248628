package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/IshaanNene/SEOCrawl/internal/seo"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

func TestLanguageName(t *testing.T) {
	tests := map[string]string{
		"el":      "Greek",
		"en":      "English",
		"de":      "German",
		"unknown": "Unknown",
	}
	for code, want := range tests {
		if got := LanguageName(code); got != want {
			t.Errorf("LanguageName(%q) = %q, want %q", code, got, want)
		}
	}
}

func sampleSummary() *types.CrawlSummary {
	return &types.CrawlSummary{
		CrawlInfo: types.CrawlInfo{
			Domain:            "example.com",
			BaseURL:           "https://example.com",
			CrawlTimestamp:    "2024-05-01_10-00-00",
			TotalPagesCrawled: 3,
			TotalErrors:       1,
			LanguageDistribution: map[string]types.LanguageStats{
				"el": {Pages: 2, Files: []string{"homepage.json", "about.json"}},
				"en": {Pages: 1, Files: []string{"en.json"}},
			},
		},
		SEOOverview: types.SEOOverview{TotalImages: 4, ImagesWithoutAlt: 1, AltTextCoverage: 75},
		SEOIssues:   types.SEOIssues{PagesWithoutTitle: 1},
		Performance: types.PerformanceStats{AverageLoadTimeSeconds: 0.42, PerformanceScore: 100},
		Duplicates: []types.DuplicateGroup{
			{ContentHash: "abc", URLs: []string{"https://example.com/a", "https://example.com/b"}},
		},
		Errors: []types.CrawlError{{URL: "https://example.com/gone", StatusCode: 404, Message: "HTTP 404"}},
	}
}

func TestMarkdownReport(t *testing.T) {
	var buf bytes.Buffer
	sitemap := &seo.SitemapReport{
		SitemapURL:          "https://example.com/sitemap.xml",
		Listed:              2,
		Crawled:             3,
		CrawledNotInSitemap: []string{"https://example.com/hidden"},
	}
	if err := NewMarkdownWriter(&buf).Write(sampleSummary(), sitemap); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"# SEO Crawl Report: example.com",
		"## Languages",
		"Greek",
		"```mermaid",
		"## SEO Issues",
		"1 page(s) have no title.",
		"## Duplicate Content",
		"https://example.com/gone",
		"## Sitemap",
		"https://example.com/hidden",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// Languages are ordered by page count.
	if strings.Index(out, "Greek") > strings.Index(out, "English") {
		t.Error("Greek (2 pages) should be listed before English (1 page)")
	}
}

func TestMarkdownReportEmptyCrawl(t *testing.T) {
	var buf bytes.Buffer
	s := &types.CrawlSummary{CrawlInfo: types.CrawlInfo{Domain: "example.com"}}
	if err := NewMarkdownWriter(&buf).Write(s, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "No pages were crawled.") || !strings.Contains(out, "No errors.") {
		t.Errorf("empty report:\n%s", out)
	}
	if strings.Contains(out, "## Sitemap") || strings.Contains(out, "## Duplicate Content") {
		t.Error("empty sections should be omitted")
	}
}

func TestDigest(t *testing.T) {
	rec := &types.PageRecord{URL: "https://example.com/", StatusCode: 200, DetectedLanguage: "el"}
	rec.MetaData.Title = strings.Repeat("α", 150)
	rec.MetaData.TitleLength = 150
	rec.MetaData.Description = strings.Repeat("d", 250)
	rec.Headings.H1Count = 1
	rec.Links.TotalInternal = 5
	rec.TechnicalSEO.HasSSL = true
	rec.PerformanceMetrics.ResponseTimeMS = 120

	d := Digest(rec)
	if len([]rune(d.Title)) != 100 || d.TitleLength != 150 {
		t.Errorf("title = %d runes, length %d", len([]rune(d.Title)), d.TitleLength)
	}
	if len(d.Description) != 200 {
		t.Errorf("description length = %d", len(d.Description))
	}
	if d.Language != "el" || d.InternalLinks != 5 || !d.HasSSL || d.LoadTimeMS != 120 {
		t.Errorf("digest = %+v", d)
	}
}
