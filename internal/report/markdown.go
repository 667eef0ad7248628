// Package report renders crawl summaries for people.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/IshaanNene/SEOCrawl/internal/seo"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

const maxErrorRows = 50

// MarkdownWriter renders a CrawlSummary as a Markdown report.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write renders summary and, when present, the sitemap comparison.
func (w *MarkdownWriter) Write(summary *types.CrawlSummary, sitemap *seo.SitemapReport) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeLanguages(md, summary)
	w.writeOverview(md, summary)
	w.writeIssues(md, summary)
	w.writePerformance(md, summary)
	w.writeDuplicates(md, summary)
	w.writeErrors(md, summary)
	if sitemap != nil {
		w.writeSitemap(md, sitemap)
	}
	w.writeFooter(md)

	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *types.CrawlSummary) {
	info := s.CrawlInfo
	md.H1f("SEO Crawl Report: %s", info.Domain)
	md.PlainText("")

	rows := [][]string{
		{"Base URL", info.BaseURL},
		{"Crawl", info.CrawlTimestamp},
		{"Summarized", info.CrawlDate},
		{"Pages Crawled", strconv.Itoa(info.TotalPagesCrawled)},
		{"Errors", strconv.Itoa(info.TotalErrors)},
	}
	if info.CrawlID != "" {
		rows = append(rows, []string{"Crawl ID", "`" + info.CrawlID + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeLanguages(md *markdown.Markdown, s *types.CrawlSummary) {
	md.H2("Languages")
	md.PlainText("")

	dist := s.CrawlInfo.LanguageDistribution
	if len(dist) == 0 {
		md.PlainText("No pages were crawled.")
		md.PlainText("")
		return
	}

	codes := make([]string, 0, len(dist))
	for code := range dist {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if dist[codes[i]].Pages != dist[codes[j]].Pages {
			return dist[codes[i]].Pages > dist[codes[j]].Pages
		}
		return codes[i] < codes[j]
	})

	rows := make([][]string, 0, len(codes))
	chart := piechart.NewPieChart(io.Discard, piechart.WithTitle("Pages by Language"), piechart.WithShowData(true))
	for _, code := range codes {
		name := LanguageName(code)
		rows = append(rows, []string{name, "`" + code + "`", strconv.Itoa(dist[code].Pages)})
		chart.LabelAndIntValue(name, uint64(dist[code].Pages))
	}
	md.Table(markdown.TableSet{
		Header: []string{"Language", "Code", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(codes) > 1 {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeOverview(md *markdown.Markdown, s *types.CrawlSummary) {
	ov := s.SEOOverview
	md.H2("SEO Overview")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Images", strconv.Itoa(ov.TotalImages)},
			{"Images without alt", strconv.Itoa(ov.ImagesWithoutAlt)},
			{"Alt text coverage", formatFloat(ov.AltTextCoverage) + "%"},
			{"Internal links", strconv.Itoa(ov.TotalInternalLinks)},
			{"External links", strconv.Itoa(ov.TotalExternalLinks)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, s *types.CrawlSummary) {
	is := s.SEOIssues
	md.H2("SEO Issues")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Issue", "Pages"},
		Rows: [][]string{
			{"Missing title", strconv.Itoa(is.PagesWithoutTitle)},
			{"Missing meta description", strconv.Itoa(is.PagesWithoutDescription)},
			{"Missing H1", strconv.Itoa(is.PagesWithoutH1)},
			{"Multiple H1", strconv.Itoa(is.PagesWithMultipleH1)},
			{"Low content (< 300 words)", strconv.Itoa(s.Content.PagesWithLowContent)},
		},
	})
	md.PlainText("")

	total := is.PagesWithoutTitle + is.PagesWithoutDescription + is.PagesWithoutH1 + is.PagesWithMultipleH1
	switch {
	case is.PagesWithoutTitle > 0:
		md.Warningf("%d page(s) have no title.", is.PagesWithoutTitle)
	case total > 0:
		md.Importantf("%d on-page issue(s) found.", total)
	default:
		md.Tip("Every page has a title, a description and a single H1.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePerformance(md *markdown.Markdown, s *types.CrawlSummary) {
	p := s.Performance
	md.H2("Performance and Content")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Average load time", formatFloat(p.AverageLoadTimeSeconds) + "s"},
			{"Slow pages (> 3s)", strconv.Itoa(p.SlowPagesOver3s)},
			{"Performance score", formatFloat(p.PerformanceScore)},
			{"Average word count", formatFloat(s.Content.AverageWordCount)},
		},
	})
	md.PlainText("")
	if p.SlowPagesOver3s > 0 {
		md.Cautionf("%d page(s) took longer than 3 seconds to load.", p.SlowPagesOver3s)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeDuplicates(md *markdown.Markdown, s *types.CrawlSummary) {
	if len(s.Duplicates) == 0 {
		return
	}
	md.H2("Duplicate Content")
	md.PlainText("")
	rows := make([][]string, 0, len(s.Duplicates))
	for _, g := range s.Duplicates {
		rows = append(rows, []string{"`" + g.ContentHash + "`", strconv.Itoa(len(g.URLs)), joinURLs(g.URLs)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Content Hash", "Pages", "URLs"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, s *types.CrawlSummary) {
	md.H2("Errors")
	md.PlainText("")
	if len(s.Errors) == 0 {
		md.PlainText("No errors.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, min(len(s.Errors), maxErrorRows))
	for _, e := range s.Errors {
		if len(rows) == maxErrorRows {
			break
		}
		status := "-"
		if e.StatusCode > 0 {
			status = strconv.Itoa(e.StatusCode)
		}
		rows = append(rows, []string{e.URL, status, truncate(e.Message, 80)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
	if len(s.Errors) > maxErrorRows {
		md.PlainTextf("... and %d more.", len(s.Errors)-maxErrorRows)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeSitemap(md *markdown.Markdown, r *seo.SitemapReport) {
	md.H2("Sitemap")
	md.PlainText("")
	if r.Error != "" {
		md.Warningf("Sitemap %s could not be read: %s", r.SitemapURL, r.Error)
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Sitemap", r.SitemapURL},
			{"Listed URLs", strconv.Itoa(r.Listed)},
			{"Crawled pages", strconv.Itoa(r.Crawled)},
			{"Listed but not crawled", strconv.Itoa(len(r.InSitemapNotCrawled))},
			{"Crawled but not listed", strconv.Itoa(len(r.CrawledNotInSitemap))},
		},
	})
	md.PlainText("")
	if len(r.CrawledNotInSitemap) > 0 {
		md.H3("Crawled but not in sitemap")
		md.PlainText("")
		md.BulletList(r.CrawledNotInSitemap...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by seocrawl*")
}

// LanguageName returns the English name of a language code, e.g. "Greek"
// for "el". Codes that are not languages are title-cased.
func LanguageName(code string) string {
	if code == "" || code == "unknown" {
		return "Unknown"
	}
	tag, err := language.Parse(code)
	if err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return cases.Title(language.English).String(code)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinURLs(urls []string) string {
	out := ""
	for i, u := range urls {
		if i > 0 {
			out += "<br>"
		}
		out += fmt.Sprintf("`%s`", u)
	}
	return out
}
