// Package pipeline turns a fetched page into a PageRecord by running a chain
// of analyzers over one parsed document.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// LinkSink receives internal links discovered on a page. Offer reports
// whether the link was new.
type LinkSink interface {
	Offer(rawURL string) bool
}

// Page is the shared input of every analyzer for one response.
type Page struct {
	Response *types.RawResponse
	Doc      *goquery.Document
	Base     *url.URL
	Domain   string
	Edges    []types.LinkEdge
	Now      time.Time
}

// Analyzer fills one section of a PageRecord.
type Analyzer interface {
	// Name returns the section identifier used in logs and errors.
	Name() string

	// Apply writes the section into rec.
	Apply(page *Page, rec *types.PageRecord) error
}

// Extractor chains analyzers over a parsed page.
type Extractor struct {
	analyzers []Analyzer
	job       *types.CrawlJob
	now       func() time.Time
	logger    *slog.Logger
}

// NewExtractor creates an Extractor loaded with the default analyzers. job
// may be nil when pages are inspected outside of a crawl.
func NewExtractor(job *types.CrawlJob, logger *slog.Logger) *Extractor {
	e := &Extractor{
		job:    job,
		now:    time.Now,
		logger: logger.With("component", "extractor"),
	}
	for _, a := range DefaultAnalyzers() {
		e.Use(a)
	}
	return e
}

// Use appends an analyzer to the chain.
func (e *Extractor) Use(a Analyzer) {
	e.analyzers = append(e.analyzers, a)
	e.logger.Debug("analyzer added", "name", a.Name(), "position", len(e.analyzers))
}

// Len returns the number of analyzers in the chain.
func (e *Extractor) Len() int {
	return len(e.analyzers)
}

// Extract builds the PageRecord for resp and offers every internal link to
// sink. A failing analyzer leaves its section empty; the rest still run.
func (e *Extractor) Extract(ctx context.Context, resp *types.RawResponse, sink LinkSink) *types.PageRecord {
	rec := &types.PageRecord{
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		Timestamp:  float64(resp.FetchedAt.UnixNano()) / float64(time.Second),
		PageSize:   resp.Size,
		LoadTime:   resp.Elapsed.Seconds(),
	}
	if e.job != nil {
		rec.CrawlDate = e.job.Timestamp()
		rec.CrawlID = e.job.ID
	}

	doc, err := resp.Document()
	if err != nil {
		e.logger.WarnContext(ctx, "document parse failed", "url", resp.URL, "error", err)
		return rec
	}

	page := &Page{
		Response: resp,
		Doc:      doc,
		Now:      e.now(),
	}
	page.Base, _ = url.Parse(resp.FinalURL)
	if page.Base == nil {
		page.Base, _ = url.Parse(resp.URL)
	}
	if page.Base == nil {
		page.Base = &url.URL{}
	}
	page.Domain = page.Base.Host
	if e.job != nil {
		page.Domain = e.job.Domain
	}

	if err := e.guard(resp.URL, linkEdges{}, page, rec); err != nil {
		e.logger.WarnContext(ctx, "section failed", "error", err)
	}

	for _, a := range e.analyzers {
		if err := e.guard(resp.URL, a, page, rec); err != nil {
			e.logger.WarnContext(ctx, "section failed", "error", err)
		}
	}

	if sink != nil {
		offered := 0
		for _, edge := range page.Edges {
			if edge.Internal && sink.Offer(edge.Target) {
				offered++
			}
		}
		e.logger.DebugContext(ctx, "links offered", "url", resp.URL, "edges", len(page.Edges), "new", offered)
	}

	return rec
}

// guard runs one analyzer and converts a panic into a ParseError.
func (e *Extractor) guard(pageURL string, a Analyzer, page *Page, rec *types.PageRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("analyzer panic", "section", a.Name(), "stack", string(debug.Stack()))
			err = &types.ParseError{URL: pageURL, Section: a.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := a.Apply(page, rec); err != nil {
		return &types.ParseError{URL: pageURL, Section: a.Name(), Err: err}
	}
	return nil
}
