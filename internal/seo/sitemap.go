package seo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/IshaanNene/SEOCrawl/internal/fetcher"
	"github.com/IshaanNene/SEOCrawl/internal/urlnorm"
)

// SitemapReport compares the URLs a sitemap lists with the pages a crawl
// actually reached.
type SitemapReport struct {
	SitemapURL          string   `json:"sitemap_url"`
	Listed              int      `json:"listed"`
	Crawled             int      `json:"crawled"`
	InSitemapNotCrawled []string `json:"in_sitemap_not_crawled"`
	CrawledNotInSitemap []string `json:"crawled_not_in_sitemap"`
	Error               string   `json:"error,omitempty"`
}

// SitemapAuditor fetches /sitemap.xml for a site. It is read-only with
// respect to the crawl: listed URLs are compared, never enqueued.
type SitemapAuditor struct {
	fetcher fetcher.Fetcher
	logger  *slog.Logger
}

// NewSitemapAuditor creates a sitemap auditor that fetches through f.
func NewSitemapAuditor(f fetcher.Fetcher, logger *slog.Logger) *SitemapAuditor {
	return &SitemapAuditor{
		fetcher: f,
		logger:  logger.With("component", "sitemap_auditor"),
	}
}

// SitemapURLFor returns the conventional sitemap location for a seed URL.
func SitemapURLFor(seedURL string) (string, error) {
	u, err := url.Parse(seedURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid seed %q", seedURL)
	}
	return u.Scheme + "://" + u.Host + "/sitemap.xml", nil
}

// Fetch retrieves the sitemap for seedURL and returns the listed page URLs.
// A sitemap index is followed one level deep; nested indexes are skipped.
func (a *SitemapAuditor) Fetch(ctx context.Context, seedURL string) (string, []string, error) {
	sitemapURL, err := SitemapURLFor(seedURL)
	if err != nil {
		return "", nil, err
	}
	pages, children, err := a.fetchOne(ctx, sitemapURL)
	if err != nil {
		return sitemapURL, nil, err
	}
	for _, child := range children {
		childPages, _, err := a.fetchOne(ctx, child)
		if err != nil {
			a.logger.Warn("child sitemap failed", "url", child, "error", err)
			continue
		}
		pages = append(pages, childPages...)
	}
	a.logger.Info("sitemap loaded", "url", sitemapURL, "urls", len(pages), "children", len(children))
	return sitemapURL, pages, nil
}

func (a *SitemapAuditor) fetchOne(ctx context.Context, sitemapURL string) ([]string, []string, error) {
	resp, err := a.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, nil, err
	}
	return ParseSitemap(resp.Body)
}

// ParseSitemap reads a urlset or sitemapindex document. It returns the page
// locations of a urlset or the child sitemap locations of an index.
func ParseSitemap(body []byte) (pages, children []string, err error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, nil, fmt.Errorf("parse sitemap: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, nil, errors.New("parse sitemap: empty document")
	}

	switch root.Tag {
	case "urlset":
		pages = locs(root, "url")
	case "sitemapindex":
		children = locs(root, "sitemap")
	default:
		return nil, nil, fmt.Errorf("parse sitemap: unexpected root element <%s>", root.Tag)
	}
	return pages, children, nil
}

func locs(root *etree.Element, entry string) []string {
	var out []string
	for _, e := range root.SelectElements(entry) {
		if loc := e.SelectElement("loc"); loc != nil {
			if v := strings.TrimSpace(loc.Text()); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// CompareSitemap diffs listed against crawled after normalizing both sides.
func CompareSitemap(sitemapURL string, listed, crawled []string) SitemapReport {
	listedSet := normalizedSet(listed)
	crawledSet := normalizedSet(crawled)

	report := SitemapReport{
		SitemapURL:          sitemapURL,
		Listed:              len(listedSet),
		Crawled:             len(crawledSet),
		InSitemapNotCrawled: difference(listedSet, crawledSet),
		CrawledNotInSitemap: difference(crawledSet, listedSet),
	}
	return report
}

func normalizedSet(urls []string) map[string]bool {
	set := make(map[string]bool, len(urls))
	for _, u := range urls {
		if n, err := urlnorm.Normalize(u); err == nil {
			set[n] = true
		}
	}
	return set
}

func difference(a, b map[string]bool) []string {
	out := []string{}
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
