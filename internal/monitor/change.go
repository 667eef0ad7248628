package monitor

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/IshaanNene/SEOCrawl/internal/storage"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// ChangeType identifies what kind of change occurred.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

const maxValueLen = 200

// Change is one difference between two crawls of the same site. Added and
// removed pages carry no Field.
type Change struct {
	URL      string     `json:"url"`
	Type     ChangeType `json:"type"`
	Field    string     `json:"field,omitempty"`
	OldValue string     `json:"old_value,omitempty"`
	NewValue string     `json:"new_value,omitempty"`
}

// Report is the outcome of comparing two crawls.
type Report struct {
	OldCrawl string   `json:"old_crawl"`
	NewCrawl string   `json:"new_crawl"`
	Pages    int      `json:"pages_compared"`
	Added    int      `json:"pages_added"`
	Removed  int      `json:"pages_removed"`
	Modified int      `json:"pages_modified"`
	Changes  []Change `json:"changes"`
}

// trackedField is one SEO-relevant value compared between crawls.
type trackedField struct {
	name  string
	value func(*types.PageRecord) string
}

var trackedFields = []trackedField{
	{"status_code", func(r *types.PageRecord) string { return strconv.Itoa(r.StatusCode) }},
	{"title", func(r *types.PageRecord) string { return r.MetaData.Title }},
	{"description", func(r *types.PageRecord) string { return r.MetaData.Description }},
	{"robots", func(r *types.PageRecord) string { return r.MetaData.Robots }},
	{"canonical_url", func(r *types.PageRecord) string {
		if r.TechnicalSEO.CanonicalURL == nil {
			return ""
		}
		return *r.TechnicalSEO.CanonicalURL
	}},
	{"h1", func(r *types.PageRecord) string {
		if len(r.Headings.Headings.H1) == 0 {
			return ""
		}
		return r.Headings.Headings.H1[0].Text
	}},
	{"h1_count", func(r *types.PageRecord) string { return strconv.Itoa(r.Headings.H1Count) }},
	{"detected_language", func(r *types.PageRecord) string { return r.DetectedLanguage }},
	{"content_hash", func(r *types.PageRecord) string { return r.ContentAnalysis.ContentHash }},
	{"word_count", func(r *types.PageRecord) string { return strconv.Itoa(r.ContentAnalysis.TotalWordCount) }},
	{"internal_links", func(r *types.PageRecord) string { return strconv.Itoa(r.Links.TotalInternal) }},
	{"images_without_alt", func(r *types.PageRecord) string { return strconv.Itoa(r.Images.ImagesWithoutAlt) }},
}

// ChangeDetector compares a crawl against an earlier crawl of the same site.
type ChangeDetector struct {
	loader *storage.Loader
	logger *slog.Logger
}

// NewChangeDetector creates a new change detector.
func NewChangeDetector(logger *slog.Logger) *ChangeDetector {
	return &ChangeDetector{
		loader: storage.NewLoader(logger),
		logger: logger.With("component", "change_detector"),
	}
}

// CompareDirs loads the page records of two crawl directories and compares them.
func (cd *ChangeDetector) CompareDirs(oldDir, newDir string) (*Report, error) {
	oldPages, err := cd.loader.Load(oldDir, "")
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", oldDir, err)
	}
	newPages, err := cd.loader.Load(newDir, "")
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", newDir, err)
	}

	report := cd.Compare(records(oldPages), records(newPages))
	report.OldCrawl = oldDir
	report.NewCrawl = newDir
	cd.logger.Info("crawls compared",
		"old", oldDir,
		"new", newDir,
		"added", report.Added,
		"removed", report.Removed,
		"modified", report.Modified,
	)
	return report, nil
}

// Compare diffs two sets of records keyed by URL. Changes are ordered by URL,
// then by field.
func (cd *ChangeDetector) Compare(oldRecs, newRecs []*types.PageRecord) *Report {
	oldByURL := byURL(oldRecs)
	newByURL := byURL(newRecs)

	urls := make([]string, 0, len(oldByURL)+len(newByURL))
	for u := range oldByURL {
		urls = append(urls, u)
	}
	for u := range newByURL {
		if _, ok := oldByURL[u]; !ok {
			urls = append(urls, u)
		}
	}
	sort.Strings(urls)

	report := &Report{Pages: len(urls), Changes: []Change{}}
	for _, u := range urls {
		before, hadOld := oldByURL[u]
		after, hasNew := newByURL[u]
		switch {
		case !hadOld:
			report.Added++
			report.Changes = append(report.Changes, Change{URL: u, Type: ChangeAdded})
		case !hasNew:
			report.Removed++
			report.Changes = append(report.Changes, Change{URL: u, Type: ChangeRemoved})
		default:
			changes := diffRecord(before, after)
			if len(changes) > 0 {
				report.Modified++
				report.Changes = append(report.Changes, changes...)
			}
		}
	}
	return report
}

func diffRecord(before, after *types.PageRecord) []Change {
	var changes []Change
	for _, f := range trackedFields {
		oldVal, newVal := f.value(before), f.value(after)
		if oldVal == newVal {
			continue
		}
		changes = append(changes, Change{
			URL:      after.URL,
			Type:     ChangeModified,
			Field:    f.name,
			OldValue: truncateStr(oldVal, maxValueLen),
			NewValue: truncateStr(newVal, maxValueLen),
		})
	}
	return changes
}

// byURL keeps the first record seen for each URL.
func byURL(recs []*types.PageRecord) map[string]*types.PageRecord {
	m := make(map[string]*types.PageRecord, len(recs))
	for _, r := range recs {
		if r == nil || r.URL == "" {
			continue
		}
		if _, ok := m[r.URL]; !ok {
			m[r.URL] = r
		}
	}
	return m
}

func records(pages []storage.LoadedPage) []*types.PageRecord {
	recs := make([]*types.PageRecord, 0, len(pages))
	for _, p := range pages {
		recs = append(recs, p.Record)
	}
	return recs
}

func truncateStr(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
