// Package aggregate folds the page records and errors of one crawl into
// its CrawlSummary.
package aggregate

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/IshaanNene/SEOCrawl/internal/storage"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

const (
	slowPageSeconds = 3.0
	lowContentWords = 300
)

// JobInfo identifies the crawl a summary describes.
type JobInfo struct {
	CrawlID        string
	Domain         string
	BaseURL        string
	CrawlTimestamp string
	CrawlDate      time.Time
}

// JobInfoFor derives JobInfo from a crawl job. at is the summary time.
func JobInfoFor(job *types.CrawlJob, at time.Time) JobInfo {
	return JobInfo{
		CrawlID:        job.ID,
		Domain:         job.Domain,
		BaseURL:        job.SeedURL,
		CrawlTimestamp: job.Timestamp(),
		CrawlDate:      at,
	}
}

// entry is one page file: a record plus where it lives.
type entry struct {
	rec  *types.PageRecord
	lang string
	file string
}

// Aggregate summarizes in-memory records. Each record is attributed to its
// detected language and the file name the file sink gives it.
func Aggregate(job JobInfo, records []*types.PageRecord, errs []types.CrawlError) *types.CrawlSummary {
	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		lang := rec.DetectedLanguage
		if lang == "" {
			lang = "unknown"
		}
		entries = append(entries, entry{rec: rec, lang: lang, file: storage.FilenameFor(rec.URL)})
	}
	return summarize(job, entries, errs)
}

func summarize(job JobInfo, entries []entry, errs []types.CrawlError) *types.CrawlSummary {
	langs := make(map[string]types.LanguageStats)
	byURL := make(map[string]*types.PageRecord)
	var order []string

	for _, e := range entries {
		stats := langs[e.lang]
		stats.Pages++
		stats.Files = append(stats.Files, e.file)
		langs[e.lang] = stats

		if _, seen := byURL[e.rec.URL]; !seen {
			order = append(order, e.rec.URL)
		}
		byURL[e.rec.URL] = e.rec
	}
	for lang, stats := range langs {
		sort.Strings(stats.Files)
		langs[lang] = stats
	}

	if errs == nil {
		errs = []types.CrawlError{}
	}

	s := &types.CrawlSummary{
		CrawlInfo: types.CrawlInfo{
			CrawlID:              job.CrawlID,
			Domain:               job.Domain,
			BaseURL:              job.BaseURL,
			CrawlTimestamp:       job.CrawlTimestamp,
			CrawlDate:            job.CrawlDate.Format(time.RFC3339),
			TotalPagesCrawled:    len(order),
			TotalErrors:          len(errs),
			LanguageDistribution: langs,
		},
		Errors: errs,
	}

	var (
		totalLoad  float64
		totalWords int
		hashes     = make(map[string][]string)
	)
	for _, u := range order {
		rec := byURL[u]

		s.SEOOverview.TotalImages += rec.Images.TotalImages
		s.SEOOverview.ImagesWithoutAlt += rec.Images.ImagesWithoutAlt
		s.SEOOverview.TotalInternalLinks += rec.Links.TotalInternal
		s.SEOOverview.TotalExternalLinks += rec.Links.TotalExternal

		if rec.MetaData.Title == "" {
			s.SEOIssues.PagesWithoutTitle++
		}
		if rec.MetaData.Description == "" {
			s.SEOIssues.PagesWithoutDescription++
		}
		switch {
		case rec.Headings.H1Count == 0:
			s.SEOIssues.PagesWithoutH1++
		case rec.Headings.H1Count > 1:
			s.SEOIssues.PagesWithMultipleH1++
		}

		totalLoad += rec.LoadTime
		if rec.LoadTime > slowPageSeconds {
			s.Performance.SlowPagesOver3s++
		}

		words := rec.ContentAnalysis.TotalWordCount
		totalWords += words
		if words < lowContentWords {
			s.Content.PagesWithLowContent++
		}

		if h := rec.ContentAnalysis.ContentHash; h != "" {
			hashes[h] = append(hashes[h], rec.URL)
		}
	}

	ov := &s.SEOOverview
	ov.AltTextCoverage = types.Percent(ov.TotalImages-ov.ImagesWithoutAlt, ov.TotalImages, 100)

	n := len(order)
	s.Performance.PerformanceScore = 100
	if n > 0 {
		s.Performance.AverageLoadTimeSeconds = types.Round(totalLoad/float64(n), 2)
		score := 100 - float64(s.Performance.SlowPagesOver3s)/float64(n)*100
		s.Performance.PerformanceScore = types.Round(max(0, score), 1)
		s.Content.AverageWordCount = types.Round(float64(totalWords)/float64(n), 1)
	}

	s.Duplicates = duplicateGroups(hashes)
	return s
}

// duplicateGroups keeps hashes shared by two or more pages, sorted by hash.
func duplicateGroups(hashes map[string][]string) []types.DuplicateGroup {
	groups := []types.DuplicateGroup{}
	for h, urls := range hashes {
		if len(urls) < 2 {
			continue
		}
		sort.Strings(urls)
		groups = append(groups, types.DuplicateGroup{ContentHash: h, URLs: urls})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ContentHash < groups[j].ContentHash })
	return groups
}

// Rebuild re-aggregates a crawl directory from the page files on disk and
// _errors.json. Crawl identity comes from an existing _summary.json in dir
// when there is one, otherwise from the <domain>/<timestamp> path.
func Rebuild(dir string, now time.Time, logger *slog.Logger) (*types.CrawlSummary, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &types.StorageError{Backend: "file", Op: "stat", Err: err}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a crawl directory", dir)
	}

	pages, err := storage.NewLoader(logger).Load(dir, "")
	if err != nil {
		return nil, err
	}
	errs, err := storage.ReadErrors(dir)
	if err != nil {
		return nil, &types.StorageError{Backend: "file", Op: "read", Err: err}
	}

	entries := make([]entry, 0, len(pages))
	for _, p := range pages {
		entries = append(entries, entry{rec: p.Record, lang: p.Language, file: p.File})
	}

	job := inferJobInfo(dir, pages)
	var prior types.CrawlSummary
	if err := storage.ReadJSON(filepath.Join(dir, storage.SummaryFile), &prior); err == nil {
		job.CrawlID = prior.CrawlInfo.CrawlID
		if prior.CrawlInfo.Domain != "" {
			job.Domain = prior.CrawlInfo.Domain
		}
		if prior.CrawlInfo.BaseURL != "" {
			job.BaseURL = prior.CrawlInfo.BaseURL
		}
		if prior.CrawlInfo.CrawlTimestamp != "" {
			job.CrawlTimestamp = prior.CrawlInfo.CrawlTimestamp
		}
	}
	job.CrawlDate = now

	summary := summarize(job, entries, errs)
	logger.Debug("summary rebuilt", "dir", dir, "pages", summary.CrawlInfo.TotalPagesCrawled)
	return summary, nil
}

func inferJobInfo(dir string, pages []storage.LoadedPage) JobInfo {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	job := JobInfo{
		Domain:         filepath.Base(filepath.Dir(abs)),
		CrawlTimestamp: filepath.Base(abs),
	}
	for _, p := range pages {
		if u, err := url.Parse(p.Record.URL); err == nil && u.Host != "" {
			job.Domain = u.Host
			job.BaseURL = u.Scheme + "://" + u.Host
			if p.Record.CrawlID != "" {
				job.CrawlID = p.Record.CrawlID
			}
			break
		}
	}
	return job
}
