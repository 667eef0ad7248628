package types

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CrawlTimestampLayout names a crawl directory and labels its records.
const CrawlTimestampLayout = "2006-01-02_15-04-05"

// CrawlJob describes one crawl invocation. It is immutable after NewCrawlJob.
type CrawlJob struct {
	ID         string
	SeedURL    string
	Domain     string
	PageBudget int
	StartedAt  time.Time
}

// NewCrawlJob validates the seed and derives the crawl domain from its host.
func NewCrawlJob(id, seed string, budget int, startedAt time.Time) (*CrawlJob, error) {
	u, err := url.Parse(strings.TrimSpace(seed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, seed)
	}
	if budget <= 0 {
		return nil, fmt.Errorf("page budget must be positive, got %d", budget)
	}
	return &CrawlJob{
		ID:         id,
		SeedURL:    strings.TrimRight(u.String(), "/"),
		Domain:     u.Host,
		PageBudget: budget,
		StartedAt:  startedAt,
	}, nil
}

// Timestamp returns the crawl label used for directory names and crawl_date.
func (j *CrawlJob) Timestamp() string {
	return j.StartedAt.Format(CrawlTimestampLayout)
}
