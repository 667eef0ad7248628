package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IshaanNene/SEOCrawl/internal/aggregate"
	"github.com/IshaanNene/SEOCrawl/internal/config"
	"github.com/IshaanNene/SEOCrawl/internal/fetcher"
	"github.com/IshaanNene/SEOCrawl/internal/observability"
	"github.com/IshaanNene/SEOCrawl/internal/pipeline"
	"github.com/IshaanNene/SEOCrawl/internal/seo"
	"github.com/IshaanNene/SEOCrawl/internal/storage"
	"github.com/IshaanNene/SEOCrawl/internal/types"
	"github.com/IshaanNene/SEOCrawl/internal/urlnorm"
)

// State represents the crawl's lifecycle state.
type State int32

const (
	StateIdle            State = 0
	StateRunning         State = 1
	StateCompleted       State = 2
	StateBudgetExhausted State = 3
	StateCancelled       State = 4
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateBudgetExhausted:
		return "budget_exhausted"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateBudgetExhausted || s == StateCancelled
}

var transitions = map[State][]State{
	StateIdle:    {StateRunning},
	StateRunning: {StateCompleted, StateBudgetExhausted, StateCancelled},
}

// CanTransition reports whether from → to is allowed.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CrawlState is the mutable state of one crawl. It is owned by a Crawler
// and shared only with its workers.
type CrawlState struct {
	Job      *types.CrawlJob
	Frontier *Frontier

	state   atomic.Int32
	crawled atomic.Int64

	mu      sync.Mutex
	records []*types.PageRecord
	errors  []types.CrawlError
}

// NewCrawlState creates the idle state for job.
func NewCrawlState(job *types.CrawlJob) *CrawlState {
	return &CrawlState{
		Job:      job,
		Frontier: NewFrontier(),
	}
}

// State returns the current lifecycle state.
func (s *CrawlState) State() State {
	return State(s.state.Load())
}

// Transition moves to the given state, or returns ErrInvalidTransition.
func (s *CrawlState) Transition(to State) error {
	from := s.State()
	if !CanTransition(from, to) || !s.state.CompareAndSwap(int32(from), int32(to)) {
		return fmt.Errorf("%w: %s -> %s", types.ErrInvalidTransition, from, to)
	}
	return nil
}

// Crawled returns the number of persisted pages.
func (s *CrawlState) Crawled() int {
	return int(s.crawled.Load())
}

// BudgetReached reports whether the page budget has been used up.
func (s *CrawlState) BudgetReached() bool {
	return s.Crawled() >= s.Job.PageBudget
}

func (s *CrawlState) addRecord(rec *types.PageRecord) int {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return int(s.crawled.Add(1))
}

func (s *CrawlState) addError(e types.CrawlError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, e)
}

// Records returns a copy of the persisted records.
func (s *CrawlState) Records() []*types.PageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*types.PageRecord(nil), s.records...)
}

// Errors returns a copy of the recorded crawl errors.
func (s *CrawlState) Errors() []types.CrawlError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.CrawlError(nil), s.errors...)
}

// Result is the outcome of Crawler.Run.
type Result struct {
	Job     *types.CrawlJob
	Root    string
	State   State
	Crawled int
	Pending int
	Errors  []types.CrawlError
	Summary *types.CrawlSummary
	Sitemap *seo.SitemapReport
	Elapsed time.Duration
}

// Crawler runs one crawl job against a single domain.
type Crawler struct {
	cfg         *config.Config
	root        string
	logger      *slog.Logger
	state       *CrawlState
	fetcher     fetcher.Fetcher
	extractor   *pipeline.Extractor
	sink        storage.Sink
	limiter     *HostLimiter
	checkpoints CheckpointStore
	metrics     *observability.Metrics
	now         func() time.Time
}

// NewCrawler creates a crawler for job writing page files under root.
func NewCrawler(cfg *config.Config, job *types.CrawlJob, root string, logger *slog.Logger) *Crawler {
	return &Crawler{
		cfg:       cfg,
		root:      root,
		logger:    logger.With("component", "crawler", "domain", job.Domain),
		state:     NewCrawlState(job),
		extractor: pipeline.NewExtractor(job, logger),
		limiter:   NewHostLimiter(cfg.Crawl.Delay, 1),
		now:       time.Now,
	}
}

// SetFetcher sets the page fetcher.
func (c *Crawler) SetFetcher(f fetcher.Fetcher) { c.fetcher = f }

// SetSink sets where page records are persisted.
func (c *Crawler) SetSink(s storage.Sink) { c.sink = s }

// SetCheckpointStore enables checkpoints.
func (c *Crawler) SetCheckpointStore(s CheckpointStore) { c.checkpoints = s }

// SetMetrics enables metrics collection.
func (c *Crawler) SetMetrics(m *observability.Metrics) { c.metrics = m }

// Extractor returns the crawler's extraction pipeline so analyzers can be added.
func (c *Crawler) Extractor() *pipeline.Extractor { return c.extractor }

// State returns the crawl state.
func (c *Crawler) State() *CrawlState { return c.state }

// Root returns the crawl directory.
func (c *Crawler) Root() string { return c.root }

// Restore resumes from a checkpoint. Pages already on disk are reloaded and
// marked visited so they are neither fetched again nor counted twice.
func (c *Crawler) Restore(cp *Checkpoint) error {
	if c.state.State() != StateIdle {
		return fmt.Errorf("%w: restore while %s", types.ErrInvalidTransition, c.state.State())
	}

	c.state.Frontier.Restore(cp.Visited, cp.Pending)
	for _, e := range cp.Errors {
		c.state.addError(e)
	}

	pages, err := storage.NewLoader(c.logger).Load(c.root, "")
	if err != nil {
		c.logger.Warn("no pages to reload", "root", c.root, "error", err)
	}
	for _, p := range pages {
		c.state.Frontier.MarkVisited(p.Record.URL)
		c.state.addRecord(p.Record)
	}

	c.logger.Info("crawl restored",
		"crawled", c.state.Crawled(),
		"visited", len(cp.Visited),
		"pending", c.state.Frontier.Len(),
		"errors", len(cp.Errors),
	)
	return nil
}

// Run crawls until the frontier is empty, the page budget is reached or ctx
// is cancelled. Artifacts are written in every case.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	if c.fetcher == nil {
		return nil, errors.New("crawler has no fetcher")
	}
	if c.sink == nil {
		return nil, errors.New("crawler has no sink")
	}
	if err := c.state.Transition(StateRunning); err != nil {
		return nil, err
	}

	job := c.state.Job
	start := c.now()
	workers := max(1, c.cfg.Crawl.Workers)
	c.logger.Info("crawl starting",
		"seed", job.SeedURL,
		"max_pages", job.PageBudget,
		"workers", workers,
		"root", c.root,
	)

	c.state.Frontier.Offer(job.SeedURL)

	var sitemapURL string
	var listed []string
	var sitemapErr error
	if c.cfg.Crawl.SitemapAudit {
		auditor := seo.NewSitemapAuditor(c.fetcher, c.logger)
		sitemapURL, listed, sitemapErr = auditor.Fetch(ctx, job.SeedURL)
		if sitemapErr != nil {
			c.logger.Warn("sitemap unavailable", "error", sitemapErr)
		}
	}

	stopCheckpoints := c.startAutoCheckpoint(ctx)
	runErr := c.runWorkers(ctx, workers)
	stopCheckpoints()

	final := StateCompleted
	switch {
	case ctx.Err() != nil:
		final = StateCancelled
	case c.state.BudgetReached() && c.state.Frontier.Len() > 0:
		final = StateBudgetExhausted
	}
	if err := c.state.Transition(final); err != nil {
		return nil, err
	}

	// Finalization must complete even when the crawl was interrupted.
	fctx := context.WithoutCancel(ctx)
	c.finishCheckpoint(fctx, final)

	result := &Result{
		Job:     job,
		Root:    c.root,
		State:   final,
		Crawled: c.state.Crawled(),
		Pending: c.state.Frontier.Len(),
		Errors:  c.state.Errors(),
	}

	if err := storage.WriteErrors(c.root, result.Errors); err != nil {
		return result, &types.StorageError{Backend: "file", Op: "write errors", Err: err}
	}

	result.Summary = aggregate.Aggregate(aggregate.JobInfoFor(job, c.now()), c.state.Records(), result.Errors)
	if err := storage.WriteSummary(c.root, result.Summary); err != nil {
		return result, &types.StorageError{Backend: "file", Op: "write summary", Err: err}
	}

	if c.cfg.Crawl.SitemapAudit {
		crawled := make([]string, 0, result.Crawled)
		for _, rec := range c.state.Records() {
			crawled = append(crawled, rec.URL)
		}
		report := seo.CompareSitemap(sitemapURL, listed, crawled)
		if sitemapErr != nil {
			report.Error = sitemapErr.Error()
		}
		result.Sitemap = &report
		if err := storage.WriteJSON(filepath.Join(c.root, storage.SitemapFile), report); err != nil {
			return result, &types.StorageError{Backend: "file", Op: "write sitemap", Err: err}
		}
	}

	result.Elapsed = c.now().Sub(start)
	c.logger.Info("crawl finished",
		"state", final,
		"pages", result.Crawled,
		"errors", len(result.Errors),
		"pending", result.Pending,
		"elapsed", result.Elapsed.Round(time.Millisecond),
	)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return result, runErr
	}
	return result, nil
}

// process handles one URL taken from the frontier.
func (c *Crawler) process(ctx context.Context, u string) {
	if !urlnorm.IsCrawlable(u) {
		c.logger.Debug("skipping non-document URL", "url", u)
		c.metrics.PageSkipped()
		return
	}

	if err := c.limiter.Wait(ctx, u); err != nil {
		c.state.Frontier.Requeue(u)
		return
	}

	resp, err := c.fetcher.Fetch(ctx, u)
	if err == nil && resp.StatusCode != 200 {
		err = &types.FetchError{URL: u, StatusCode: resp.StatusCode}
	}
	if err != nil {
		if ctx.Err() != nil {
			c.state.Frontier.Requeue(u)
			return
		}
		ce := types.NewCrawlError(u, err)
		c.state.addError(ce)
		c.metrics.PageFailed(observability.ErrorKind(ce.StatusCode))
		if ce.StatusCode > 0 {
			c.logger.Warn("page failed", "url", u, "status", ce.StatusCode)
		} else {
			c.logger.Error("page failed", "url", u, "error", ce.Message)
		}
		return
	}

	rec := c.extractor.Extract(ctx, resp, c.state.Frontier)

	// The page is persisted even if the crawl is being cancelled.
	if err := c.sink.Store(context.WithoutCancel(ctx), rec); err != nil {
		c.state.addError(types.CrawlError{URL: u, Message: err.Error()})
		c.metrics.PageFailed(observability.ErrorStorage)
		c.logger.Error("page not persisted", "url", u, "error", err)
		return
	}

	n := c.state.addRecord(rec)
	c.metrics.PageCrawled(resp.Elapsed, resp.Size)
	c.logger.Info("progress",
		"crawled", n,
		"max_pages", c.state.Job.PageBudget,
		"url", u,
		"language", rec.DetectedLanguage,
	)
}

// Checkpoint captures the current crawl state.
func (c *Crawler) Checkpoint() *Checkpoint {
	job := c.state.Job
	visited, pending := c.state.Frontier.Snapshot()
	return &Checkpoint{
		CrawlID:   job.ID,
		SeedURL:   job.SeedURL,
		Domain:    job.Domain,
		StartedAt: job.StartedAt,
		Root:      c.root,
		SavedAt:   c.now(),
		Crawled:   c.state.Crawled(),
		Visited:   visited,
		Pending:   pending,
		Errors:    c.state.Errors(),
	}
}

// startAutoCheckpoint periodically saves the crawl state until the returned
// stop function is called.
func (c *Crawler) startAutoCheckpoint(ctx context.Context) (stop func()) {
	interval := c.cfg.Checkpoint.Interval
	if c.checkpoints == nil || interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if err := c.checkpoints.Save(ctx, c.Checkpoint()); err != nil {
					c.logger.Error("checkpoint save failed", "error", err)
				} else {
					c.logger.Debug("checkpoint saved", "backend", c.checkpoints.Name())
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

// finishCheckpoint clears the checkpoint of a completed crawl and saves one
// for a crawl that can still be resumed.
func (c *Crawler) finishCheckpoint(ctx context.Context, final State) {
	if c.checkpoints == nil {
		return
	}
	if final == StateCompleted {
		if err := c.checkpoints.Clear(ctx, c.state.Job.Domain); err != nil {
			c.logger.Warn("checkpoint clear failed", "error", err)
		}
		return
	}
	if err := c.checkpoints.Save(ctx, c.Checkpoint()); err != nil {
		c.logger.Error("final checkpoint save failed", "error", err)
		return
	}
	c.logger.Info("checkpoint saved", "backend", c.checkpoints.Name(), "pending", c.state.Frontier.Len())
}
