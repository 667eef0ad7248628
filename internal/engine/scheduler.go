package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/IshaanNene/SEOCrawl/internal/urlnorm"
)

// idlePoll is how long a worker waits before re-checking an empty frontier
// while other workers may still discover links.
const idlePoll = 20 * time.Millisecond

// HostLimiter spaces requests to the same host with one token bucket per
// host. It knows nothing about traversal order.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
	burst    int
}

// NewHostLimiter allows one request per interval per host, with the given
// burst. A non-positive interval disables limiting.
func NewHostLimiter(interval time.Duration, burst int) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
		burst:    max(1, burst),
	}
}

// Wait blocks until a request to rawURL's host is allowed. It returns an
// error if ctx is done first.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	if l.interval <= 0 {
		return ctx.Err()
	}
	host := urlnorm.Host(rawURL)

	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(l.interval), l.burst)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()

	return limiter.Wait(ctx)
}

// runWorkers drains the frontier with n workers. With n == 1 URLs are
// processed strictly one after another.
func (c *Crawler) runWorkers(ctx context.Context, n int) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return c.worker(gctx, i)
		})
	}
	return g.Wait()
}

// worker takes URLs until the budget is reached, ctx is done, or the frontier
// is idle. The budget is checked before each take, so concurrent workers may
// overshoot it by the number of pages in flight.
func (c *Crawler) worker(ctx context.Context, id int) error {
	logger := c.logger.With("worker_id", id)
	frontier := c.state.Frontier

	for {
		if ctx.Err() != nil {
			return nil
		}
		if c.state.BudgetReached() {
			logger.Debug("page budget reached")
			return nil
		}

		u, ok := frontier.Next()
		if !ok {
			if frontier.Idle() {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(idlePoll):
			}
			continue
		}

		c.metrics.WorkerStarted()
		c.process(ctx, u)
		frontier.Done()
		c.metrics.WorkerFinished()
		c.metrics.SetFrontier(frontier.Len())
	}
}
