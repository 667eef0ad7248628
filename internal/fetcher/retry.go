package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryDelays returns the first n backoff delays, doubling past 4s.
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, 0, max(n, 0))
	d := time.Second
	for i := 0; i < n; i++ {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

// RetryingFetcher retries retryable fetch errors with a fixed backoff schedule.
// A 429 with Retry-After waits the longer of the header and the scheduled delay.
type RetryingFetcher struct {
	inner  Fetcher
	delays []time.Duration
	logger *slog.Logger
}

// NewRetryingFetcher wraps inner. With no delays it is a pass-through.
func NewRetryingFetcher(inner Fetcher, delays []time.Duration, logger *slog.Logger) *RetryingFetcher {
	return &RetryingFetcher{
		inner:  inner,
		delays: delays,
		logger: logger.With("component", "retry_fetcher"),
	}
}

// Fetch attempts the request once plus one retry per configured delay.
func (f *RetryingFetcher) Fetch(ctx context.Context, rawURL string) (*types.RawResponse, error) {
	maxAttempts := len(f.delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := f.inner.Fetch(ctx, rawURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var fe *types.FetchError
		if !errors.As(err, &fe) || !fe.IsRetryable() {
			return nil, err
		}
		if attempt >= maxAttempts-1 {
			break
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}

		wait := f.delays[attempt]
		if fe.RetryAfter > wait {
			wait = fe.RetryAfter
		}
		f.logger.Info("retrying fetch",
			"url", rawURL,
			"attempt", attempt+2,
			"wait", wait,
			"error", err,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}

	return nil, lastErr
}

// Close closes the wrapped fetcher.
func (f *RetryingFetcher) Close() error {
	return f.inner.Close()
}

// Type returns the wrapped fetcher's type.
func (f *RetryingFetcher) Type() string {
	return f.inner.Type()
}
