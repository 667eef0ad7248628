package fetcher

import (
	"context"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// Fetcher retrieves one page.
type Fetcher interface {
	// Fetch retrieves the content at rawURL. A non-2xx status is reported as
	// a *types.FetchError carrying the status code.
	Fetch(ctx context.Context, rawURL string) (*types.RawResponse, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}
