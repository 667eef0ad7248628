package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrInvalidURL        = errors.New("invalid URL")
	ErrNotCrawlable      = errors.New("URL is not a crawlable document")
	ErrEmptyResponse     = errors.New("empty response body")
	ErrBodyTooLarge      = errors.New("response body exceeds size limit")
	ErrBudgetExhausted   = errors.New("page budget exhausted")
	ErrCrawlStopped      = errors.New("crawl has been stopped")
	ErrInvalidTransition = errors.New("invalid crawl state transition")
	ErrNoCheckpoint      = errors.New("no checkpoint found")
)

// FetchError wraps errors that occur during fetching. Either StatusCode is set
// (the server answered with a non-2xx status) or Err carries the transport cause.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
	RetryAfter time.Duration // populated from Retry-After header on HTTP 429
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		if e.Err != nil {
			return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("fetch error for %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ParseError wraps a failure inside one extraction section.
type ParseError struct {
	URL     string
	Section string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s (section=%s): %v", e.URL, e.Section, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur while persisting or loading artifacts.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("storage error (%s %s): %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// CrawlError is the recorded outcome of one failed fetch. It is appended to the
// crawl result and never mutated.
type CrawlError struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"error"`
}

// NewCrawlError converts a fetch failure into its recorded form.
func NewCrawlError(url string, err error) CrawlError {
	var fe *FetchError
	if errors.As(err, &fe) && fe.StatusCode > 0 {
		return CrawlError{
			URL:        url,
			StatusCode: fe.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", fe.StatusCode),
		}
	}
	if errors.As(err, &fe) && fe.Err != nil {
		return CrawlError{URL: url, Message: fe.Err.Error()}
	}
	return CrawlError{URL: url, Message: err.Error()}
}
