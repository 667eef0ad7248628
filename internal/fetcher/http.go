package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"

	"github.com/IshaanNene/SEOCrawl/internal/config"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// HTTPFetcher implements Fetcher using net/http.
type HTTPFetcher struct {
	client *http.Client
	cfg    *config.FetcherConfig
	logger *slog.Logger
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg *config.FetcherConfig, logger *slog.Logger) (*HTTPFetcher, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: max(1, cfg.MaxIdleConns/2),
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.TLSInsecure,
		},
		// Decompression is done in decompressReader so brotli is covered and
		// the declared Content-Encoding survives on the response.
		DisableCompression: true,
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !cfg.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= cfg.MaxRedirects {
			return fmt.Errorf("max redirects (%d) reached", cfg.MaxRedirects)
		}
		return nil
	}

	client := &http.Client{
		Transport:     transport,
		Jar:           jar,
		Timeout:       cfg.Timeout,
		CheckRedirect: redirectPolicy,
	}

	return &HTTPFetcher{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "http_fetcher"),
	}, nil
}

// Fetch executes a GET request and returns the decoded response.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*types.RawResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	ua := f.cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	httpReq.Header.Set("User-Agent", ua)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9,el;q=0.8")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, &types.FetchError{
			URL:       rawURL,
			Err:       err,
			Retryable: isRetryableError(err),
		}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(httpResp.Body, 4096))
		fe := &types.FetchError{URL: rawURL, StatusCode: httpResp.StatusCode}
		switch {
		case httpResp.StatusCode == http.StatusTooManyRequests:
			fe.Retryable = true
			fe.RetryAfter = parseRetryAfter(httpResp.Header.Get("Retry-After"))
		case httpResp.StatusCode >= 500:
			fe.Retryable = true
		}
		return nil, fe
	}

	reader, err := decompressReader(httpResp, httpResp.Body)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: fmt.Errorf("decompress: %w", err)}
	}
	if f.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, f.cfg.MaxBodySize+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: isRetryableError(err)}
	}
	if f.cfg.MaxBodySize > 0 && int64(len(body)) > f.cfg.MaxBodySize {
		return nil, &types.FetchError{URL: rawURL, Err: types.ErrBodyTooLarge}
	}
	elapsed := time.Since(start)

	size := len(body)
	body = toUTF8(body, httpResp.Header.Get("Content-Type"))

	resp := types.NewRawResponse(rawURL, httpResp, body, size, elapsed)

	f.logger.Debug("fetch complete",
		"url", rawURL,
		"status", resp.StatusCode,
		"size", size,
		"encoding", resp.ContentEncoding,
		"duration", elapsed,
	)

	return resp, nil
}

// Close releases resources.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

// decompressReader wraps a reader with the decompressor named by
// Content-Encoding. gzip, deflate and brotli (br) are supported.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip", "x-gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

// toUTF8 transcodes markup bodies from their declared or sniffed charset.
// Bodies that are neither HTML nor carry an explicit charset pass through.
func toUTF8(body []byte, contentType string) []byte {
	ct := strings.ToLower(contentType)
	if !strings.Contains(ct, "html") && !strings.Contains(ct, "charset=") {
		return body
	}
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if enc == nil || name == "utf-8" {
		return body
	}
	if !certain && utf8.Valid(body) {
		return body
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return out
}

// isRetryableError checks if a network error warrants a retry.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNRESET) ||
			errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return true
		}
	}
	return false
}

// parseRetryAfter parses the Retry-After header value.
// Supports both integer seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil {
		if secs > 120 {
			secs = 120
		}
		if secs < 0 {
			secs = 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		d := time.Until(t)
		if d < 0 {
			return time.Second
		}
		if d > 2*time.Minute {
			return 2 * time.Minute
		}
		return d
	}
	return 5 * time.Second
}
