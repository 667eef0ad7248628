package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/text/encoding/charmap"

	"github.com/IshaanNene/SEOCrawl/internal/config"
	"github.com/IshaanNene/SEOCrawl/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	cfg := config.DefaultConfig().Fetcher
	cfg.Timeout = 2 * time.Second
	f, err := NewHTTPFetcher(&cfg, testLogger)
	if err != nil {
		t.Fatalf("NewHTTPFetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestHTTPFetcherOK(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><title>ok</title></html>"))
	}))
	defer srv.Close()

	resp, err := newTestFetcher(t).Fetch(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if resp.StatusCode != 200 || !resp.IsSuccess() {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "<title>ok</title>") {
		t.Errorf("body = %q", resp.Body)
	}
	if resp.Size != len(resp.Body) {
		t.Errorf("size = %d, want %d", resp.Size, len(resp.Body))
	}
	if gotUA != config.DefaultUserAgent {
		t.Errorf("user agent = %q", gotUA)
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t).Fetch(context.Background(), srv.URL+"/missing")
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != 404 || fe.IsRetryable() {
		t.Errorf("got status=%d retryable=%v", fe.StatusCode, fe.IsRetryable())
	}
	ce := types.NewCrawlError(fe.URL, err)
	if ce.Message != "HTTP 404" || ce.StatusCode != 404 {
		t.Errorf("crawl error = %+v", ce)
	}
}

func TestHTTPFetcherRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t).Fetch(context.Background(), srv.URL)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !fe.IsRetryable() || fe.RetryAfter != 3*time.Second {
		t.Errorf("retryable=%v retryAfter=%v", fe.IsRetryable(), fe.RetryAfter)
	}
}

func TestHTTPFetcherDecompression(t *testing.T) {
	const page = "<html><body><p>compressed</p></body></html>"

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write([]byte(page))
	zw.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	bw.Write([]byte(page))
	bw.Close()

	tests := []struct {
		encoding string
		payload  []byte
	}{
		{"gzip", gz.Bytes()},
		{"br", br.Bytes()},
		{"", []byte(page)},
	}

	for _, tt := range tests {
		t.Run("encoding="+tt.encoding, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				if tt.encoding != "" {
					w.Header().Set("Content-Encoding", tt.encoding)
				}
				w.Write(tt.payload)
			}))
			defer srv.Close()

			resp, err := newTestFetcher(t).Fetch(context.Background(), srv.URL)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if string(resp.Body) != page {
				t.Errorf("body = %q", resp.Body)
			}
			if resp.ContentEncoding != tt.encoding {
				t.Errorf("content encoding = %q, want %q", resp.ContentEncoding, tt.encoding)
			}
		})
	}
}

func TestHTTPFetcherTranscodesCharset(t *testing.T) {
	encoded, err := charmap.ISO8859_7.NewEncoder().String("<html><body>Καλημέρα</body></html>")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-7")
		w.Write([]byte(encoded))
	}))
	defer srv.Close()

	resp, err := newTestFetcher(t).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(string(resp.Body), "Καλημέρα") {
		t.Errorf("body not transcoded: %q", resp.Body)
	}
}

func TestHTTPFetcherBodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("a"), 2048))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig().Fetcher
	cfg.MaxBodySize = 1024
	f, err := NewHTTPFetcher(&cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	_, err = f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, types.ErrBodyTooLarge) {
		t.Errorf("expected ErrBodyTooLarge, got %v", err)
	}
}

func TestHTTPFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	cfg := config.DefaultConfig().Fetcher
	cfg.Timeout = 100 * time.Millisecond
	f, err := NewHTTPFetcher(&cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	_, err = f.Fetch(context.Background(), srv.URL)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != 0 || fe.Err == nil {
		t.Errorf("expected transport error, got %+v", fe)
	}
	if !fe.IsRetryable() {
		t.Error("timeout should be retryable")
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 5 * time.Second},
		{"10", 10 * time.Second},
		{"600", 2 * time.Minute},
		{"garbage", 5 * time.Second},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.header); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

type flakyFetcher struct {
	calls    atomic.Int32
	failures int32
	err      error
}

func (f *flakyFetcher) Fetch(ctx context.Context, rawURL string) (*types.RawResponse, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, f.err
	}
	return &types.RawResponse{URL: rawURL, StatusCode: 200}, nil
}

func (f *flakyFetcher) Close() error { return nil }
func (f *flakyFetcher) Type() string { return "flaky" }

func TestRetryingFetcher(t *testing.T) {
	delays := []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}

	t.Run("recovers after retryable errors", func(t *testing.T) {
		inner := &flakyFetcher{failures: 2, err: &types.FetchError{URL: "u", StatusCode: 503, Retryable: true}}
		resp, err := NewRetryingFetcher(inner, delays, testLogger).Fetch(context.Background(), "u")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if resp.StatusCode != 200 || inner.calls.Load() != 3 {
			t.Errorf("status=%d calls=%d", resp.StatusCode, inner.calls.Load())
		}
	})

	t.Run("gives up after schedule", func(t *testing.T) {
		inner := &flakyFetcher{failures: 10, err: &types.FetchError{URL: "u", StatusCode: 500, Retryable: true}}
		_, err := NewRetryingFetcher(inner, delays, testLogger).Fetch(context.Background(), "u")
		if err == nil {
			t.Fatal("expected error")
		}
		if inner.calls.Load() != 4 {
			t.Errorf("calls = %d, want 4", inner.calls.Load())
		}
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		inner := &flakyFetcher{failures: 10, err: &types.FetchError{URL: "u", StatusCode: 404}}
		_, err := NewRetryingFetcher(inner, delays, testLogger).Fetch(context.Background(), "u")
		if err == nil || inner.calls.Load() != 1 {
			t.Errorf("err=%v calls=%d", err, inner.calls.Load())
		}
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		inner := &flakyFetcher{failures: 10, err: &types.FetchError{URL: "u", StatusCode: 503, Retryable: true}}
		_, err := NewRetryingFetcher(inner, DefaultRetryDelays(), testLogger).Fetch(ctx, "u")
		if err == nil || inner.calls.Load() != 1 {
			t.Errorf("err=%v calls=%d", err, inner.calls.Load())
		}
	})
}

func TestRetryDelays(t *testing.T) {
	got := RetryDelays(4)
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(RetryDelays(0)) != 0 {
		t.Error("RetryDelays(0) should be empty")
	}
}
