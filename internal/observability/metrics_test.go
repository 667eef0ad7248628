package observability

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.PageCrawled(time.Second, 10)
	m.PageSkipped()
	m.PageFailed(ErrorTransport)
	m.SetFrontier(3)
	m.WorkerStarted()
	m.WorkerFinished()
}

func TestErrorKind(t *testing.T) {
	tests := map[int]string{
		0:   ErrorTransport,
		404: ErrorHTTP4xx,
		503: ErrorHTTP5xx,
		204: ErrorHTTPOther,
	}
	for status, want := range tests {
		if got := ErrorKind(status); got != want {
			t.Errorf("ErrorKind(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestHandlerExposesCrawlMetrics(t *testing.T) {
	m := NewMetrics(testLogger)
	m.PageCrawled(300*time.Millisecond, 2048)
	m.PageCrawled(time.Second, 4096)
	m.PageFailed(ErrorHTTP4xx)
	m.SetFrontier(7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		"seocrawl_pages_total 2",
		`seocrawl_errors_total{kind="http_4xx"} 1`,
		"seocrawl_frontier_pending 7",
		"seocrawl_fetch_duration_seconds_count 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
