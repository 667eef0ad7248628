package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Error kinds used as the "kind" label of seocrawl_errors_total.
const (
	ErrorHTTP4xx   = "http_4xx"
	ErrorHTTP5xx   = "http_5xx"
	ErrorHTTPOther = "http_other"
	ErrorTransport = "transport"
	ErrorStorage   = "storage"
)

// Metrics holds the crawler's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	pagesTotal    prometheus.Counter
	skippedTotal  prometheus.Counter
	errorsTotal   *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	pageBytes     prometheus.Histogram
	frontierSize  prometheus.Gauge
	activeWorkers prometheus.Gauge

	logger *slog.Logger
}

// NewMetrics creates and registers the crawl collectors.
func NewMetrics(logger *slog.Logger) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		pagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seocrawl_pages_total",
			Help: "Pages fetched, extracted and persisted.",
		}),
		skippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seocrawl_skipped_total",
			Help: "URLs taken from the frontier but not fetched because they are not documents.",
		}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seocrawl_errors_total",
			Help: "Failed pages by kind.",
		}, []string{"kind"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seocrawl_fetch_duration_seconds",
			Help:    "Duration of page fetches.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 30},
		}),
		pageBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seocrawl_page_size_bytes",
			Help:    "Decompressed size of fetched pages.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		frontierSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seocrawl_frontier_pending",
			Help: "URLs waiting in the frontier.",
		}),
		activeWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seocrawl_active_workers",
			Help: "Workers currently processing a URL.",
		}),
		logger: logger.With("component", "metrics"),
	}
	reg.MustRegister(
		m.pagesTotal,
		m.skippedTotal,
		m.errorsTotal,
		m.fetchDuration,
		m.pageBytes,
		m.frontierSize,
		m.activeWorkers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// PageCrawled records one persisted page.
func (m *Metrics) PageCrawled(fetch time.Duration, size int) {
	if m == nil {
		return
	}
	m.pagesTotal.Inc()
	m.fetchDuration.Observe(fetch.Seconds())
	m.pageBytes.Observe(float64(size))
}

// PageSkipped records a URL that was not fetched.
func (m *Metrics) PageSkipped() {
	if m == nil {
		return
	}
	m.skippedTotal.Inc()
}

// PageFailed records a failed page by kind.
func (m *Metrics) PageFailed(kind string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(kind).Inc()
}

// SetFrontier sets the pending frontier size.
func (m *Metrics) SetFrontier(n int) {
	if m == nil {
		return
	}
	m.frontierSize.Set(float64(n))
}

// WorkerStarted and WorkerFinished track busy workers.
func (m *Metrics) WorkerStarted() {
	if m == nil {
		return
	}
	m.activeWorkers.Inc()
}

func (m *Metrics) WorkerFinished() {
	if m == nil {
		return
	}
	m.activeWorkers.Dec()
}

// ErrorKind maps an HTTP status (0 for transport failures) to an error kind.
func ErrorKind(status int) string {
	switch {
	case status == 0:
		return ErrorTransport
	case status >= 400 && status < 500:
		return ErrorHTTP4xx
	case status >= 500:
		return ErrorHTTP5xx
	default:
		return ErrorHTTPOther
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// StartServer serves metrics on port until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.logger.Info("metrics server starting", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return srv
}
