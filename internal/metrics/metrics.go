// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	searchCallsTotal           *prometheus.CounterVec
	searchResultsTotal         prometheus.Counter
	searchLatencySeconds       prometheus.Histogram
	spiritsExtractedTotal      *prometheus.CounterVec
	spiritsStoredTotal         *prometheus.CounterVec
	spiritsDuplicatesTotal     *prometheus.CounterVec
	catalogPagesTotal          *prometheus.CounterVec
	catalogBytesTotal          *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	jobsTotal                  *prometheus.CounterVec
	activeWorkers              prometheus.Gauge
	rateLimitDelaysSeconds     *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		searchCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spirits_search_calls_total",
				Help: "Search API calls, labeled by outcome (ok, cached, rate_limited, forbidden, quota, error).",
			},
			[]string{"outcome"},
		)

		searchResultsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "spirits_search_results_total",
				Help: "Search results returned by the search API.",
			},
		)

		searchLatencySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "spirits_search_latency_seconds",
				Help:    "Latency of uncached search API calls.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		)

		spiritsExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spirits_extracted_total",
				Help: "Spirit records extracted from search results and catalog pages, labeled by source.",
			},
			[]string{"source"},
		)

		spiritsStoredTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spirits_stored_total",
				Help: "Spirits inserted into the store, labeled by category.",
			},
			[]string{"category"},
		)

		spiritsDuplicatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spirits_duplicates_total",
				Help: "Records rejected as duplicates, labeled by reason class.",
			},
			[]string{"reason"},
		)

		catalogPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spirits_catalog_pages_total",
				Help: "Catalog pages fetched, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		catalogBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spirits_catalog_bytes_total",
				Help: "Bytes fetched from catalog pages, labeled by site.",
			},
			[]string{"site"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		jobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spirits_jobs_total",
				Help: "Discovery jobs finished, labeled by status.",
			},
			[]string{"status"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "spirits_active_workers",
				Help: "Number of workers currently running a discovery job.",
			},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spirits_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations, labeled by key.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"key"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSearch records one search API call. Cached responses skip the latency histogram.
func ObserveSearch(outcome string, results int, duration time.Duration) {
	searchCallsTotal.WithLabelValues(outcome).Inc()
	if results > 0 {
		searchResultsTotal.Add(float64(results))
	}
	if outcome != "cached" && duration > 0 {
		searchLatencySeconds.Observe(duration.Seconds())
	}
}

// ObserveExtracted counts records extracted from the given source ("search" or "catalog").
func ObserveExtracted(source string, n int) {
	if n > 0 {
		spiritsExtractedTotal.WithLabelValues(source).Add(float64(n))
	}
}

// ObserveStored counts a stored spirit.
func ObserveStored(category string) {
	if category == "" {
		category = "Other"
	}
	spiritsStoredTotal.WithLabelValues(category).Inc()
}

// ObserveDuplicate counts a record rejected as a duplicate.
func ObserveDuplicate(reason string) {
	spiritsDuplicatesTotal.WithLabelValues(reason).Inc()
}

// ObserveCatalogPage increments the catalog fetch metrics.
func ObserveCatalogPage(site string, status string, bytesFetched int) {
	sanitizedSite := SanitizeSite(site)
	catalogPagesTotal.WithLabelValues(sanitizedSite, status).Inc()
	if bytesFetched > 0 {
		catalogBytesTotal.WithLabelValues(sanitizedSite).Add(float64(bytesFetched))
	}
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveJob increments the job counter for the given status.
func ObserveJob(status string) {
	jobsTotal.WithLabelValues(status).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	activeWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	activeWorkers.Dec()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(key string, duration time.Duration) {
	rateLimitDelaysSeconds.WithLabelValues(key).Observe(duration.Seconds())
}
