package observability

// Prometheus collectors for the navigator. The HTTP* collectors are fed by
// middleware.Metrics; the rest cover what happens behind the handlers.
//
// Label values are fixed small sets (route template, outcome, kind) so
// cardinality stays bounded regardless of user input.

import "github.com/prometheus/client_golang/prometheus"

var (
	// HTTPRequests counts requests by method, route and status code.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration observes request latency by method and route.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "navigator_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPInflight is the number of requests being served.
	HTTPInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "navigator_http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// HTTPResponseSize observes response body sizes. Search and page
	// listings dominate, so buckets stop at a few MiB.
	HTTPResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "navigator_http_response_size_bytes",
			Help:    "Size of HTTP responses in bytes.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8), // 256B..4MiB
		},
		[]string{"method", "route"},
	)

	// UploadBytes observes the declared size of CSV uploads.
	UploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "navigator_upload_size_bytes",
			Help:    "Declared size of resource CSV uploads in bytes.",
			Buckets: prometheus.ExponentialBuckets(1<<10, 4, 8), // 1KiB..16MiB
		},
	)

	// RateLimited counts requests rejected with 429, by limiter name.
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_rate_limited_total",
			Help: "Total number of requests rejected by a rate limiter.",
		},
		[]string{"limiter"},
	)

	// IndexRecords is the record count of the current snapshot.
	IndexRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "navigator_index_records",
			Help: "Number of resource records in the current index.",
		},
	)

	// LoadsTotal counts load attempts by outcome (ready|failed|rejected).
	LoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_loads_total",
			Help: "Total number of resource file loads by outcome.",
		},
		[]string{"outcome"},
	)

	// RowsSkipped counts rows dropped because they carried no name.
	RowsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "navigator_rows_skipped_total",
			Help: "Total number of input rows skipped for lacking a name.",
		},
	)

	// SearchDuration observes query latency by kind (resources|pages|both).
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "navigator_search_duration_seconds",
			Help:    "Duration of index searches in seconds.",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
		[]string{"kind"},
	)

	// ResolveTotal counts deep-link resolutions by outcome (ok|unknown_type).
	ResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_resolve_total",
			Help: "Total number of deep-link resolutions by outcome.",
		},
		[]string{"outcome"},
	)
)

// Load outcomes.
const (
	OutcomeReady    = "ready"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

func init() {
	prometheus.MustRegister(
		HTTPRequests, HTTPDuration, HTTPInflight, HTTPResponseSize, UploadBytes, RateLimited,
		IndexRecords, LoadsTotal, RowsSkipped, SearchDuration, ResolveTotal,
	)
}
