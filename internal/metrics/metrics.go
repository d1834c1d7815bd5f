package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every application metric
const Namespace = "iplocator"

var sizeBuckets = prometheus.ExponentialBuckets(100, 10, 7)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP server, labelled by chi route pattern
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Database
	DatastoreQueriesTotal  *prometheus.CounterVec
	DatastoreQueryDuration *prometheus.HistogramVec

	// Location cache
	CacheLookupsTotal *prometheus.CounterVec

	// Upstream geolocation API
	UpstreamRequestDuration *prometheus.HistogramVec

	// Domain outcomes
	LocationResolutionsTotal *prometheus.CounterVec
	UserOperationsTotal      *prometheus.CounterVec

	reg prometheus.Registerer
}

// New creates all collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer in main and a fresh
// prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint", "status"}),

		HTTPRequestSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   sizeBuckets,
		}, []string{"method", "endpoint"}),

		HTTPResponseSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   sizeBuckets,
		}, []string{"method", "endpoint", "status"}),

		DatastoreQueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "db",
			Name:      "queries_total",
			Help:      "Database operations by driver, operation and status (success, not_found, error)",
		}, []string{"datastore", "operation", "status"}),

		DatastoreQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database operation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"datastore", "operation"}),

		CacheLookupsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Location cache lookups by backend and result (hit, miss, error)",
		}, []string{"cache", "result"}),

		UpstreamRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Geolocation API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "status", "method"}),

		LocationResolutionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "location_resolutions_total",
			Help:      "IP resolutions by outcome (cache_hit, store_hit, fetched, or an error kind)",
		}, []string{"result"}),

		UserOperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "user_operations_total",
			Help:      "User write operations by operation and outcome",
		}, []string{"operation", "result"}),
	}
}

// RegisterDBStats exports the connection pool statistics of db
// (go_sql_open_connections and friends) labelled with name.
func (m *Metrics) RegisterDBStats(db *sql.DB, name string) error {
	if m == nil || m.reg == nil {
		return nil
	}
	return m.reg.Register(collectors.NewDBStatsCollector(db, name))
}
