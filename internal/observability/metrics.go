// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipebox_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheLookups counts cache-aside lookups by key family and result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_cache_lookups_total",
		Help: "Total cache lookups by key family and result",
	}, []string{"family", "result"})

	// RecipeSearches counts recipe searches by result shape (all, filtered, author_profile).
	RecipeSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_recipe_searches_total",
		Help: "Total recipe searches by result shape",
	}, []string{"shape"})

	// SearchCriteria records how many criteria each filtered search combined.
	SearchCriteria = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recipebox_search_criteria_count",
		Help:    "Number of criteria combined per recipe search",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
	})

	// ImageOperations counts object storage calls by operation and outcome.
	ImageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_image_operations_total",
		Help: "Total object storage operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// UserLifecycle counts registrations, logins and soft deletes.
	UserLifecycle = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipebox_user_lifecycle_total",
		Help: "Total user lifecycle events by event type",
	}, []string{"event"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}

// Outcome maps an error to the outcome label used by the counters above.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
