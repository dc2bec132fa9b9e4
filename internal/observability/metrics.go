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
		Name: "askmate_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "askmate_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ContentCreated counts posted questions, answers and comments.
	ContentCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "askmate_content_created_total",
		Help: "Total number of posts created by kind",
	}, []string{"kind"})

	// AnswerVotes counts answer votes by direction.
	AnswerVotes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "askmate_answer_votes_total",
		Help: "Total number of answer votes by direction",
	}, []string{"direction"})

	// CacheLookups counts cache-aside lookups by key family and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "askmate_cache_lookups_total",
		Help: "Cache-aside lookups by key family and result (hit, miss)",
	}, []string{"family", "result"})

	// UploadsStored counts images written to the upload directory.
	UploadsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "askmate_uploads_stored_total",
		Help: "Total number of uploaded images written to disk",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
