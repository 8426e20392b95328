package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumen_recommend_items_served_total",
			Help: "Number of recommended items returned, by strategy label",
		},
		[]string{"strategy"},
	)

	RecommendFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumen_recommend_fallbacks_total",
			Help: "Number of times a recommendation path degraded",
		},
		[]string{"reason"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lumen_recommend_duration_seconds",
			Help:    "Latency of recommendation requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumen_cache_requests_total",
			Help: "In-memory cache lookups by cache name and result",
		},
		[]string{"cache", "result"},
	)

	BehaviorRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumen_behavior_recorded_total",
			Help: "Behavior events written, by action type",
		},
		[]string{"action"},
	)

	ProfileRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lumen_profile_rebuild_duration_seconds",
			Help:    "Duration of interest profile rebuilds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ProfileRebuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lumen_profile_rebuild_errors_total",
			Help: "Interest profile rebuilds that failed",
		},
	)

	RebuildQueueDeferred = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lumen_rebuild_queue_deferred_total",
			Help: "Rebuild tasks deferred to the dirty set because the queue was full",
		},
	)

	ContentChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumen_content_changes_total",
			Help: "Content change events consumed from binlog, by table and type",
		},
		[]string{"table", "type"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lumen_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumen_job_runs_total",
			Help: "Cron job executions by job and status",
		},
		[]string{"job", "status"},
	)
)

func RecordCacheHit(cache string) {
	CacheRequests.WithLabelValues(cache, "hit").Inc()
}

func RecordCacheMiss(cache string) {
	CacheRequests.WithLabelValues(cache, "miss").Inc()
}

func RecordRecommend(strategy string, duration time.Duration) {
	RecommendDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

func RecordFallback(reason string) {
	RecommendFallbacks.WithLabelValues(reason).Inc()
}

func RecordServed(strategy string, n int) {
	if n <= 0 {
		return
	}
	RecommendServed.WithLabelValues(strategy).Add(float64(n))
}

func RecordHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func RecordJob(job string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	JobRuns.WithLabelValues(job, status).Inc()
}
