package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordServed(t *testing.T) {
	before := testutil.ToFloat64(RecommendServed.WithLabelValues("test_served"))

	RecordServed("test_served", 3)
	RecordServed("test_served", 0)
	RecordServed("test_served", -2)

	got := testutil.ToFloat64(RecommendServed.WithLabelValues("test_served")) - before
	if got != 3 {
		t.Errorf("served delta = %v, want 3", got)
	}
}

func TestRecordFallbackAndCache(t *testing.T) {
	fb := testutil.ToFloat64(RecommendFallbacks.WithLabelValues("test_timeout"))
	hit := testutil.ToFloat64(CacheRequests.WithLabelValues("test_cache", "hit"))
	miss := testutil.ToFloat64(CacheRequests.WithLabelValues("test_cache", "miss"))

	RecordFallback("test_timeout")
	RecordFallback("test_timeout")
	RecordCacheHit("test_cache")
	RecordCacheMiss("test_cache")
	RecordCacheMiss("test_cache")

	tests := []struct {
		name  string
		after float64
		want  float64
	}{
		{"fallback", testutil.ToFloat64(RecommendFallbacks.WithLabelValues("test_timeout")) - fb, 2},
		{"hit", testutil.ToFloat64(CacheRequests.WithLabelValues("test_cache", "hit")) - hit, 1},
		{"miss", testutil.ToFloat64(CacheRequests.WithLabelValues("test_cache", "miss")) - miss, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.after != tt.want {
				t.Errorf("delta = %v, want %v", tt.after, tt.want)
			}
		})
	}
}

func TestRecordJob(t *testing.T) {
	ok := testutil.ToFloat64(JobRuns.WithLabelValues("test_job", "success"))
	failed := testutil.ToFloat64(JobRuns.WithLabelValues("test_job", "error"))

	RecordJob("test_job", nil)
	RecordJob("test_job", errors.New("boom"))

	if d := testutil.ToFloat64(JobRuns.WithLabelValues("test_job", "success")) - ok; d != 1 {
		t.Errorf("success delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(JobRuns.WithLabelValues("test_job", "error")) - failed; d != 1 {
		t.Errorf("error delta = %v, want 1", d)
	}
}

func TestRecordHTTPUnmatchedRoute(t *testing.T) {
	RecordHTTP("GET", "", 404, 10*time.Millisecond)
	RecordHTTP("GET", "/api/ping", 200, time.Millisecond)

	if n := testutil.CollectAndCount(HTTPRequestDuration, "lumen_http_request_duration_seconds"); n < 2 {
		t.Errorf("series = %d, want at least 2", n)
	}
}
