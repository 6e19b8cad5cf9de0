package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	Builds.Inc()
	BuildErrors.Inc()
	ReblogCacheHits.Inc()
	ReblogCacheMisses.Inc()
	IncCommandRun("build")
	IncCommandError("build")
	ObserveScoreDuration(1500 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"hivedex_builds_total",
		"hivedex_build_errors_total",
		"hivedex_score_duration_seconds",
		"hivedex_reblog_cache_hits_total",
		"hivedex_reblog_cache_misses_total",
		"hivedex_command_runs_total",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
