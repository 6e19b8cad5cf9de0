package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Builds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hivedex_builds_total",
		Help: "Total record builds",
	})
	BuildErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hivedex_build_errors_total",
		Help: "Total record build failures",
	})
	ScoreDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hivedex_score_duration_seconds",
		Help:    "Trending/hot score computation duration",
		Buckets: prometheus.DefBuckets,
	})
	ReblogCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hivedex_reblog_cache_hits_total",
		Help: "Reblog count cache hits",
	})
	ReblogCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hivedex_reblog_cache_misses_total",
		Help: "Reblog count cache misses",
	})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hivedex_command_runs_total",
		Help: "Total CLI command runs",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hivedex_command_errors_total",
		Help: "Total CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(Builds, BuildErrors, ScoreDuration,
		ReblogCacheHits, ReblogCacheMisses, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveScoreDuration records one score computation duration.
func ObserveScoreDuration(d time.Duration) {
	ScoreDuration.Observe(d.Seconds())
}

// IncCommandRun counts a CLI command invocation.
func IncCommandRun(cmd string) { CommandRuns.WithLabelValues(cmd).Inc() }

// IncCommandError counts a failed CLI command invocation.
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
