package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OptimizeRuns counts optimization runs by outcome
	OptimizeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimize_runs_total", Help: "Optimization runs by outcome."},
		[]string{"outcome"},
	)
	// SolveDuration tracks end-to-end solve times in seconds
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimize_solve_duration_seconds", Help: "End-to-end solve duration in seconds.", Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}},
	)
	// SearchIterations tracks local-search iterations per run
	SearchIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimize_search_iterations", Help: "Local-search iterations per run.", Buckets: []float64{100, 1000, 10000, 100000, 1000000}},
	)
	// DistanceReductionPct tracks the per-run distance improvement
	DistanceReductionPct = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimize_distance_reduction_pct", Help: "Distance reduction over baseline, percent.", Buckets: []float64{0, 5, 10, 20, 30, 40, 50}},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizeRuns)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(SearchIterations)
		Registry.MustRegister(DistanceReductionPct)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
