package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the planner.
	Registry = prometheus.NewRegistry()

	// SearchIterations counts GLS iterations by acceptance outcome.
	SearchIterations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gls_iterations_total", Help: "GLS iterations by outcome."},
		[]string{"acceptance", "outcome"},
	)
	// BestCost is the objective of the best solution of the latest run.
	BestCost = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "gls_best_cost", Help: "Objective value of the best solution found."},
	)
	// PenaltyIncrements counts segment penalty increments.
	PenaltyIncrements = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "gls_penalty_increments_total", Help: "Road segment penalty increments."},
	)
	// MissingSegments counts consecutive route pairs without a road segment.
	MissingSegments = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "gls_missing_segments_total", Help: "Route legs with no matching road segment."},
	)
	// RunDuration records wall time of complete runs in seconds.
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "gls_run_duration_seconds", Help: "GLS run duration in seconds.", Buckets: prometheus.DefBuckets},
	)
)

var regOnce sync.Once

// RegisterDefault registers the planner collectors on Registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(SearchIterations)
		Registry.MustRegister(BestCost)
		Registry.MustRegister(PenaltyIncrements)
		Registry.MustRegister(MissingSegments)
		Registry.MustRegister(RunDuration)
		Registry.MustRegister(collectors.NewGoCollector())
	})
}
