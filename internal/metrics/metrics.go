package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the optimizer
	Registry = prometheus.NewRegistry()

	// SolveRuns counts solver runs by skill and outcome
	SolveRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solve_runs_total", Help: "Solver runs by skill and outcome."},
		[]string{"skill", "outcome"},
	)
	// SolveDuration records end-to-end solve durations per skill
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "solve_duration_seconds", Help: "Solve duration in seconds.", Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300}},
		[]string{"skill"},
	)

	// ScheduledOrders counts work orders placed on a tour, by skill
	ScheduledOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "scheduled_orders_total", Help: "Work orders scheduled, by skill."},
		[]string{"skill"},
	)
	// DroppedOrders counts work orders left unscheduled, by skill and reason
	DroppedOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dropped_orders_total", Help: "Work orders dropped, by skill and reason."},
		[]string{"skill", "reason"},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(SolveRuns)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(ScheduledOrders)
		Registry.MustRegister(DroppedOrders)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
