package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors exposes solver and generation activity to Prometheus.
type Collectors struct {
	registry *prometheus.Registry

	solves        *prometheus.CounterVec
	solveDuration prometheus.Histogram
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	recycledDays  prometheus.Counter
	menuCost      *prometheus.GaugeVec
}

// NewCollectors creates the collectors on a private registry that also
// carries the Go runtime and process collectors.
func NewCollectors() *Collectors {
	registry := prometheus.NewRegistry()

	c := &Collectors{
		registry: registry,
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menu_solver_solves_total",
				Help: "Single-day model solves by solver status",
			},
			[]string{"status"},
		),
		solveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "menu_solver_solve_duration_seconds",
			Help:    "Time spent solving a single day's model",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menu_generation_runs_total",
				Help: "Menu generation runs by chosen price source and outcome",
			},
			[]string{"source", "success"},
		),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "menu_generation_duration_seconds",
			Help:    "Wall time of a complete menu generation",
			Buckets: prometheus.ExponentialBuckets(0.01, 3, 10),
		}),
		recycledDays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "menu_recycled_days_total",
			Help: "Days filled by repeating an earlier day",
		}),
		menuCost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "menu_last_total_cost",
				Help: "Total cost of the last successful menu per price source",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		c.solves, c.solveDuration, c.runs, c.runDuration, c.recycledDays, c.menuCost,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveSolve records one day solve.
func (c *Collectors) ObserveSolve(status string, elapsed time.Duration) {
	c.solves.WithLabelValues(status).Inc()
	c.solveDuration.Observe(elapsed.Seconds())
}

// ObserveRun records a finished generation.
func (c *Collectors) ObserveRun(r GenerationRun) {
	source := r.PriceSource
	if source == "" {
		source = "none"
	}
	c.runs.WithLabelValues(source, strconv.FormatBool(r.Success)).Inc()
	c.runDuration.Observe(r.Latency.Seconds())
	c.recycledDays.Add(float64(r.RecycledDays))
	if r.Success {
		c.menuCost.WithLabelValues(source).Set(r.TotalCost)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
