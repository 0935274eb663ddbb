package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded per application during a placement run
const (
	OutcomePlaced    = "placed"
	OutcomeNotPlaced = "not_placed"
	OutcomeSkipped   = "skipped"
	OutcomeConflict  = "conflict"
	OutcomeFailed    = "failed"
)

// Run results
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// PlacementMetrics records placement engine activity. A nil *PlacementMetrics
// is valid and records nothing.
type PlacementMetrics struct {
	outcomes      *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	seatsReserved prometheus.Counter
	seatsReleased prometheus.Counter
	lastRunPlaced prometheus.Gauge
}

// New creates the placement metrics and registers them when registerer is non-nil
func New(registerer prometheus.Registerer) *PlacementMetrics {
	m := &PlacementMetrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unicluster_placement_applications_total",
				Help: "Applications processed by placement runs, by outcome",
			},
			[]string{"outcome"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unicluster_placement_runs_total",
				Help: "Automatic placement runs, by result",
			},
			[]string{"result"},
		),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "unicluster_placement_run_duration_seconds",
			Help:    "Time taken by an automatic placement run",
			Buckets: prometheus.DefBuckets,
		}),
		seatsReserved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unicluster_offering_seats_reserved_total",
			Help: "Seats taken on university offerings",
		}),
		seatsReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unicluster_offering_seats_released_total",
			Help: "Seats given back on university offerings",
		}),
		lastRunPlaced: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "unicluster_placement_last_run_placed",
			Help: "Placements created by the most recent automatic run",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.outcomes,
			m.runs,
			m.runDuration,
			m.seatsReserved,
			m.seatsReleased,
			m.lastRunPlaced,
		)
	}

	return m
}

// ObserveOutcome counts one application outcome
func (m *PlacementMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

// ObserveRun records a finished run
func (m *PlacementMetrics) ObserveRun(result string, placed int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.Observe(elapsed.Seconds())
	if result == RunSucceeded {
		m.lastRunPlaced.Set(float64(placed))
	}
}

// SeatReserved counts a seat taken by an automatic run or a manual placement
func (m *PlacementMetrics) SeatReserved() {
	if m == nil {
		return
	}
	m.seatsReserved.Inc()
}

// SeatReleased counts a seat given back
func (m *PlacementMetrics) SeatReleased() {
	if m == nil {
		return
	}
	m.seatsReleased.Inc()
}
