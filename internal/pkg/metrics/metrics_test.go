package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPlacementMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOutcome(OutcomePlaced)
	m.ObserveOutcome(OutcomePlaced)
	m.ObserveOutcome(OutcomeSkipped)
	m.ObserveRun(RunSucceeded, 2, time.Second)
	m.SeatReserved()
	m.SeatReleased()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues(OutcomePlaced)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(RunSucceeded)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lastRunPlaced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.seatsReserved))

	count, err := testutil.GatherAndCount(reg, "unicluster_placement_run_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *PlacementMetrics
	assert.NotPanics(t, func() {
		m.ObserveOutcome(OutcomeFailed)
		m.ObserveRun(RunFailed, 0, time.Second)
		m.SeatReserved()
		m.SeatReleased()
	})
}
