package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	m := New(nil)

	assert.NotNil(t, m.Registry)
	assert.NotNil(t, m.RunsTotal)
	assert.NotNil(t, m.LegRequestsTotal)
	assert.NotNil(t, m.OccupancyFetches)
	assert.NotNil(t, m.logger)
}

func TestObserveLeg(t *testing.T) {
	m := New(nil)

	m.ObserveLeg("driving", "ok", 120*time.Millisecond)
	m.ObserveLeg("driving", "ok", 80*time.Millisecond)
	m.ObserveLeg("transit", "timeout", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LegRequestsTotal.WithLabelValues("driving", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LegRequestsTotal.WithLabelValues("transit", "timeout")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.LegRequestDuration))
}

func TestObserveRunAndOccupancy(t *testing.T) {
	m := New(nil)

	m.ObserveRun("concurrent", "ok", time.Second)
	m.ObserveRun("sequential", "no_viable_candidate", time.Second)
	m.ObserveOccupancyFetch("dortmund", "ok")
	m.ObserveCacheLookup("memory", true)
	m.ObserveCacheLookup("memory", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("concurrent", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("sequential", "no_viable_candidate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OccupancyFetches.WithLabelValues("dortmund", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OccupancyCacheHits.WithLabelValues("memory", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OccupancyCacheHits.WithLabelValues("memory", "miss")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLeg("driving", "ok", time.Millisecond)
		m.ObserveRun("concurrent", "ok", time.Millisecond)
		m.ObserveOccupancyFetch("dortmund", "ok")
		m.ObserveCacheLookup("redis", true)
	})
}

func TestStartDBStatsCollector_NilDB(t *testing.T) {
	m := New(nil)
	m.StartDBStatsCollector(nil, time.Second)
	assert.False(t, m.collectorStarted.Load())
	m.Shutdown()
}
