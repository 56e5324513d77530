// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics - все коллекторы сервиса на собственном registry
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RunsTotal          *prometheus.CounterVec
	RunDuration        *prometheus.HistogramVec
	LegRequestsTotal   *prometheus.CounterVec
	LegRequestDuration *prometheus.HistogramVec
	OccupancyFetches   *prometheus.CounterVec
	OccupancyCacheHits *prometheus.CounterVec

	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge

	logger *zap.Logger

	collectorStarted atomic.Bool
	cancel           context.CancelFunc
	wg               sync.WaitGroup
}

// New создает и регистрирует метрики
func New(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchroute_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matchroute_http_request_duration_seconds",
			Help:    "HTTP request latency distribution",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchroute_recommend_runs_total",
			Help: "Recommendation runs by orchestration path and outcome",
		}, []string{"path", "outcome"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matchroute_recommend_run_duration_seconds",
			Help:    "Wall time of one recommendation run",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"path"}),
		LegRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchroute_directions_leg_requests_total",
			Help: "Directions leg requests by mode and outcome",
		}, []string{"mode", "outcome"}),
		LegRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matchroute_directions_leg_duration_seconds",
			Help:    "Directions leg request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		OccupancyFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchroute_occupancy_fetch_total",
			Help: "Live occupancy fetches by source and outcome",
		}, []string{"source", "outcome"}),
		OccupancyCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchroute_occupancy_cache_lookups_total",
			Help: "Occupancy cache lookups by layer and result",
		}, []string{"layer", "result"}),
		DBConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchroute_db_connections_open",
			Help: "Number of open audit database connections",
		}),
		DBConnectionsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchroute_db_connections_in_use",
			Help: "Number of audit database connections currently in use",
		}),
		logger: logger,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RunsTotal,
		m.RunDuration,
		m.LegRequestsTotal,
		m.LegRequestDuration,
		m.OccupancyFetches,
		m.OccupancyCacheHits,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
	)

	return m
}

// ObserveLeg records one directions call. outcome is "ok" or the failure kind.
func (m *Metrics) ObserveLeg(mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.LegRequestsTotal.WithLabelValues(mode, outcome).Inc()
	m.LegRequestDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// ObserveRun records one finished orchestration run.
func (m *Metrics) ObserveRun(path, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(path, outcome).Inc()
	m.RunDuration.WithLabelValues(path).Observe(d.Seconds())
}

func (m *Metrics) ObserveOccupancyFetch(source, outcome string) {
	if m == nil {
		return
	}
	m.OccupancyFetches.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) ObserveCacheLookup(layer string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.OccupancyCacheHits.WithLabelValues(layer, result).Inc()
}

// StartDBStatsCollector periodically copies pool stats into gauges.
// Repeated calls are no-ops; Shutdown stops the collector.
func (m *Metrics) StartDBStatsCollector(db *sql.DB, interval time.Duration) {
	if db == nil {
		return
	}
	if !m.collectorStarted.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.wg.Add(1)
	m.cancel = cancel

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("panic in DB stats collector", zap.Any("panic", r))
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats := db.Stats()
				m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
				m.DBConnectionsInUse.Set(float64(stats.InUse))
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Shutdown stops the DB stats collector. Safe to call more than once.
func (m *Metrics) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}
