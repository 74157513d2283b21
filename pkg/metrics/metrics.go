// Package metrics exposes registry activity as Prometheus metrics.
//
// # Overview
//
// PoolMetrics implements pool.Hooks. Install it on a registry and every
// pool creation, spawn, release, lazy growth and diagnostic is counted,
// labelled by tag:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewPoolMetrics(reg, "tagpool")
//	pools := pool.New(entries, pool.WithHooks(m))
//
// # Metric Types
//
// Counter: spawns, releases, growths, diagnostics by kind
// Gauge: idle objects per pool, pools created
//
// Timer and RateTracker are small helpers for measuring churn loops.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/tagpool/pkg/errors"
	"github.com/ajitpratap0/tagpool/pkg/pool"
)

// PoolMetrics records registry events as Prometheus metrics.
type PoolMetrics struct {
	Spawns      *prometheus.CounterVec
	Releases    *prometheus.CounterVec
	Growths     *prometheus.CounterVec
	Diagnostics *prometheus.CounterVec
	Available   *prometheus.GaugeVec
	Pools       prometheus.Gauge
	Throughput  prometheus.Gauge
}

var _ pool.Hooks = (*PoolMetrics)(nil)

// NewPoolMetrics registers the pool metrics with reg under namespace.
// A nil reg uses the default Prometheus registerer.
//
// Example:
//
//	m := metrics.NewPoolMetrics(nil, "arena")
//	http.Handle("/metrics", promhttp.Handler())
func NewPoolMetrics(reg prometheus.Registerer, namespace string) *PoolMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &PoolMetrics{
		Spawns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spawns_total",
			Help:      "Objects checked out, by pool tag",
		}, []string{"tag"}),
		Releases: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "releases_total",
			Help:      "Objects returned, by pool tag",
		}, []string{"tag"}),
		Growths: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "growths_total",
			Help:      "Instances manufactured because a pool was empty on spawn",
		}, []string{"tag"}),
		Diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Reported failures, by pool tag and kind",
		}, []string{"tag", "kind"}),
		Available: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "available",
			Help:      "Idle objects currently queued, by pool tag",
		}, []string{"tag"}),
		Pools: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pools",
			Help:      "Pools created",
		}),
		Throughput: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "spawns_per_second",
			Help:      "Spawn rate measured over the last churn window",
		}),
	}
}

// PoolCreated implements pool.Hooks.
func (m *PoolMetrics) PoolCreated(string) {
	m.Pools.Inc()
}

// Spawned implements pool.Hooks.
func (m *PoolMetrics) Spawned(tag string) {
	m.Spawns.WithLabelValues(tag).Inc()
}

// Released implements pool.Hooks.
func (m *PoolMetrics) Released(tag string) {
	m.Releases.WithLabelValues(tag).Inc()
}

// Grew implements pool.Hooks.
func (m *PoolMetrics) Grew(tag string) {
	m.Growths.WithLabelValues(tag).Inc()
}

// Depth implements pool.Hooks.
func (m *PoolMetrics) Depth(tag string, available int) {
	m.Available.WithLabelValues(tag).Set(float64(available))
}

// Diagnostic implements pool.Hooks.
func (m *PoolMetrics) Diagnostic(tag string, kind errors.ErrorType) {
	m.Diagnostics.WithLabelValues(tag, string(kind)).Inc()
}

// Timer measures the duration of an operation from its creation.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the name the timer was created with.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the time elapsed since creation. It may be called repeatedly.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// RateTracker counts events over a window and reports events per second.
// Safe for concurrent use.
type RateTracker struct {
	mu        sync.Mutex
	count     int64
	lastReset time.Time
	gauge     prometheus.Gauge
	now       func() time.Time
}

// NewRateTracker creates a tracker. When gauge is non-nil the rate is
// published to it on every GetAndReset.
func NewRateTracker(gauge prometheus.Gauge) *RateTracker {
	return &RateTracker{
		lastReset: time.Now(),
		gauge:     gauge,
		now:       time.Now,
	}
}

// Increment adds n events.
func (t *RateTracker) Increment(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count += n
}

// GetAndReset returns the events per second since the last reset and starts
// a new window.
func (t *RateTracker) GetAndReset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	elapsed := now.Sub(t.lastReset).Seconds()
	if elapsed <= 0 {
		return 0
	}

	rate := float64(t.count) / elapsed
	t.count = 0
	t.lastReset = now

	if t.gauge != nil {
		t.gauge.Set(rate)
	}
	return rate
}
