// Package observability exports runtime counters to a Prometheus registry,
// which the metrics endpoint serves.
package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records counters and latencies. Collectors are created lazily per
// metric name and registered once against the given registerer.
type Metrics struct {
	registerer prometheus.Registerer
	namespace  string

	mu        sync.Mutex
	counters  map[string]*prometheus.CounterVec
	durations map[string]*prometheus.HistogramVec
}

// NewMetrics creates a metrics sink under the given namespace
func NewMetrics(registerer prometheus.Registerer, namespace string) *Metrics {
	return &Metrics{
		registerer: registerer,
		namespace:  namespace,
		counters:   make(map[string]*prometheus.CounterVec),
		durations:  make(map[string]*prometheus.HistogramVec),
	}
}

// Increment adds one to the named counter for the label
func (m *Metrics) Increment(metric, label string) {
	m.counterFor(metric).WithLabelValues(label).Inc()
}

// StartTimer starts a latency observation for the label. Stop records it.
func (m *Metrics) StartTimer(metric, label string) *Timer {
	return &Timer{
		timer: prometheus.NewTimer(m.durationFor(metric).WithLabelValues(label)),
	}
}

// Timer measures one in-flight operation
type Timer struct {
	timer *prometheus.Timer
}

// Stop records the elapsed time since the timer started
func (t *Timer) Stop() {
	t.timer.ObserveDuration()
}

func (m *Metrics) counterFor(metric string) *prometheus.CounterVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[metric]; ok {
		return c
	}
	c := promauto.With(m.registerer).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      metric + "_total",
		Help:      "Total " + strings.ReplaceAll(metric, "_", " ") + " by type.",
	}, []string{"type"})
	m.counters[metric] = c
	return c
}

func (m *Metrics) durationFor(metric string) *prometheus.HistogramVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.durations[metric]; ok {
		return h
	}
	h := promauto.With(m.registerer).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      metric + "_seconds",
		Help:      strings.ReplaceAll(metric, "_", " ") + " in seconds by type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"type"})
	m.durations[metric] = h
	return h
}
