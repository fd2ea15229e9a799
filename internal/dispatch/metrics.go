package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts event application outcomes.
type Metrics struct {
	processed *prometheus.CounterVec
	failures  *prometheus.CounterVec
	lastBlock prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "textdao",
			Subsystem: "dispatch",
			Name:      "events_processed_total",
			Help:      "Ledger events applied to the projection, by event type.",
		}, []string{"type"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "textdao",
			Subsystem: "dispatch",
			Name:      "events_failed_total",
			Help:      "Events whose application failed and halted processing, by event type.",
		}, []string{"type"}),
		lastBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "textdao",
			Subsystem: "dispatch",
			Name:      "last_applied_block",
			Help:      "Block number of the most recently applied event.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.processed, m.failures, m.lastBlock)
	}
	return m
}

func (m *Metrics) observeProcessed(eventType string, block uint64) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(eventType).Inc()
	m.lastBlock.Set(float64(block))
}

func (m *Metrics) observeFailure(eventType string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(eventType).Inc()
}
