// Package metrics exposes Prometheus instrumentation for the generation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "runway"

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeEmpty = "empty"
)

// Metrics groups every collector the service exports. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	UpstreamCalls    *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	ImageSlots       *prometheus.CounterVec
	Campaigns        *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UpstreamCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_calls_total",
			Help:      "Calls to the generation provider by operation and outcome.",
		}, []string{"operation", "outcome"}),
		UpstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_call_duration_seconds",
			Help:      "Latency of calls to the generation provider.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90, 120},
		}, []string{"operation"}),
		ImageSlots: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_slots_total",
			Help:      "Fan-out image slots by outcome; empty slots hold the unavailable sentinel.",
		}, []string{"outcome"}),
		Campaigns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaigns_total",
			Help:      "Campaign creation requests by outcome.",
		}, []string{"outcome"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaign_cache_lookups_total",
			Help:      "Redis campaign cache lookups by result.",
		}, []string{"result"}),
	}
}

// ObserveUpstream records one provider call that started at start.
func (m *Metrics) ObserveUpstream(operation string, start time.Time, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	m.UpstreamCalls.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ImageSlot(outcome string) {
	if m == nil {
		return
	}
	m.ImageSlots.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Campaign(outcome string) {
	if m == nil {
		return
	}
	m.Campaigns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
