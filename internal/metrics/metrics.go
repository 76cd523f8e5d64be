// Package metrics exposes Prometheus instruments for channel actions and the
// remote store calls behind them.
package metrics

import (
	"net/http"

	"channel-console/internal/interfaces"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements remote.Observer, interfaces.ActionObserver and a
// notice sink. Each instance owns its registry so tests can build as many as
// they like.
type Metrics struct {
	registry *prometheus.Registry

	// ActionCounter counts row and bulk actions.
	// Labels: kind, outcome
	ActionCounter *prometheus.CounterVec

	// ActionDuration measures action latency in seconds, remote call included.
	// Labels: kind
	ActionDuration *prometheus.HistogramVec

	// RemoteCallCounter counts calls to the channel store.
	// Labels: operation, outcome (success|rejected|transport_error)
	RemoteCallCounter *prometheus.CounterVec

	// RemoteCallDuration measures store round trips in seconds.
	// Labels: operation
	RemoteCallDuration *prometheus.HistogramVec

	// NoticeCounter counts operator notices by level.
	NoticeCounter *prometheus.CounterVec
}

// NewMetrics registers the console collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ActionCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channel_console_actions_total",
				Help: "Total number of channel actions by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		ActionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "channel_console_action_duration_seconds",
				Help:    "Duration of channel actions in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"kind"},
		),

		RemoteCallCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channel_console_remote_calls_total",
				Help: "Total number of channel store calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),

		RemoteCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "channel_console_remote_call_duration_seconds",
				Help:    "Duration of channel store calls in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),

		NoticeCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "channel_console_notices_total",
				Help: "Total number of operator notices by level",
			},
			[]string{"level"},
		),
	}
}

// ObserveRemoteCall records one store round trip.
func (m *Metrics) ObserveRemoteCall(operation, outcome string, seconds float64) {
	m.RemoteCallCounter.WithLabelValues(operation, outcome).Inc()
	m.RemoteCallDuration.WithLabelValues(operation).Observe(seconds)
}

// ObserveAction records one completed action. Skipped actions never reached
// the store and are only counted.
func (m *Metrics) ObserveAction(ev interfaces.ActionEvent) {
	m.ActionCounter.WithLabelValues(ev.Kind, string(ev.Outcome)).Inc()
	if ev.Outcome != interfaces.OutcomeSkipped {
		m.ActionDuration.WithLabelValues(ev.Kind).Observe(ev.Duration.Seconds())
	}
}

// NoticeRaised counts a notice at level.
func (m *Metrics) NoticeRaised(level interfaces.NoticeLevel) {
	m.NoticeCounter.WithLabelValues(string(level)).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var _ interfaces.ActionObserver = (*Metrics)(nil)
