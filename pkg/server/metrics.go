package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus metrics for the server.
type metrics struct {
	verbsTotal    *prometheus.CounterVec
	verbDuration  *prometheus.HistogramVec
	patchesSent   prometheus.Counter
	patchBytes    prometheus.Counter
	mirrorClients prometheus.Gauge
	wsErrors      *prometheus.CounterVec
}

// newMetrics registers the server metrics with the given registry.
func newMetrics(registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)

	return &metrics{
		verbsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rebind",
			Name:      "verbs_total",
			Help:      "Total number of mutation verbs processed",
		}, []string{"verb", "status"}),

		verbDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rebind",
			Name:      "verb_duration_seconds",
			Help:      "Verb processing duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"verb"}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rebind",
			Name:      "patches_sent_total",
			Help:      "Total number of patches broadcast to mirror clients",
		}),

		patchBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rebind",
			Name:      "patch_bytes_total",
			Help:      "Total patch frame bytes broadcast to mirror clients",
		}),

		mirrorClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "rebind",
			Name:      "mirror_clients",
			Help:      "Number of connected mirror clients",
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rebind",
			Name:      "websocket_errors_total",
			Help:      "Total WebSocket errors by type",
		}, []string{"type"}),
	}
}
