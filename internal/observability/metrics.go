package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	relayedCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scpikit",
			Subsystem: "bridge",
			Name:      "relayed_commands_total",
			Help:      "Commands relayed to the local instrument.",
		},
		[]string{"kind", "success"},
	)
	relayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scpikit",
			Subsystem: "bridge",
			Name:      "relay_duration_seconds",
			Help:      "Instrument round-trip duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind", "success"},
	)
	clientSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scpikit",
			Subsystem: "bridge",
			Name:      "client_sessions_total",
			Help:      "Remote client connections accepted by the bridge.",
		},
		[]string{"listener"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(relayedCommands, relayDuration, clientSessions)
	})
}

// RecordRelay counts one relayed command. kind is "query" or "send".
func RecordRelay(kind string, success bool, duration time.Duration) {
	RegisterMetrics()
	successLabel := strconv.FormatBool(success)
	relayedCommands.WithLabelValues(kind, successLabel).Inc()
	relayDuration.WithLabelValues(kind, successLabel).Observe(duration.Seconds())
}

// RecordClientSession counts one accepted remote client.
func RecordClientSession(listener string) {
	RegisterMetrics()
	clientSessions.WithLabelValues(listener).Inc()
}
