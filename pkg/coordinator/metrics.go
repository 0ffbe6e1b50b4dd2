package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "maestro",
		Name:      "sessions_total",
		Help:      "Number of sessions currently in the registry.",
	})
	metricBroadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maestro",
		Name:      "broadcasts_total",
		Help:      "Feed frames broadcast to subscribers, by message type.",
	}, []string{"type"})
	metricThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "maestro",
		Name:      "broadcasts_throttled_total",
		Help:      "Progress updates withheld by the per-session throttle.",
	})
	metricCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maestro",
		Name:      "commands_total",
		Help:      "Commands forwarded to adapters, by verb.",
	}, []string{"verb"})
)
