package automation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricStrategies = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "maestro",
	Name:      "automation_strategy_total",
	Help:      "Input-synthesis strategy attempts, by strategy and outcome.",
}, []string{"strategy", "outcome"})
