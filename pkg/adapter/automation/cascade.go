// Package automation synthesizes a controllable media source for sites that
// expose no native media element. State is scraped from the page's own UI on
// a fixed poll; commands are carried out by emulating user input through an
// ordered cascade of strategies. Everything in here is best-effort: a
// strategy that cannot produce its effect is abandoned, never escalated.
package automation

import (
	"context"

	"github.com/entrhq/maestro/pkg/logging"
)

// Strategy is one way of actuating a control. Run reports whether the
// strategy definitely took effect; an error counts as "did not", because UI
// automation failing is an expected condition, not a fault.
type Strategy struct {
	Name string
	Run  func(ctx context.Context) (bool, error)
}

// runCascade tries strategies in order until one signals definite success.
// It returns whether any did. Failures are logged at debug level and
// swallowed; the caller's state stays unchanged when the whole cascade
// misses and the user simply observes no effect.
func runCascade(ctx context.Context, log *logging.Logger, action string, strategies []Strategy) bool {
	for _, s := range strategies {
		handled, err := s.Run(ctx)
		if err != nil {
			log.Debugf("%s: strategy %s errored: %v", action, s.Name, err)
			metricStrategies.WithLabelValues(s.Name, "error").Inc()
			continue
		}
		if handled {
			log.Debugf("%s: strategy %s handled", action, s.Name)
			metricStrategies.WithLabelValues(s.Name, "handled").Inc()
			return true
		}
		metricStrategies.WithLabelValues(s.Name, "miss").Inc()
	}
	log.Debugf("%s: no strategy handled", action)
	return false
}
