// Package config holds the daemon's runtime settings and the site automation
// profiles. Runtime settings come from the environment; profiles are data
// loaded from YAML, with built-in defaults for common players. Selector sets
// and scoring weights live here rather than in code because they are
// empirically tuned per site and expected to drift.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Runtime configures the daemon process.
type Runtime struct {
	// ListenAddr is the address the control API and feed bind to.
	ListenAddr string `env:"MAESTRO_LISTEN" envDefault:"127.0.0.1:4725"`

	// Headless controls whether the supervised browser shows a window.
	Headless bool `env:"MAESTRO_HEADLESS" envDefault:"false"`

	// ProfilePath points at a user profile file merged over the built-in
	// site profiles. Empty means defaults only.
	ProfilePath string `env:"MAESTRO_PROFILES"`

	// DiscoveryRetries bounds how often an adapter re-scans a context that
	// has no playable source yet before giving up silently.
	DiscoveryRetries int `env:"MAESTRO_DISCOVERY_RETRIES" envDefault:"5"`

	// DiscoveryRetryDelay is the fixed delay between discovery retries.
	DiscoveryRetryDelay time.Duration `env:"MAESTRO_DISCOVERY_RETRY_DELAY" envDefault:"2s"`

	// PollInterval is the virtual-source polling cadence.
	PollInterval time.Duration `env:"MAESTRO_POLL_INTERVAL" envDefault:"1s"`

	// BroadcastMinInterval throttles per-session fan-out of progress-only
	// updates. State transitions always broadcast regardless.
	BroadcastMinInterval time.Duration `env:"MAESTRO_BROADCAST_MIN_INTERVAL" envDefault:"300ms"`
}

// LoadRuntime reads the runtime configuration from the environment.
func LoadRuntime() (Runtime, error) {
	var rt Runtime
	if err := env.Parse(&rt); err != nil {
		return Runtime{}, fmt.Errorf("parse environment: %w", err)
	}
	if rt.DiscoveryRetries < 0 {
		return Runtime{}, fmt.Errorf("discovery retries must not be negative, got %d", rt.DiscoveryRetries)
	}
	return rt, nil
}
