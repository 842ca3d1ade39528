// Package connectivity exposes the terminal's view of whether the back office is reachable.
package connectivity

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Signal reports reachability without blocking.
type Signal interface {
	Online() bool
}

// Prober performs one reachability check.
type Prober interface {
	Ping(ctx context.Context) error
}

// Static is a fixed signal, used when no back office is configured.
type Static bool

func (s Static) Online() bool { return bool(s) }

// Monitor polls a Prober in the background and caches the last answer.
type Monitor struct {
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	online   atomic.Bool
	logger   *slog.Logger
}

func NewMonitor(prober Prober, interval time.Duration, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := interval / 2
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}

	return &Monitor{
		prober:   prober,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Check probes once and updates the cached state.
func (m *Monitor) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	online := m.prober.Ping(ctx) == nil
	if prev := m.online.Swap(online); prev != online {
		m.logger.Info("connectivity changed", "online", online)
	}

	return online
}

// Run probes until ctx is done. A non-positive interval probes once and returns.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	if m.interval <= 0 {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
