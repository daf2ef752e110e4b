// Package dispatch provides the single global heartbeat that gates every
// symbol's windowed recomputation.
package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"stockstream/internal/handle"
)

// Dispatcher broadcasts a truncated minute timestamp to every handle's two
// signal channels, once per interval. Both cadences fire every minute; the
// mean worker's fifteen-minute window slides rather than aligning to clock
// quarter-hours, so no modulus gating happens here.
type Dispatcher struct {
	registry *handle.Registry
	interval time.Duration
	log      zerolog.Logger
}

// New builds a dispatcher over the registry. A non-positive interval falls
// back to one minute.
func New(registry *handle.Registry, interval time.Duration, log zerolog.Logger) *Dispatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Dispatcher{registry: registry, interval: interval, log: log}
}

// Run ticks until the context is canceled. Each tick sends the same truncated
// timestamp into every handle's candle and mean channels; a blocked send on
// one handle delays delivery to the handles after it for that round, which is
// acceptable at one event per minute.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.Info().Dur("interval", d.interval).Msg("dispatcher running")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			d.Broadcast(now)
		}
	}
}

// Broadcast delivers one heartbeat to every handle.
func (d *Dispatcher) Broadcast(now time.Time) {
	minute := now.UTC().Truncate(time.Minute)
	for _, h := range d.registry.Handles() {
		h.Candles <- minute
		h.Means <- minute
	}
	d.log.Debug().Time("minute", minute).Msg("heartbeat broadcast")
}
