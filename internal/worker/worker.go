// Package worker runs the per-symbol computation loops: one goroutine per
// summary kind, each blocking on its handle's signal channel and turning a
// heartbeat into a scan, a pure reduction, and a sink write.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"stockstream/internal/aggregate"
	"stockstream/internal/handle"
	"stockstream/internal/metrics"
)

const (
	candleWindowMinutes = 1
	meanWindowMinutes   = 15
)

// Start launches both loops for every handle in the registry. The loops run
// until the context is canceled; a failed scan or write loses that trigger's
// summary and the loop moves on to the next heartbeat.
func Start(ctx context.Context, registry *handle.Registry, log zerolog.Logger) {
	for _, h := range registry.Handles() {
		go runCandle(ctx, h, log)
		go runMean(ctx, h, log)
	}
}

// runCandle recomputes the one-minute candlestick: on a heartbeat at minute M
// it scans the just-completed window [M-1m, M).
func runCandle(ctx context.Context, h *handle.Handle, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case minute := <-h.Candles:
			ticks, err := h.Log.ScanWindow(minute.Add(-candleWindowMinutes*time.Minute), candleWindowMinutes)
			if err != nil {
				metrics.ScanErrors.WithLabelValues(h.Symbol).Inc()
				log.Error().Err(err).Str("symbol", h.Symbol).Msg("candlestick scan failed")
				continue
			}
			c := aggregate.Candlestick(ticks, time.Now().UTC())
			if c == nil {
				continue
			}
			if err := h.WriteCandlestick(*c); err != nil {
				log.Error().Err(err).Str("symbol", h.Symbol).Msg("candlestick write failed")
				continue
			}
			metrics.SummariesTotal.WithLabelValues(h.Symbol, "candlestick").Inc()
		}
	}
}

// runMean recomputes the trailing fifteen-minute mean: on a heartbeat at
// minute M it scans [M-15m, M). The window slides forward a minute at a time
// rather than aligning to quarter-hours.
func runMean(ctx context.Context, h *handle.Handle, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case minute := <-h.Means:
			ticks, err := h.Log.ScanWindow(minute.Add(-meanWindowMinutes*time.Minute), meanWindowMinutes)
			if err != nil {
				metrics.ScanErrors.WithLabelValues(h.Symbol).Inc()
				log.Error().Err(err).Str("symbol", h.Symbol).Msg("mean scan failed")
				continue
			}
			m := aggregate.Mean(ticks)
			if m == nil {
				continue
			}
			if err := h.WriteMean(*m); err != nil {
				log.Error().Err(err).Str("symbol", h.Symbol).Msg("mean write failed")
				continue
			}
			metrics.SummariesTotal.WithLabelValues(h.Symbol, "mean").Inc()
		}
	}
}
