package dispatch

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"stockstream/internal/handle"
	"stockstream/internal/store"
)

func newRegistry(t *testing.T, symbols ...string) *handle.Registry {
	t.Helper()
	reg, err := handle.NewRegistry(store.Layout{Root: t.TempDir()}, symbols)
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestBroadcastReachesEveryChannel(t *testing.T) {
	reg := newRegistry(t, "AAPL", "AMZN")
	d := New(reg, time.Minute, zerolog.Nop())

	now := time.Date(2022, 7, 21, 22, 7, 38, 376000000, time.UTC)
	d.Broadcast(now)

	want := time.Date(2022, 7, 21, 22, 7, 0, 0, time.UTC)
	for _, h := range reg.Handles() {
		select {
		case got := <-h.Candles:
			require.Equal(t, want, got, "candle channel value must be truncated to the minute")
		default:
			t.Fatalf("no candle heartbeat for %s", h.Symbol)
		}
		select {
		case got := <-h.Means:
			require.Equal(t, want, got)
		default:
			t.Fatalf("no mean heartbeat for %s", h.Symbol)
		}
	}
}

func TestBroadcastEveryMinuteNoModulus(t *testing.T) {
	reg := newRegistry(t, "AAPL")
	d := New(reg, time.Minute, zerolog.Nop())

	base := time.Date(2022, 7, 21, 22, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		d.Broadcast(base.Add(time.Duration(i) * time.Minute))
	}

	h := reg.Handles()[0]
	// The mean cadence fires on every minute, not only on quarter-hours.
	require.Len(t, h.Means, 3)
	require.Len(t, h.Candles, 3)
}

func TestNewDefaultsInterval(t *testing.T) {
	reg := newRegistry(t, "AAPL")
	d := New(reg, 0, zerolog.Nop())
	require.Equal(t, time.Minute, d.interval)
}
