// Package feed hosts connectors for upstream tick sources.
package feed

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stockstream/internal/metrics"
	"stockstream/internal/record"
)

const (
	// ProviderStub emits deterministic synthetic ticks (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderFinnhub streams live trades from the finnhub.io websocket API.
	ProviderFinnhub = "finnhub"
)

const defaultFinnhubURL = "wss://ws.finnhub.io"

// Feed represents a pluggable market data stream implementation.
type Feed struct {
	provider string
	url      string
	token    string
	symbols  []string
	log      zerolog.Logger
}

// Option configures Feed construction parameters.
type Option func(*Feed)

// WithURL overrides the websocket endpoint (the token query parameter is
// appended at dial time).
func WithURL(url string) Option {
	return func(f *Feed) {
		if url != "" {
			f.url = strings.TrimSuffix(url, "/")
		}
	}
}

// WithToken supplies the feed credential.
func WithToken(token string) Option {
	return func(f *Feed) { f.token = token }
}

// New constructs a feed backed by the requested provider.
func New(provider string, symbols []string, log zerolog.Logger, opts ...Option) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider: strings.ToLower(provider),
		url:      defaultFinnhubURL,
		log:      log,
	}
	f.setSymbols(symbols)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Feed) setSymbols(symbols []string) {
	unique := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		unique[sym] = struct{}{}
	}
	f.symbols = f.symbols[:0]
	for sym := range unique {
		f.symbols = append(f.symbols, sym)
	}
	sort.Strings(f.symbols)
}

// Run pushes ticks onto the provided channel until the context is canceled or
// the underlying connection fails. Reconnection policy is deliberately left to
// the caller.
func (f *Feed) Run(ctx context.Context, out chan<- record.Tick) error {
	switch f.provider {
	case ProviderFinnhub:
		return f.runFinnhub(ctx, out)
	default:
		return f.runStub(ctx, out)
	}
}

func (f *Feed) runStub(ctx context.Context, out chan<- record.Tick) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var px float64 = 100.0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			px += 0.1
			for _, s := range f.symbols {
				tick := record.Tick{Symbol: s, Price: px, Timestamp: ts.UTC()}
				select {
				case out <- tick:
					metrics.TicksTotal.WithLabelValues(s).Inc()
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}
