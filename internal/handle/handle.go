// Package handle ties together everything one tracked symbol needs: its tick
// log, its two summary sinks, and the signal channels that trigger windowed
// recomputation.
package handle

import (
	"fmt"
	"sync"
	"time"

	"stockstream/internal/record"
	"stockstream/internal/store"
)

// signalBuffer absorbs a slow worker without the dispatcher dropping minutes.
// One producer at one send per minute makes an hour of slack plenty.
const signalBuffer = 60

// Handle owns the per-symbol state for the lifetime of the process.
type Handle struct {
	Symbol string
	Log    *store.TickLog
	// Candles receives one truncated timestamp per minute and triggers the
	// one-minute candlestick recomputation.
	Candles chan time.Time
	// Means receives the same timestamps and triggers the trailing
	// fifteen-minute mean recomputation.
	Means chan time.Time

	candleSink *store.SummarySink
	meanSink   *store.SummarySink
	initOnce   sync.Once
	initErr    error
}

// New opens the three per-symbol stores under the layout and runs the one-time
// initialization before returning, so no ingest or worker goroutine can race
// it. Any failure is a startup failure; callers treat it as fatal.
func New(layout store.Layout, symbol string) (*Handle, error) {
	log, err := store.OpenTickLog(layout.TickPath(symbol))
	if err != nil {
		return nil, fmt.Errorf("symbol %s: %w", symbol, err)
	}
	candleSink, err := store.OpenSummarySink(layout.CandlestickPath(symbol), record.CandlestickHeader())
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("symbol %s: %w", symbol, err)
	}
	meanSink, err := store.OpenSummarySink(layout.MeanPath(symbol), record.MeanHeader())
	if err != nil {
		log.Close()
		candleSink.Close()
		return nil, fmt.Errorf("symbol %s: %w", symbol, err)
	}

	h := &Handle{
		Symbol:     symbol,
		Log:        log,
		Candles:    make(chan time.Time, signalBuffer),
		Means:      make(chan time.Time, signalBuffer),
		candleSink: candleSink,
		meanSink:   meanSink,
	}
	if err := h.init(); err != nil {
		h.Close()
		return nil, fmt.Errorf("symbol %s: %w", symbol, err)
	}
	return h, nil
}

// init runs exactly once per handle: the tick log gets its header if it is
// still empty, and the candlestick sink unconditionally gets one zero-valued
// row so the file has a recognizable shape even if the symbol never trades.
func (h *Handle) init() error {
	h.initOnce.Do(func() {
		empty, err := h.Log.Empty()
		if err != nil {
			h.initErr = err
			return
		}
		if empty {
			if err := h.Log.EnsureHeader(); err != nil {
				h.initErr = err
				return
			}
		}
		placeholder := record.Candlestick{Minute: time.Now().UTC().Truncate(time.Second)}
		h.initErr = h.candleSink.Write(placeholder.Row())
	})
	return h.initErr
}

// Append stamps the tick with the current write time and appends it to the
// symbol's log.
func (h *Handle) Append(t record.Tick) error {
	t.WriteTimestamp = time.Now().UTC()
	return h.Log.Append(t)
}

// WriteCandlestick persists one candlestick summary row.
func (h *Handle) WriteCandlestick(c record.Candlestick) error {
	return h.candleSink.Write(c.Row())
}

// WriteMean persists one mean summary row.
func (h *Handle) WriteMean(m record.Mean) error {
	return h.meanSink.Write(m.Row())
}

// Close releases the handle's file resources.
func (h *Handle) Close() error {
	var firstErr error
	for _, c := range []func() error{h.Log.Close, h.candleSink.Close, h.meanSink.Close} {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Registry holds exactly one handle per tracked symbol. The symbol set is
// fixed at construction; there is no dynamic add or remove.
type Registry struct {
	handles map[string]*Handle
	order   []*Handle
}

// NewRegistry provisions the layout directories and constructs one handle per
// symbol. Duplicate symbols are rejected.
func NewRegistry(layout store.Layout, symbols []string) (*Registry, error) {
	if err := layout.Provision(); err != nil {
		return nil, err
	}
	r := &Registry{handles: make(map[string]*Handle, len(symbols))}
	for _, symbol := range symbols {
		if _, dup := r.handles[symbol]; dup {
			r.Close()
			return nil, fmt.Errorf("duplicate symbol %s", symbol)
		}
		h, err := New(layout, symbol)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.handles[symbol] = h
		r.order = append(r.order, h)
	}
	return r, nil
}

// Lookup returns the handle for a symbol, or nil when the symbol is not
// tracked.
func (r *Registry) Lookup(symbol string) *Handle {
	return r.handles[symbol]
}

// Handles returns the handles in construction order.
func (r *Registry) Handles() []*Handle {
	return r.order
}

// Close releases every handle's resources.
func (r *Registry) Close() error {
	var firstErr error
	for _, h := range r.order {
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
