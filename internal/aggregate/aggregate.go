// Package aggregate reduces finite tick sequences into windowed summaries.
// The functions here are pure: no I/O, no shared state.
package aggregate

import (
	"time"

	"stockstream/internal/record"
)

// Candlestick reduces ticks, supplied in append order, into a one-minute OHLC
// summary. Returns nil when ticks is empty. The summary minute is taken from
// now (truncated to whole seconds), matching the trigger time rather than the
// data.
func Candlestick(ticks []record.Tick, now time.Time) *record.Candlestick {
	if len(ticks) == 0 {
		return nil
	}
	high := ticks[0].Price
	low := ticks[0].Price
	for _, t := range ticks[1:] {
		if t.Price > high {
			high = t.Price
		}
		if t.Price < low {
			low = t.Price
		}
	}
	return &record.Candlestick{
		Symbol: ticks[0].Symbol,
		Minute: now.Truncate(time.Second),
		Open:   ticks[0].Price,
		Close:  ticks[len(ticks)-1].Price,
		High:   high,
		Low:    low,
		Count:  uint64(len(ticks)),
	}
}

// Mean reduces ticks into a mean-price summary bounded by the smallest and
// largest write timestamps observed. Returns nil when ticks is empty.
func Mean(ticks []record.Tick) *record.Mean {
	if len(ticks) == 0 {
		return nil
	}
	start := ticks[0].WriteTimestamp
	end := ticks[0].WriteTimestamp
	sum := 0.0
	for _, t := range ticks {
		sum += t.Price
		if t.WriteTimestamp.Before(start) {
			start = t.WriteTimestamp
		}
		if t.WriteTimestamp.After(end) {
			end = t.WriteTimestamp
		}
	}
	return &record.Mean{
		Symbol: ticks[0].Symbol,
		Start:  start,
		End:    end,
		Price:  sum / float64(len(ticks)),
		Count:  uint64(len(ticks)),
	}
}
