// Package record standardizes the payloads shared between ingestion, storage,
// and aggregation, plus their delimited row encodings.
package record

import (
	"fmt"
	"strconv"
	"time"
)

// Tick models one observed trade for a tracked symbol.
type Tick struct {
	// Symbol is the market identifier, e.g. "AAPL" or "BINANCE:BTCUSDT".
	Symbol string
	// Price of the symbol at the time of the trade.
	Price float64
	// Timestamp is the source-assigned trade time (millisecond precision).
	Timestamp time.Time
	// WriteTimestamp is assigned when the tick is appended to its log.
	// Append order is monotone in WriteTimestamp, not in Timestamp.
	WriteTimestamp time.Time
}

// Candlestick summarizes one minute of trading for a symbol.
type Candlestick struct {
	Symbol string
	// Minute identifies the computation minute, truncated to whole seconds.
	Minute time.Time
	Open   float64
	Close  float64
	High   float64
	Low    float64
	Count  uint64
}

// Mean summarizes the trailing fifteen minutes of trading for a symbol.
type Mean struct {
	Symbol string
	// Start is the smallest WriteTimestamp among the summarized ticks.
	Start time.Time
	// End is the largest WriteTimestamp among the summarized ticks.
	End   time.Time
	Price float64
	Count uint64
}

// TickHeader names the tick row fields in on-disk order.
func TickHeader() []string {
	return []string{"Symbol", "Price", "Timestamp", "WriteTimestamp"}
}

// Row encodes the tick in on-disk field order.
func (t Tick) Row() []string {
	return []string{
		t.Symbol,
		strconv.FormatFloat(t.Price, 'f', -1, 64),
		strconv.FormatInt(t.Timestamp.UnixMilli(), 10),
		strconv.FormatInt(t.WriteTimestamp.UnixMilli(), 10),
	}
}

// ParseTick decodes one on-disk tick row. Any malformed field is an error;
// callers treat that as fatal to the scan that produced the row.
func ParseTick(row []string) (Tick, error) {
	if len(row) != 4 {
		return Tick{}, fmt.Errorf("tick row has %d fields, want 4", len(row))
	}
	price, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return Tick{}, fmt.Errorf("parse price %q: %w", row[1], err)
	}
	ts, err := strconv.ParseInt(row[2], 10, 64)
	if err != nil {
		return Tick{}, fmt.Errorf("parse timestamp %q: %w", row[2], err)
	}
	wts, err := strconv.ParseInt(row[3], 10, 64)
	if err != nil {
		return Tick{}, fmt.Errorf("parse write timestamp %q: %w", row[3], err)
	}
	return Tick{
		Symbol:         row[0],
		Price:          price,
		Timestamp:      time.UnixMilli(ts).UTC(),
		WriteTimestamp: time.UnixMilli(wts).UTC(),
	}, nil
}

// CandlestickHeader names the candlestick row fields in on-disk order.
func CandlestickHeader() []string {
	return []string{"Symbol", "MinuteOfDay", "OpenPrice", "ClosePrice", "HighestPrice", "LowestPrice", "Transactions"}
}

// Row encodes the candlestick in on-disk field order.
func (c Candlestick) Row() []string {
	return []string{
		c.Symbol,
		c.Minute.UTC().Format(time.RFC3339),
		strconv.FormatFloat(c.Open, 'f', -1, 64),
		strconv.FormatFloat(c.Close, 'f', -1, 64),
		strconv.FormatFloat(c.High, 'f', -1, 64),
		strconv.FormatFloat(c.Low, 'f', -1, 64),
		strconv.FormatUint(c.Count, 10),
	}
}

// MeanHeader names the mean row fields in on-disk order.
func MeanHeader() []string {
	return []string{"Symbol", "StartTime", "EndTime", "MeanPrice", "Transactions"}
}

// Row encodes the mean summary in on-disk field order.
func (m Mean) Row() []string {
	return []string{
		m.Symbol,
		m.Start.UTC().Format(time.RFC3339Nano),
		m.End.UTC().Format(time.RFC3339Nano),
		strconv.FormatFloat(m.Price, 'f', -1, 64),
		strconv.FormatUint(m.Count, 10),
	}
}
