// Package store owns the per-symbol on-disk resources: the append-only tick
// log, the candlestick and mean summary sinks, and the directory layout that
// groups them by kind.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const (
	rollingDir     = "rolling"
	candlestickDir = "candlestick"
	meanDir        = "mean"
)

var unsafeChars = regexp.MustCompile(`\W`)

// SanitizeSymbol maps a market symbol to a filesystem-safe name by replacing
// every non-word character with an underscore, e.g. "BINANCE:BTCUSDT" becomes
// "BINANCE_BTCUSDT".
func SanitizeSymbol(symbol string) string {
	return unsafeChars.ReplaceAllString(symbol, "_")
}

// Layout resolves the per-kind directories and per-symbol file paths under a
// single data root.
type Layout struct {
	Root string
}

// Provision creates the per-kind directories. Failure here is a startup
// precondition violation; callers treat it as fatal.
func (l Layout) Provision() error {
	for _, dir := range []string{rollingDir, candlestickDir, meanDir} {
		if err := os.MkdirAll(filepath.Join(l.Root, dir), 0o755); err != nil {
			return fmt.Errorf("provision %s dir: %w", dir, err)
		}
	}
	return nil
}

// TickPath returns the rolling tick log path for a symbol.
func (l Layout) TickPath(symbol string) string {
	return filepath.Join(l.Root, rollingDir, SanitizeSymbol(symbol)+".csv")
}

// CandlestickPath returns the candlestick summary log path for a symbol.
func (l Layout) CandlestickPath(symbol string) string {
	return filepath.Join(l.Root, candlestickDir, SanitizeSymbol(symbol)+".csv")
}

// MeanPath returns the mean summary log path for a symbol.
func (l Layout) MeanPath(symbol string) string {
	return filepath.Join(l.Root, meanDir, SanitizeSymbol(symbol)+".csv")
}
