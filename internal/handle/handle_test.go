package handle

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockstream/internal/record"
	"stockstream/internal/store"
)

func newLayout(t *testing.T) store.Layout {
	t.Helper()
	layout := store.Layout{Root: t.TempDir()}
	require.NoError(t, layout.Provision())
	return layout
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestNewInitializesSinks(t *testing.T) {
	layout := newLayout(t)
	h, err := New(layout, "BINANCE:BTCUSDT")
	require.NoError(t, err)
	defer h.Close()

	tickRows := readRows(t, layout.TickPath("BINANCE:BTCUSDT"))
	require.Len(t, tickRows, 1)
	require.Equal(t, record.TickHeader(), tickRows[0])

	candleRows := readRows(t, layout.CandlestickPath("BINANCE:BTCUSDT"))
	require.Len(t, candleRows, 2, "header plus placeholder row")
	require.Equal(t, record.CandlestickHeader(), candleRows[0])
	require.Equal(t, "0", candleRows[1][2], "placeholder open price")
	require.Equal(t, "0", candleRows[1][6], "placeholder count")

	meanRows := readRows(t, layout.MeanPath("BINANCE:BTCUSDT"))
	require.Len(t, meanRows, 1)
	require.Equal(t, record.MeanHeader(), meanRows[0])
}

func TestNewPreservesExistingTickRows(t *testing.T) {
	layout := newLayout(t)
	rows := "Symbol,Price,Timestamp,WriteTimestamp\nAAPL,172.5,1658441258376,1658441270794\n"
	require.NoError(t, os.WriteFile(layout.TickPath("AAPL"), []byte(rows), 0o644))

	h, err := New(layout, "AAPL")
	require.NoError(t, err)
	defer h.Close()

	got := readRows(t, layout.TickPath("AAPL"))
	require.Len(t, got, 2, "restart must not rewrite the header")
}

func TestAppendStampsWriteTimestamp(t *testing.T) {
	layout := newLayout(t)
	h, err := New(layout, "AAPL")
	require.NoError(t, err)
	defer h.Close()

	before := time.Now().UTC()
	require.NoError(t, h.Append(record.Tick{Symbol: "AAPL", Price: 172.5, Timestamp: before}))
	after := time.Now().UTC()

	ticks, err := h.Log.ScanWindow(before.Add(-time.Minute), 3)
	require.NoError(t, err)
	require.Len(t, ticks, 1)
	wt := ticks[0].WriteTimestamp
	require.False(t, wt.Before(before.Truncate(time.Millisecond)))
	require.False(t, wt.After(after.Add(time.Millisecond)))
}

func TestRegistryOneHandlePerSymbol(t *testing.T) {
	layout := newLayout(t)
	reg, err := NewRegistry(layout, []string{"AAPL", "AMZN", "BINANCE:BTCUSDT"})
	require.NoError(t, err)
	defer reg.Close()

	require.Len(t, reg.Handles(), 3)
	require.NotNil(t, reg.Lookup("AAPL"))
	require.Same(t, reg.Lookup("AAPL"), reg.Handles()[0])
	require.Nil(t, reg.Lookup("MSFT"))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	layout := newLayout(t)
	_, err := NewRegistry(layout, []string{"AAPL", "AAPL"})
	require.Error(t, err)
}
