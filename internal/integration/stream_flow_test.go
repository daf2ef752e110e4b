package integration

import (
	"context"
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stockstream/internal/dispatch"
	"stockstream/internal/feed"
	"stockstream/internal/handle"
	"stockstream/internal/record"
	"stockstream/internal/store"
	"stockstream/internal/worker"
)

func TestStreamFlowPersistsTicksAndSummaries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	layout := store.Layout{Root: t.TempDir()}
	registry, err := handle.NewRegistry(layout, []string{"AAPL"})
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	defer registry.Close()

	worker.Start(ctx, registry, zerolog.Nop())
	dispatcher := dispatch.New(registry, time.Minute, zerolog.Nop())

	src := feed.New(feed.ProviderStub, []string{"AAPL"}, zerolog.Nop())
	ticks := make(chan record.Tick, 8)
	go func() {
		_ = src.Run(ctx, ticks)
	}()

	h := registry.Lookup("AAPL")
	appended := 0
	for appended < 3 {
		select {
		case tk := <-ticks:
			if err := h.Append(tk); err != nil {
				t.Fatalf("Append returned error: %v", err)
			}
			appended++
		case <-ctx.Done():
			t.Fatalf("timed out waiting for stub ticks")
		}
	}

	// Fire the heartbeat for the minute after the appends so both workers
	// see the just-written rows in their trailing windows.
	dispatcher.Broadcast(time.Now().UTC().Add(time.Minute))

	waitForRows(t, layout.CandlestickPath("AAPL"), 3) // header + placeholder + summary
	waitForRows(t, layout.MeanPath("AAPL"), 2)        // header + summary

	tickRows := readAll(t, layout.TickPath("AAPL"))
	if len(tickRows) != 4 {
		t.Fatalf("expected header plus 3 tick rows, got %d", len(tickRows))
	}
	meanRows := readAll(t, layout.MeanPath("AAPL"))
	if meanRows[1][4] != "3" {
		t.Fatalf("expected mean over 3 ticks, got count %s", meanRows[1][4])
	}
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func waitForRows(t *testing.T, path string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if rows := readAll(t, path); len(rows) >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d rows in %s", n, path)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
