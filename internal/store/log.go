package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"stockstream/internal/record"
)

// TickLog is the append-only, file-backed ordered tick log for one symbol.
// Every operation serializes on a single mutex so that appends, scans, and the
// header write never interleave their byte-level file access.
type TickLog struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	hasRows bool
}

// OpenTickLog opens or creates the log file for appending and reading back.
func OpenTickLog(path string) (*TickLog, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tick log %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat tick log %s: %w", path, err)
	}
	return &TickLog{file: file, path: path, hasRows: info.Size() > 0}, nil
}

// Append serializes one tick and appends it, writing the header row first if
// the file held nothing yet. The row is flushed before returning; errors are
// propagated, never retried.
func (l *TickLog) Append(t record.Tick) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := csv.NewWriter(l.file)
	if !l.hasRows {
		if err := w.Write(record.TickHeader()); err != nil {
			return fmt.Errorf("write tick header: %w", err)
		}
		l.hasRows = true
	}
	if err := w.Write(t.Row()); err != nil {
		return fmt.Errorf("write tick row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush tick log: %w", err)
	}
	return nil
}

// EnsureHeader writes the header row iff the file is still empty. Used during
// one-time handle initialization so that even a symbol that never trades leaves
// a recognizably shaped file behind.
func (l *TickLog) EnsureHeader() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hasRows {
		return nil
	}
	w := csv.NewWriter(l.file)
	if err := w.Write(record.TickHeader()); err != nil {
		return fmt.Errorf("write tick header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush tick header: %w", err)
	}
	l.hasRows = true
	return nil
}

// ScanWindow re-reads the whole log and returns, in append order, every tick
// whose WriteTimestamp falls inside the half-open window
// [floor_to_minute(reference), floor_to_minute(reference)+minutes). A row that
// fails to parse aborts the scan.
//
// The scan is O(log size) on purpose: per-symbol volumes are small enough that
// a full re-read beats maintaining an in-memory index.
func (l *TickLog) ScanWindow(reference time.Time, minutes int) ([]record.Tick, error) {
	start := reference.Truncate(time.Minute)
	end := start.Add(time.Duration(minutes) * time.Minute)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek tick log: %w", err)
	}
	r := csv.NewReader(l.file)
	r.FieldsPerRecord = -1

	var ticks []record.Tick
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tick log %s: %w", l.path, err)
		}
		if first {
			first = false
			continue // header
		}
		tick, err := record.ParseTick(row)
		if err != nil {
			return nil, fmt.Errorf("malformed row in %s: %w", l.path, err)
		}
		if !tick.WriteTimestamp.Before(start) && tick.WriteTimestamp.Before(end) {
			ticks = append(ticks, tick)
		}
	}
	return ticks, nil
}

// Empty reports whether the log holds no data rows yet (a lone header row
// still counts as empty).
func (l *TickLog) Empty() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Seek(0, io.SeekStart); err != nil {
		return false, fmt.Errorf("seek tick log: %w", err)
	}
	r := csv.NewReader(l.file)
	r.FieldsPerRecord = -1
	rows := 0
	for {
		if _, err := r.Read(); err != nil {
			break
		}
		rows++
		if rows > 1 {
			break
		}
	}
	return rows <= 1, nil
}

// Close releases the underlying file handle.
func (l *TickLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
