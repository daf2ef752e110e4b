package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// SummarySink appends summary rows (candlestick or mean) for one symbol. Like
// the tick log it serializes every write on its own mutex; the header row is
// written immediately when the underlying file is created empty.
type SummarySink struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// OpenSummarySink opens or creates the sink file and writes the given header
// row iff the file is empty.
func OpenSummarySink(path string, header []string) (*SummarySink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open summary sink %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat summary sink %s: %w", path, err)
	}
	s := &SummarySink{file: file, path: path}
	if info.Size() == 0 {
		if err := s.Write(header); err != nil {
			file.Close()
			return nil, err
		}
	}
	return s, nil
}

// Write appends one row and flushes it before returning.
func (s *SummarySink) Write(row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := csv.NewWriter(s.file)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write summary row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush summary sink %s: %w", s.path, err)
	}
	return nil
}

// Close releases the underlying file handle.
func (s *SummarySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
