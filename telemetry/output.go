package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
)

// Recorder consumes generation summaries.
type Recorder interface {
	Record(g Generation) error
}

// CSVWriter appends generation records to generations.csv.
type CSVWriter struct {
	mu            sync.Mutex
	file          *os.File
	headerWritten bool
}

// NewCSVWriter creates dir and opens generations.csv inside it.
// Returns nil if dir is empty (output disabled).
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "generations.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating generations.csv: %w", err)
	}
	return &CSVWriter{file: f}, nil
}

// Record writes one row. The first row carries the header.
func (w *CSVWriter) Record(g Generation) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	records := []Generation{g}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.file); err != nil {
			return fmt.Errorf("writing generation: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.file); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (w *CSVWriter) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return fmt.Errorf("syncing generations.csv: %w", err)
	}
	return w.file.Close()
}

// ReadGenerations loads a generations.csv file.
func ReadGenerations(path string) ([]Generation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out []Generation
	if err := gocsv.UnmarshalFile(f, &out); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

// Multi fans a record out to several recorders. Nil entries are skipped and the
// first error is returned after every recorder ran.
type Multi []Recorder

// Record implements Recorder.
func (m Multi) Record(g Generation) error {
	var first error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(g); err != nil && first == nil {
			first = err
		}
	}
	return first
}
