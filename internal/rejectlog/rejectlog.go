// Package rejectlog writes the cells an import could not read to a CSV file,
// one line per cell, so they can be corrected in the workbook.
package rejectlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
)

var header = []string{"job", "data_row", "column", "kind", "value"}

// Log is an open reject file. Add is safe for concurrent use.
type Log struct {
	job  string
	path string

	mu     sync.Mutex
	f      *os.File
	w      *csv.Writer
	counts map[string]int
	err    error
}

// Create opens path for writing, creating parent directories, and writes the
// header line.
func Create(path, job string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return &Log{job: job, path: path, f: f, w: w, counts: map[string]int{}}, nil
}

// Add records one unreadable cell. Its signature matches
// transformer.RejectFunc. The first write error is kept and returned by
// Close.
func (l *Log) Add(row int, f schema.Field, raw string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[f.Name]++
	if l.err != nil {
		return
	}
	l.err = l.w.Write([]string{l.job, strconv.Itoa(row), f.Header, string(f.Kind), raw})
}

// Counts returns the number of rejected cells per staging column.
func (l *Log) Counts() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

// Path returns the file being written.
func (l *Log) Path() string { return l.path }

// Close flushes and closes the file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	if l.err == nil {
		l.err = l.w.Error()
	}
	if err := l.f.Close(); err != nil && l.err == nil {
		l.err = err
	}
	if l.err != nil {
		return fmt.Errorf("reject log %s: %w", l.path, l.err)
	}
	return nil
}
