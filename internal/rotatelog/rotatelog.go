// Package rotatelog implements a daily-rotating io.WriteCloser, the
// struct form of the teacher's log.go (g_daily_names/g_open_fname/
// g_log_fp package globals collapsed into a single value with no
// package state, per spec.md §9's note against global singletons).
package rotatelog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// dateFormat matches the teacher's daily filename, "2006-01-02.log".
const dateFormat = "2006-01-02.log"

// DefaultRetentionDays is how long rotated files are kept before Write
// prunes them.
const DefaultRetentionDays = 7

// Writer is an io.WriteCloser that opens a new file named by UTC date
// under Dir on first write each day, and deletes files older than
// RetentionDays whenever it rotates.
type Writer struct {
	Dir            string
	RetentionDays  int

	mu      sync.Mutex
	file    *os.File
	curName string
}

// New returns a Writer rooted at dir, creating dir if needed.
func New(dir string, retentionDays int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("rotatelog: mkdir %s: %w", dir, err)
	}
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Writer{Dir: dir, RetentionDays: retentionDays}, nil
}

// Write appends p to today's file, rotating (and pruning old files) if
// the UTC date has changed since the last write.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	name := time.Now().UTC().Format(dateFormat)
	if w.file == nil || name != w.curName {
		if err := w.rotate(name); err != nil {
			return 0, err
		}
	}
	return w.file.Write(p)
}

func (w *Writer) rotate(name string) error {
	if w.file != nil {
		w.file.Close()
	}
	full := filepath.Join(w.Dir, name)
	f, err := os.OpenFile(full, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("rotatelog: open %s: %w", full, err)
	}
	w.file = f
	w.curName = name
	w.prune()
	return nil
}

// prune removes rotated files older than RetentionDays. Errors are
// swallowed: a failed prune should never block logging.
func (w *Writer) prune() {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -w.RetentionDays)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}
		ts, err := time.Parse(dateFormat, e.Name())
		if err != nil {
			continue
		}
		if ts.Before(cutoff) {
			os.Remove(filepath.Join(w.Dir, e.Name()))
		}
	}
}

// Close closes the currently open file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// rotatedFiles lists the dated log files present in dir, oldest first —
// used by tests to assert pruning behavior.
func rotatedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".log") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
