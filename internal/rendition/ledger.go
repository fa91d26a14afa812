package rendition

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Ledger tracks the last-access timestamp of every cache file. It is
// shared by request handlers, the eviction sweep, and the persistence
// timer; all access goes through the mutex. On disk it is a whole-file
// JSON snapshot mapping cache path to RFC 3339 timestamp.
type Ledger struct {
	mu      sync.Mutex
	path    string
	entries map[string]time.Time
}

// OpenLedger loads the snapshot at path, or starts empty if the file is
// missing or unreadable. A corrupt ledger is not fatal: the reconciliation
// sweep will clear any cache files it no longer covers.
func OpenLedger(path string) *Ledger {
	l := &Ledger{
		path:    path,
		entries: make(map[string]time.Time),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cache ledger unreadable, starting empty", "path", path, "error", err)
		}
		return l
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		slog.Warn("cache ledger corrupt, starting empty", "path", path, "error", err)
		l.entries = make(map[string]time.Time)
	}
	return l
}

// Touch records dest as accessed now. Called on every successful serve,
// hit or miss, so entries in active use never age out.
func (l *Ledger) Touch(dest string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[dest] = time.Now()
}

// Remove drops dest from the ledger.
func (l *Ledger) Remove(dest string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, dest)
}

// Contains reports whether dest has a ledger entry.
func (l *Ledger) Contains(dest string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[dest]
	return ok
}

// Len returns the number of tracked cache files.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// EvictBefore removes every entry older than cutoff and returns the
// removed paths. The caller is responsible for deleting the files;
// the entries are gone from the ledger regardless of whether those
// deletions succeed, to avoid unbounded retry.
func (l *Ledger) EvictBefore(cutoff time.Time) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var evicted []string
	for dest, ts := range l.entries {
		if ts.Before(cutoff) {
			evicted = append(evicted, dest)
			delete(l.entries, dest)
		}
	}
	return evicted
}

// Flush writes the current snapshot to the ledger file via a temp file and
// rename, so a crash mid-write never leaves a truncated snapshot.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	data, err := json.Marshal(l.entries)
	l.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, "ledger-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", l.path, err)
	}
	tmpPath = ""
	return nil
}
