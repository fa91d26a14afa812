// Package stats tracks how many renditions the service has served. The
// counter survives restarts via a small JSON snapshot file.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

type snapshot struct {
	Count int64 `json:"count"`
}

// Counter is a concurrency-safe served-image counter.
type Counter struct {
	path  string
	count atomic.Int64
}

// Open loads the snapshot at path, or starts from zero if it is missing
// or unreadable.
func Open(path string) *Counter {
	c := &Counter{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("stats file unreadable, starting at zero", "path", path, "error", err)
		}
		return c
	}
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		slog.Warn("stats file corrupt, starting at zero", "path", path, "error", err)
		return c
	}
	c.count.Store(s.Count)
	return c
}

// Increment records one served rendition.
func (c *Counter) Increment() {
	c.count.Add(1)
}

// Count returns the current total.
func (c *Counter) Count() int64 {
	return c.count.Load()
}

// Flush writes the snapshot via a temp file and rename.
func (c *Counter) Flush() error {
	data, err := json.Marshal(snapshot{Count: c.count.Load()})
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "stats-*")
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
		return fmt.Errorf("writing stats: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", c.path, err)
	}
	tmpPath = ""
	return nil
}

// Run flushes the counter periodically until ctx is cancelled, then one
// last time on the way out.
func (c *Counter) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.Flush(); err != nil {
				slog.Error("persisting stats failed", "path", c.path, "error", err)
			}
		case <-ctx.Done():
			if err := c.Flush(); err != nil {
				slog.Error("persisting stats failed", "path", c.path, "error", err)
			}
			return
		}
	}
}
