package rendition

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EvictStale removes every rendition whose ledger timestamp is older than
// retention, from the ledger and from disk. File deletion failures are
// logged and tolerated; the ledger entry is gone either way, favoring
// forward progress over a leak-free guarantee. Returns the number of
// evicted entries.
func (c *Cache) EvictStale(retention time.Duration) int {
	cutoff := time.Now().Add(-retention)
	evicted := c.ledger.EvictBefore(cutoff)
	for _, dest := range evicted {
		c.hot.Remove(dest)
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			slog.Warn("evicting cache file failed", "path", dest, "error", err)
		}
	}
	if len(evicted) > 0 {
		slog.Info("evicted stale renditions", "count", len(evicted))
	}
	return len(evicted)
}

// Reconcile deletes cache files that have no ledger entry, recovering from
// ledger/disk divergence after a crash. Run at startup, before traffic.
// In-flight temp files from commit are left alone.
func (c *Cache) Reconcile() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "rendition-") {
			continue
		}
		dest := filepath.Join(c.dir, entry.Name())
		if c.ledger.Contains(dest) {
			continue
		}
		if err := os.Remove(dest); err != nil {
			slog.Warn("removing orphaned cache file failed", "path", dest, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		slog.Info("removed orphaned cache files", "count", removed)
	}
	return nil
}

// Run drives the periodic eviction sweep and ledger persistence until ctx
// is cancelled, then flushes the ledger one last time. The two timers are
// independent and safe to interleave with live traffic.
func (c *Cache) Run(ctx context.Context, sweepEvery, persistEvery, retention time.Duration) {
	sweep := time.NewTicker(sweepEvery)
	defer sweep.Stop()
	persist := time.NewTicker(persistEvery)
	defer persist.Stop()

	for {
		select {
		case <-sweep.C:
			c.EvictStale(retention)
		case <-persist.C:
			if err := c.ledger.Flush(); err != nil {
				slog.Error("persisting cache ledger failed", "path", c.ledger.path, "error", err)
			}
		case <-ctx.Done():
			if err := c.ledger.Flush(); err != nil {
				slog.Error("persisting cache ledger failed", "path", c.ledger.path, "error", err)
			}
			return
		}
	}
}
