package rendition

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_FlushAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")

	l := OpenLedger(path)
	l.Touch("/cache/a.jpeg")
	l.Touch("/cache/b.jpeg")
	require.NoError(t, l.Flush())

	reloaded := OpenLedger(path)
	assert.Equal(t, 2, reloaded.Len())
	assert.True(t, reloaded.Contains("/cache/a.jpeg"))
	assert.True(t, reloaded.Contains("/cache/b.jpeg"))
}

func TestLedger_MissingFileStartsEmpty(t *testing.T) {
	l := OpenLedger(filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, 0, l.Len())
}

func TestLedger_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	l := OpenLedger(path)
	assert.Equal(t, 0, l.Len())
}

func TestLedger_EvictBefore(t *testing.T) {
	l := OpenLedger(filepath.Join(t.TempDir(), "ledger.json"))
	l.Touch("/cache/old.jpeg")
	l.Touch("/cache/young.jpeg")

	// Backdate one entry past the cutoff.
	l.mu.Lock()
	l.entries["/cache/old.jpeg"] = time.Now().Add(-15 * 24 * time.Hour)
	l.mu.Unlock()

	evicted := l.EvictBefore(time.Now().Add(-14 * 24 * time.Hour))
	assert.Equal(t, []string{"/cache/old.jpeg"}, evicted)
	assert.False(t, l.Contains("/cache/old.jpeg"))
	assert.True(t, l.Contains("/cache/young.jpeg"))
}

func TestLedger_RemoveAndContains(t *testing.T) {
	l := OpenLedger(filepath.Join(t.TempDir(), "ledger.json"))
	l.Touch("/cache/x.jpeg")
	assert.True(t, l.Contains("/cache/x.jpeg"))

	l.Remove("/cache/x.jpeg")
	assert.False(t, l.Contains("/cache/x.jpeg"))
}
