package rendition

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/leca/dt-photo-cdn/internal/imageproc"
	"github.com/leca/dt-photo-cdn/internal/model"
)

// TransformFunc runs the pixel pipeline on a source image.
type TransformFunc func(src io.Reader, opts imageproc.Options) ([]byte, error)

// Result is a served rendition: the cache path it lives at (or would live
// at, if persistence failed) and its bytes.
type Result struct {
	Path string
	Data []byte
}

// Cache is the transform-cache orchestrator. Given a transform request it
// derives the destination path, probes the hot LRU and then the cache
// directory, and on a miss renders the rendition and publishes it
// atomically. Concurrent requests for the same destination share a single
// render via the singleflight group.
type Cache struct {
	dir       string
	ledger    *Ledger
	hot       *lru.Cache[string, []byte]
	group     singleflight.Group
	timeout   time.Duration
	transform TransformFunc
}

// New creates a Cache over dir, backed by ledger. hotSize bounds the
// in-memory rendition cache; timeout bounds a single render (zero means
// unbounded).
func New(dir string, ledger *Ledger, hotSize int, timeout time.Duration) (*Cache, error) {
	if hotSize <= 0 {
		hotSize = 128
	}
	hot, err := lru.New[string, []byte](hotSize)
	if err != nil {
		return nil, fmt.Errorf("creating hot cache: %w", err)
	}
	return &Cache{
		dir:       dir,
		ledger:    ledger,
		hot:       hot,
		timeout:   timeout,
		transform: imageproc.Transform,
	}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Get returns the rendition for req, rendering and caching it if absent.
// A pipeline failure surfaces as a single wrapped error with the source
// and destination paths; no partial file is left behind.
func (c *Cache) Get(ctx context.Context, req model.TransformRequest) (*Result, error) {
	req.Gravity = req.Gravity.Normalize()
	dest := Destination(c.dir, req)

	v, err, _ := c.group.Do(dest, func() (interface{}, error) {
		return c.lookupOrRender(ctx, req, dest)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (c *Cache) lookupOrRender(ctx context.Context, req model.TransformRequest, dest string) (*Result, error) {
	if data, ok := c.hot.Get(dest); ok {
		// The file may have been evicted out from under the hot entry
		// (another process sharing the cache dir, or a manual cleanup).
		// Republish before touching the ledger so it never tracks a
		// path with no backing file.
		if c.exists(dest) {
			c.ledger.Touch(dest)
		} else if err := c.commit(dest, data); err != nil {
			slog.Error("persisting rendition failed", "path", dest, "error", err)
		} else {
			c.ledger.Touch(dest)
		}
		return &Result{Path: dest, Data: data}, nil
	}

	// Any stat error counts as a miss: a transient filesystem hiccup
	// triggers regeneration instead of failing the request.
	if c.exists(dest) {
		data, err := os.ReadFile(dest)
		if err == nil {
			c.ledger.Touch(dest)
			c.hot.Add(dest, data)
			return &Result{Path: dest, Data: data}, nil
		}
		slog.Warn("cache file unreadable, regenerating", "path", dest, "error", err)
	}

	data, err := c.render(ctx, req)
	if err != nil {
		c.discard(dest)
		return nil, fmt.Errorf("rendering %s from %s: %w", dest, req.SourceFilename, err)
	}

	if err := c.commit(dest, data); err != nil {
		// The in-memory rendition is still good; serve it and accept
		// that the next request for this key will miss again.
		slog.Error("persisting rendition failed", "path", dest, "error", err)
	} else {
		c.ledger.Touch(dest)
	}

	c.hot.Add(dest, data)
	return &Result{Path: dest, Data: data}, nil
}

func (c *Cache) exists(dest string) bool {
	_, err := os.Stat(dest)
	return err == nil
}

// render runs the pixel pipeline under the configured timeout. A stuck
// decode counts as a pipeline failure like any other stage error.
func (c *Cache) render(ctx context.Context, req model.TransformRequest) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	type rendered struct {
		data []byte
		err  error
	}
	done := make(chan rendered, 1)
	go func() {
		f, err := os.Open(req.SourceFilename)
		if err != nil {
			done <- rendered{nil, fmt.Errorf("opening source: %w", err)}
			return
		}
		defer f.Close()
		data, err := c.transform(f, imageproc.Options{
			Width:     req.Width,
			Height:    req.Height,
			Gravity:   req.Gravity,
			Grayscale: req.Grayscale,
			Blur:      req.Blur,
		})
		done <- rendered{data, err}
	}()

	select {
	case r := <-done:
		return r.data, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// commit publishes data at dest atomically: write to a temp file in the
// cache directory, then rename, so a reader never observes a truncated
// rendition.
func (c *Cache) commit(dest string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, "rendition-*")
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
		return fmt.Errorf("writing rendition: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", dest, err)
	}
	tmpPath = ""
	return nil
}

// discard removes whatever is at dest, best effort. A failed transform
// must never leave a corrupt file for the next existence probe to find.
func (c *Cache) discard(dest string) {
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		slog.Warn("removing partial rendition failed", "path", dest, "error", err)
	}
	c.hot.Remove(dest)
}
