// Command warmcache pre-renders the default listing rendition for every
// catalog image, so first page loads after a deploy hit a warm cache.
package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/leca/dt-photo-cdn/internal/catalog"
	"github.com/leca/dt-photo-cdn/internal/config"
	"github.com/leca/dt-photo-cdn/internal/model"
	"github.com/leca/dt-photo-cdn/internal/rendition"
)

// The listing page requests every thumbnail at this size.
const (
	warmWidth       = 458
	warmHeight      = 354
	warmConcurrency = 5
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	cat, err := catalog.NewSQLiteCatalog(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}
	defer cat.Close()

	images, err := cat.ListImages()
	if err != nil {
		slog.Error("failed to list images", "error", err)
		os.Exit(1)
	}

	// Optional start offset, for resuming an interrupted run.
	if len(os.Args) > 1 {
		start, err := strconv.Atoi(os.Args[1])
		if err != nil || start < 0 || start > len(images) {
			slog.Error("invalid start index", "arg", os.Args[1])
			os.Exit(1)
		}
		images = images[start:]
	}

	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		slog.Error("failed to create cache dir", "path", cfg.CacheDir, "error", err)
		os.Exit(1)
	}

	ledger := rendition.OpenLedger(cfg.LedgerPath)
	cache, err := rendition.New(cfg.CacheDir, ledger, cfg.HotCacheSize, cfg.RenderTimeout)
	if err != nil {
		slog.Error("failed to create rendition cache", "error", err)
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(warmConcurrency)

	for _, img := range images {
		img := img
		g.Go(func() error {
			_, err := cache.Get(ctx, model.TransformRequest{
				Width:          warmWidth,
				Height:         warmHeight,
				Gravity:        model.GravityCenter,
				SourceFilename: img.Filename,
				Naming:         model.NamingDescriptive,
			})
			if err != nil {
				// Keep warming the rest; one bad source should not
				// abort the whole run.
				slog.Error("warming image failed", "id", img.ID, "filename", img.Filename, "error", err)
				return nil
			}
			slog.Info("warmed image", "id", img.ID)
			return nil
		})
	}

	_ = g.Wait()

	if err := ledger.Flush(); err != nil {
		slog.Error("final ledger flush failed", "error", err)
		os.Exit(1)
	}
	slog.Info("done", "images", len(images))
}
