package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/leca/dt-photo-cdn/internal/catalog"
	"github.com/leca/dt-photo-cdn/internal/config"
	"github.com/leca/dt-photo-cdn/internal/rendition"
	"github.com/leca/dt-photo-cdn/internal/router"
	"github.com/leca/dt-photo-cdn/internal/stats"
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

	n, err := catalog.Scan(cat, cfg.PhotosDir, cfg.MetadataPath)
	if err != nil {
		slog.Error("failed to scan photos", "error", err)
		os.Exit(1)
	}
	slog.Info("catalog scanned", "images", n)

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
	if err := cache.Reconcile(); err != nil {
		slog.Warn("cache reconciliation failed", "error", err)
	}

	counter := stats.Open(cfg.StatsPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cache.Run(ctx, cfg.SweepInterval, cfg.LedgerPersistInterval, cfg.Retention)
	go counter.Run(ctx, cfg.StatsPersistInterval)

	srv := router.New(cat, cache, counter, cfg)
	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", cfg.ListenAddr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	if err := ledger.Flush(); err != nil {
		slog.Error("final ledger flush failed", "error", err)
	}
	if err := counter.Flush(); err != nil {
		slog.Error("final stats flush failed", "error", err)
	}
	slog.Info("shut down cleanly")
}
