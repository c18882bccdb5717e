package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/quotefeed/internal/config"
	"github.com/rickgao/quotefeed/internal/logging"
	"github.com/rickgao/quotefeed/internal/metrics"
	"github.com/rickgao/quotefeed/internal/version"
	"github.com/rickgao/quotefeed/internal/viewer"
)

func main() {
	configPath := flag.String("config", "configs/quotefeed.yaml", "path to config file")
	addr := flag.String("addr", "", "listen address (overrides viewer.addr)")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "config", *configPath, "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Viewer.Addr = *addr
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting viewer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	srv := viewer.New(viewer.Config{
		Dir:         cfg.Output.Dir,
		MetricsPath: cfg.Metrics.Path,
		ReplayRate:  cfg.Viewer.ReplayRate,
		ReplayBurst: cfg.Viewer.ReplayBurst,
	}, metrics.New(), logger)

	httpServer := &http.Server{
		Addr:              cfg.Viewer.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("viewer listening", "addr", cfg.Viewer.Addr, "output_dir", cfg.Output.Dir)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("viewer server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	logger.Info("viewer stopped")
}
