package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/quotefeed/internal/analytics"
	"github.com/rickgao/quotefeed/internal/config"
	"github.com/rickgao/quotefeed/internal/database"
	"github.com/rickgao/quotefeed/internal/export"
	"github.com/rickgao/quotefeed/internal/files"
	"github.com/rickgao/quotefeed/internal/logging"
	"github.com/rickgao/quotefeed/internal/metrics"
	"github.com/rickgao/quotefeed/internal/pipeline"
	"github.com/rickgao/quotefeed/internal/scanner"
	"github.com/rickgao/quotefeed/internal/targets"
	"github.com/rickgao/quotefeed/internal/version"
	"github.com/rickgao/quotefeed/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/quotefeed.yaml", "path to config file")
	date := flag.String("date", "", "only decode this date (YYYYMMDD)")
	flag.Parse()

	os.Exit(run(*configPath, *date))
}

func run(configPath, onlyDate string) (code int) {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		slog.Error("failed to load config", "config", configPath, "error", err)
		return 1
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting decode",
		"version", version.Version,
		"commit", version.Commit,
		"config", configPath,
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

	m := metrics.New()
	if cfg.Metrics.Enabled {
		srv := startMetricsServer(cfg.Metrics, m, logger)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	var pool *pgxpool.Pool
	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return 1
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Error("failed to prepare schema", "error", err)
			return 1
		}
		logger.Info("database connected")
	}

	// A typed-nil pool would defeat NewSource's nil check.
	var querier targets.Querier
	if pool != nil {
		querier = pool
	}
	source, err := targets.NewSource(cfg.Noteworthy, querier)
	if err != nil {
		logger.Error("invalid noteworthy source", "error", err)
		return 1
	}
	noteworthy, err := source.Load(ctx)
	if err != nil {
		logger.Error("failed to load noteworthy symbols", "source", cfg.Noteworthy.Source, "error", err)
		return 1
	}
	logger.Info("noteworthy symbols loaded", "dates", len(noteworthy))

	units, err := files.Discover(cfg.Feed.DataDir, cfg.Feed.Markets)
	if err != nil {
		logger.Error("failed to discover feed files", "error", err)
		return 1
	}
	if onlyDate != "" {
		units = filterDate(units, onlyDate)
	}
	if len(units) == 0 {
		logger.Warn("no feed files found", "data_dir", cfg.Feed.DataDir, "markets", cfg.Feed.Markets)
		return 0
	}

	sinks := make([]export.Sink, 0, 3)
	if cfg.Output.HasFormat(export.FormatJSON) {
		sinks = append(sinks, &export.JSONSink{Dir: cfg.Output.Dir})
	}
	if cfg.Output.HasFormat(export.FormatParquet) {
		sinks = append(sinks, &export.ParquetSink{Dir: cfg.Output.Dir})
	}
	if pool != nil {
		qw := writer.NewQuoteWriter(writer.ConfigFrom(cfg.Writers), pool, logger)
		if err := qw.Start(ctx); err != nil {
			logger.Error("failed to start quote writer", "error", err)
			return 1
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer stopCancel()
			if err := qw.Stop(stopCtx); err != nil {
				logger.Error("database writes incomplete",
					"failed_batches", qw.Stats().Errors,
					"error", err,
				)
				code = 1
			}
		}()
		sinks = append(sinks, qw)
	}

	open, _ := cfg.Session.OpenOffset() // checked by Validate
	proc := pipeline.NewProcessor(
		pipeline.Config{
			Session:      analytics.Session{Open: open, Enabled: cfg.Session.Enabled()},
			OutputDir:    cfg.Output.Dir,
			Formats:      cfg.Output.Formats,
			SkipExisting: cfg.Output.ShouldSkipExisting(),
		},
		scanner.New(scanner.WithLogger(logger), scanner.WithEncoding(cfg.Feed.Encoding)),
		targets.NewSelector(targets.LookbackCalendar{MaxDays: cfg.Noteworthy.LookbackDays}),
		noteworthy,
		sinks,
		m,
		logger,
	)

	logger.Info("decoding",
		"units", len(units),
		"workers", cfg.Workers,
		"sinks", len(sinks),
	)
	results, err := pipeline.NewRunner(proc, cfg.Workers, logger).Run(ctx, units)
	if err != nil {
		logger.Warn("decode interrupted", "error", err)
		return 1
	}

	for _, r := range results {
		if r.Status == pipeline.StatusFailed {
			logger.Error("unit failed", "unit", r.File.Key(), "run_id", r.RunID, "error", r.Err)
		}
	}
	if pipeline.Summarize(results).AllFailed() {
		logger.Error("every unit failed")
		return 1
	}
	return 0
}

func filterDate(units []files.FeedFile, date string) []files.FeedFile {
	var out []files.FeedFile
	for _, u := range units {
		if u.Date == date {
			out = append(out, u)
		}
	}
	return out
}

func startMetricsServer(cfg config.MetricsConfig, m *metrics.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, version.Version)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting metrics server", "port", cfg.Port, "path", cfg.Path)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	return srv
}
