package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/quotefeed/internal/analytics"
	"github.com/rickgao/quotefeed/internal/export"
	"github.com/rickgao/quotefeed/internal/feed"
	"github.com/rickgao/quotefeed/internal/files"
	"github.com/rickgao/quotefeed/internal/metrics"
	"github.com/rickgao/quotefeed/internal/model"
	"github.com/rickgao/quotefeed/internal/scanner"
	"github.com/rickgao/quotefeed/internal/targets"
)

// Status is the outcome of a unit.
type Status string

const (
	StatusOK      Status = metrics.UnitOK
	StatusFailed  Status = metrics.UnitFailed
	StatusSkipped Status = metrics.UnitSkipped
)

// UnitResult describes one processed unit.
type UnitResult struct {
	File     files.FeedFile
	RunID    uuid.UUID
	Status   Status
	Reason   string // Why a unit was skipped
	Err      error
	Targets  int
	Symbols  int // Symbols with at least one record
	Written  int // Symbols written to every sink
	Stats    scanner.Stats
	Duration time.Duration
}

// Config holds processor settings.
type Config struct {
	Session      analytics.Session
	OutputDir    string
	Formats      []string // File formats checked by skip-existing
	SkipExisting bool
}

// Processor handles one unit at a time. It is safe for concurrent use when
// its sinks are.
type Processor struct {
	cfg        Config
	scanner    *scanner.Scanner
	selector   *targets.Selector
	noteworthy targets.Noteworthy
	sinks      []export.Sink
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewProcessor creates a Processor. metrics may be nil.
func NewProcessor(
	cfg Config,
	sc *scanner.Scanner,
	selector *targets.Selector,
	noteworthy targets.Noteworthy,
	sinks []export.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		cfg:        cfg,
		scanner:    sc,
		selector:   selector,
		noteworthy: noteworthy,
		sinks:      sinks,
		metrics:    m,
		logger:     logger,
	}
}

// Process runs the unit for f and reports its outcome.
func (p *Processor) Process(ctx context.Context, f files.FeedFile) UnitResult {
	start := time.Now()
	res := UnitResult{File: f, RunID: uuid.New()}
	logger := p.logger.With("market", f.Market, "date", f.Date, "run_id", res.RunID)

	finish := func(status Status, err error) UnitResult {
		res.Status = status
		res.Err = err
		res.Duration = time.Since(start)
		p.metrics.ObserveUnit(string(status), res.Duration)
		return res
	}

	want, err := p.selector.Targets(p.noteworthy, f.Date)
	if err != nil {
		logger.Error("failed to select targets", "error", err)
		return finish(StatusFailed, err)
	}
	res.Targets = len(want)
	if len(want) == 0 {
		res.Reason = "no noteworthy symbols"
		logger.Info("skipping unit", "reason", res.Reason)
		return finish(StatusSkipped, nil)
	}
	if p.cfg.SkipExisting && export.Complete(p.cfg.OutputDir, f.Date, want, p.cfg.Formats) {
		res.Reason = "output exists"
		logger.Info("skipping unit", "reason", res.Reason, "targets", len(want))
		return finish(StatusSkipped, nil)
	}

	day, err := feed.ParseDate(f.Date)
	if err != nil {
		return finish(StatusFailed, err)
	}

	scan, err := p.scanner.ScanFile(ctx, f.Path, want, day)
	if err != nil {
		logger.Error("failed to scan feed", "error", err)
		return finish(StatusFailed, err)
	}
	res.Stats = scan.Stats
	res.Symbols = len(scan.Records)
	p.metrics.AddLines(int(scan.Stats.Trades+scan.Stats.Depths), int(scan.Stats.Skipped), int(scan.Stats.Errors))
	p.metrics.AddRecords(int(scan.Stats.Trades), int(scan.Stats.Depths))

	for _, symbol := range scan.Symbols() {
		if err := ctx.Err(); err != nil {
			return finish(StatusFailed, err)
		}
		if p.writeSymbol(ctx, logger, f, res.RunID, symbol, scan.Records[symbol]) {
			res.Written++
		}
	}

	logger.Info("unit complete",
		"targets", res.Targets,
		"symbols", res.Symbols,
		"written", res.Written,
		"trades", scan.Stats.Trades,
		"depths", scan.Stats.Depths,
		"errors", scan.Stats.Errors,
		"duration", time.Since(start),
	)
	if res.Written < res.Symbols {
		return finish(StatusFailed, fmt.Errorf("%d of %d symbols failed to write", res.Symbols-res.Written, res.Symbols))
	}
	return finish(StatusOK, nil)
}

// writeSymbol builds the bundle for one symbol and hands it to every sink.
// It reports whether all sinks succeeded.
func (p *Processor) writeSymbol(ctx context.Context, logger *slog.Logger, f files.FeedFile, runID uuid.UUID, symbol string, records []model.Record) bool {
	bundle := analytics.Build(symbol, f.Date, records, analytics.Options{
		Market:  f.Market,
		Session: p.cfg.Session,
		RunID:   runID,
	})

	ok := true
	for _, sink := range p.sinks {
		if err := sink.Write(ctx, bundle); err != nil {
			logger.Warn("failed to write symbol",
				"symbol", symbol,
				"sink", sink.Name(),
				"error", err,
			)
			ok = false
			continue
		}
		p.metrics.SymbolWritten(sink.Name())
	}
	return ok
}
