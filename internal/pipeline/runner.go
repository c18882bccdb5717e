package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/quotefeed/internal/files"
)

// UnitProcessor processes one unit. *Processor implements it.
type UnitProcessor interface {
	Process(ctx context.Context, f files.FeedFile) UnitResult
}

// Runner processes units with bounded concurrency.
type Runner struct {
	proc    UnitProcessor
	workers int
	logger  *slog.Logger
}

// NewRunner creates a Runner. workers < 1 means one.
func NewRunner(proc UnitProcessor, workers int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Runner{proc: proc, workers: workers, logger: logger}
}

// Run processes every unit and returns their results in input order. Unit
// failures are reported in the results; the returned error is only the
// context's, and units not started before cancellation are absent (zero
// Status).
func (r *Runner) Run(ctx context.Context, units []files.FeedFile) ([]UnitResult, error) {
	start := time.Now()
	results := make([]UnitResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	var completed atomic.Int64
	total := len(units)

	for i, u := range units {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return nil
			}
			results[i] = r.proc.Process(gctx, u)
			n := completed.Add(1)
			r.logger.Info("progress",
				"completed", n,
				"total", total,
				"unit", u.Key(),
				"status", results[i].Status,
			)
			return nil
		})
	}
	_ = g.Wait()

	sum := Summarize(results)
	r.logger.Info("decode cycle complete",
		"units", total,
		"ok", sum.OK,
		"failed", sum.Failed,
		"skipped", sum.Skipped,
		"duration", time.Since(start),
	)
	return results, ctx.Err()
}

// Summary counts unit outcomes.
type Summary struct {
	OK      int
	Failed  int
	Skipped int
}

// Summarize tallies results. Units that never ran are not counted.
func Summarize(results []UnitResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusOK:
			s.OK++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// AllFailed reports whether at least one unit ran and none succeeded or
// were skipped.
func (s Summary) AllFailed() bool {
	return s.Failed > 0 && s.OK == 0 && s.Skipped == 0
}
