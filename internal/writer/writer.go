package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/quotefeed/internal/analytics"
)

var (
	// ErrClosed is returned by Write after Stop.
	ErrClosed = errors.New("writer: closed")

	// ErrInsertFailed is returned by Stop when any batch failed to insert.
	// Write only queues, so this is where such failures surface.
	ErrInsertFailed = errors.New("writer: batch insert failed")
)

// BatchSender is satisfied by *pgxpool.Pool.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// QuoteWriter queues bundle rows and writes them to TimescaleDB in batches.
type QuoteWriter struct {
	cfg    Config
	logger *slog.Logger

	input *Queue[row]

	// Database
	db BatchSender

	// Batching
	batch       []row
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	flushCtx context.Context // Outlives Stop so the final flush can run
	cancel   context.CancelFunc
	consumer sync.WaitGroup
	ticker   sync.WaitGroup

	// Metrics
	metrics Metrics
}

// NewQuoteWriter creates a new QuoteWriter.
func NewQuoteWriter(cfg Config, db BatchSender, logger *slog.Logger) *QuoteWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &QuoteWriter{
		cfg:    cfg,
		input:  NewQueue[row](cfg.BufferSize),
		db:     db,
		logger: logger,
		batch:  make([]row, 0, cfg.BatchSize),
	}
}

// Name identifies the writer as an output sink.
func (w *QuoteWriter) Name() string { return "timescale" }

// Write queues the rows for b. It does not wait for the insert.
func (w *QuoteWriter) Write(ctx context.Context, b *analytics.Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, err := transform(b)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if !w.input.Push(r) {
			return ErrClosed
		}
	}

	w.batchMu.Lock()
	w.metrics.Queued += int64(len(rows))
	w.batchMu.Unlock()
	return nil
}

// Start begins consuming queued rows and writing to the database.
func (w *QuoteWriter) Start(ctx context.Context) error {
	var tickCtx context.Context
	tickCtx, w.cancel = context.WithCancel(ctx)
	w.flushCtx = context.WithoutCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.consumer.Add(1)
	go w.consumeLoop()

	w.ticker.Add(1)
	go w.flushLoop(tickCtx)

	w.logger.Info("quote writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop closes the queue, waits for queued rows to be batched and flushes
// them. If ctx expires first, rows still queued are dropped. Batches that
// failed during the writer's lifetime are reported as ErrInsertFailed.
func (w *QuoteWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping quote writer")

	w.input.Close()

	done := make(chan struct{})
	go func() {
		w.consumer.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		w.logger.Warn("quote writer stop timed out", "pending", w.input.Len())
	}

	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}
	w.ticker.Wait()

	// Final flush
	w.flush()

	stats := w.Stats()
	w.logger.Info("quote writer stopped",
		"inserts", stats.Inserts,
		"conflicts", stats.Conflicts,
		"errors", stats.Errors,
	)
	if err == nil && stats.Errors > 0 {
		err = fmt.Errorf("%w: %d batches", ErrInsertFailed, stats.Errors)
	}
	return err
}

// Stats returns current metrics.
func (w *QuoteWriter) Stats() Metrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop moves rows from the queue into the batch until the queue is
// closed and empty.
func (w *QuoteWriter) consumeLoop() {
	defer w.consumer.Done()

	for {
		r, ok := w.input.Pop()
		if !ok {
			return
		}
		w.handleRow(r)
	}
}

// flushLoop periodically flushes the batch.
func (w *QuoteWriter) flushLoop(ctx context.Context) {
	defer w.ticker.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush()
		}
	}
}

// handleRow adds a row to the batch, flushing when it is full.
func (w *QuoteWriter) handleRow(r row) {
	w.batchMu.Lock()
	w.batch = append(w.batch, r)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

// flush writes the current batch to the database.
func (w *QuoteWriter) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]row, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed quote rows",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert sends rows as one pgx.Batch. Rows skipped by ON CONFLICT
// count as conflicts.
func (w *QuoteWriter) batchInsert(rows []row) (conflicts int, err error) {
	if w.db == nil {
		return 0, errors.New("writer: no database")
	}
	ctx := w.flushCtx
	if ctx == nil {
		ctx = context.Background()
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		r.queue(batch)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
