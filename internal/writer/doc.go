// Package writer mirrors analysis bundles into TimescaleDB.
//
// QuoteWriter turns each bundle into trade, depth and stats rows, queues
// them on a growable in-memory queue and inserts them in pgx batches from a
// single consumer goroutine. Inserts are append-only with
// ON CONFLICT DO NOTHING, so re-running a day is idempotent.
// Prices are stored as integer ten-thousandths.
package writer
