// Package database manages the optional TimescaleDB connection.
//
// Decoded trades, depth snapshots and per-symbol daily statistics are
// mirrored into quote_trades, quote_depths and quote_stats. The same pool can
// serve the noteworthy symbol list (see targets.PostgresSource).
package database
