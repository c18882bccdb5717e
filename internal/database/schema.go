package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used for schema management.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tables creates the quote tables. Statements are idempotent. Prices are
// BIGINT ten-thousandths; depth levels are JSONB arrays of {price, volume}.
var Tables = []string{
	`CREATE TABLE IF NOT EXISTS quote_trades (
		trade_date   DATE        NOT NULL,
		market       TEXT        NOT NULL,
		symbol       TEXT        NOT NULL,
		ts           TIMESTAMPTZ NOT NULL,
		seq          INTEGER     NOT NULL,
		pre_match    BOOLEAN     NOT NULL,
		price_e4     BIGINT,
		volume       BIGINT,
		side         TEXT        NOT NULL,
		run_id       UUID        NOT NULL,
		PRIMARY KEY (symbol, ts, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS quote_depths (
		trade_date   DATE        NOT NULL,
		market       TEXT        NOT NULL,
		symbol       TEXT        NOT NULL,
		ts           TIMESTAMPTZ NOT NULL,
		seq          INTEGER     NOT NULL,
		bids         JSONB       NOT NULL,
		asks         JSONB       NOT NULL,
		best_bid_e4  BIGINT,
		best_ask_e4  BIGINT,
		run_id       UUID        NOT NULL,
		PRIMARY KEY (symbol, ts, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS quote_stats (
		trade_date   DATE             NOT NULL,
		market       TEXT             NOT NULL,
		symbol       TEXT             NOT NULL,
		open_e4      BIGINT,
		high_e4      BIGINT,
		low_e4       BIGINT,
		close_e4     BIGINT,
		average      DOUBLE PRECISION NOT NULL,
		change_pct   DOUBLE PRECISION NOT NULL,
		trade_count  INTEGER          NOT NULL,
		volume       BIGINT           NOT NULL,
		total_volume BIGINT           NOT NULL,
		buyer        INTEGER          NOT NULL,
		seller       INTEGER          NOT NULL,
		ambiguous    INTEGER          NOT NULL,
		run_id       UUID             NOT NULL,
		PRIMARY KEY (trade_date, market, symbol)
	)`,
}

// Hypertables converts the time-series tables when TimescaleDB is present.
var Hypertables = []string{
	`SELECT create_hypertable('quote_trades', 'ts', if_not_exists => TRUE, migrate_data => TRUE)`,
	`SELECT create_hypertable('quote_depths', 'ts', if_not_exists => TRUE, migrate_data => TRUE)`,
}

// EnsureSchema creates the tables and, if the timescaledb extension is
// installed, converts them to hypertables.
func EnsureSchema(ctx context.Context, db DB) error {
	for i, stmt := range Tables {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table %d: %w", i, err)
		}
	}

	ok, err := HasTimescale(ctx, db)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	for i, stmt := range Hypertables {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create hypertable %d: %w", i, err)
		}
	}
	return nil
}

// HasTimescale reports whether the timescaledb extension is installed.
func HasTimescale(ctx context.Context, db DB) (bool, error) {
	var ok bool
	err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'timescaledb')`).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check timescaledb extension: %w", err)
	}
	return ok, nil
}
