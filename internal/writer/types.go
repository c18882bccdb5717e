package writer

import (
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/quotefeed/internal/config"
)

// Config contains configuration for the batch writer.
type Config struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration

	// BufferSize is the initial queue capacity.
	BufferSize int
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     config.DefaultBatchSize,
		FlushInterval: config.DefaultFlushInterval,
		BufferSize:    config.DefaultBufferSize,
	}
}

// ConfigFrom converts the writers section of the config file.
func ConfigFrom(c config.WritersConfig) Config {
	return Config{
		BatchSize:     c.BatchSize,
		FlushInterval: c.FlushInterval,
		BufferSize:    c.BufferSize,
	}
}

// Metrics holds counters for a writer.
type Metrics struct {
	Queued    int64
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}

// row is a pending insert.
type row interface {
	queue(b *pgx.Batch)
}

// tradeRow represents a row for the quote_trades table.
type tradeRow struct {
	TradeDate time.Time
	Market    string
	Symbol    string
	Ts        time.Time
	Seq       int
	PreMatch  bool
	Price     *int64 // Ten-thousandths
	Volume    *int64
	Side      string
	RunID     string
}

func (r tradeRow) queue(b *pgx.Batch) {
	b.Queue(`
		INSERT INTO quote_trades (trade_date, market, symbol, ts, seq, pre_match, price_e4, volume, side, run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (symbol, ts, seq) DO NOTHING
	`, r.TradeDate, r.Market, r.Symbol, r.Ts, r.Seq, r.PreMatch, r.Price, r.Volume, r.Side, r.RunID)
}

// depthRow represents a row for the quote_depths table.
type depthRow struct {
	TradeDate time.Time
	Market    string
	Symbol    string
	Ts        time.Time
	Seq       int
	Bids      []byte // JSONB: [{price: int, volume: int}, ...]
	Asks      []byte // JSONB
	BestBid   *int64
	BestAsk   *int64
	RunID     string
}

func (r depthRow) queue(b *pgx.Batch) {
	b.Queue(`
		INSERT INTO quote_depths (trade_date, market, symbol, ts, seq, bids, asks, best_bid_e4, best_ask_e4, run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (symbol, ts, seq) DO NOTHING
	`, r.TradeDate, r.Market, r.Symbol, r.Ts, r.Seq, r.Bids, r.Asks, r.BestBid, r.BestAsk, r.RunID)
}

// statsRow represents a row for the quote_stats table.
type statsRow struct {
	TradeDate   time.Time
	Market      string
	Symbol      string
	Open        *int64
	High        *int64
	Low         *int64
	Close       *int64
	Average     float64
	ChangePct   float64
	TradeCount  int
	Volume      int64
	TotalVolume int64
	Buyer       int
	Seller      int
	Ambiguous   int
	RunID       string
}

func (r statsRow) queue(b *pgx.Batch) {
	b.Queue(`
		INSERT INTO quote_stats (trade_date, market, symbol, open_e4, high_e4, low_e4, close_e4,
			average, change_pct, trade_count, volume, total_volume, buyer, seller, ambiguous, run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (trade_date, market, symbol) DO NOTHING
	`, r.TradeDate, r.Market, r.Symbol, r.Open, r.High, r.Low, r.Close,
		r.Average, r.ChangePct, r.TradeCount, r.Volume, r.TotalVolume, r.Buyer, r.Seller, r.Ambiguous, r.RunID)
}
