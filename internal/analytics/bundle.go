package analytics

import (
	"github.com/google/uuid"

	"github.com/rickgao/quotefeed/internal/model"
)

// Counts describes how a symbol's records were used.
type Counts struct {
	Records      int // Everything decoded for the symbol
	Trades       int // Timed trades inside the session
	Depths       int // Timed snapshots inside the session
	Untimed      int // Dropped for lack of a usable timestamp
	OutOfSession int // Dropped by the session filter
}

// Bundle is the per-symbol, per-day analysis result handed to sinks.
type Bundle struct {
	Symbol       string
	Market       string
	Date         string
	RunID        uuid.UUID
	Records      []model.Record // All decoded records, time ordered, untimed last
	Chart        Series
	Stats        Stats
	Depth        *DepthView
	DepthHistory []DepthView
	Trades       []TradeDetail
	Sides        SideCounts
	Counts       Counts
}

// Options tune Build.
type Options struct {
	Market  string
	Session Session
	RunID   uuid.UUID
}

// Build runs the full analysis for one symbol's records.
func Build(symbol, date string, records []model.Record, opts Options) *Bundle {
	trades, depths, untimed := Split(records)
	inTrades := opts.Session.Trades(trades)
	inDepths := opts.Session.Depths(depths)

	agg := Aggregate(inTrades)
	details := Details(inTrades, NewBook(inDepths))

	return &Bundle{
		Symbol:       symbol,
		Market:       opts.Market,
		Date:         date,
		RunID:        opts.RunID,
		Records:      SortRecords(records),
		Chart:        agg.Series,
		Stats:        agg.Stats,
		Depth:        Latest(inDepths),
		DepthHistory: History(inDepths),
		Trades:       details,
		Sides:        CountSides(details),
		Counts: Counts{
			Records:      len(records),
			Trades:       len(inTrades),
			Depths:       len(inDepths),
			Untimed:      untimed,
			OutOfSession: len(trades) - len(inTrades) + len(depths) - len(inDepths),
		},
	}
}
