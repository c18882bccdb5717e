package export

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/quotefeed/internal/analytics"
	"github.com/rickgao/quotefeed/internal/model"
)

// TimeLayout formats instants in documents (exchange local time, µs).
const TimeLayout = "2006-01-02 15:04:05.000000"

// Document is the JSON form of an analytics.Bundle.
type Document struct {
	Symbol       string      `json:"symbol"`
	Market       string      `json:"market,omitempty"`
	Date         string      `json:"date"`
	RunID        string      `json:"run_id"`
	Chart        Chart       `json:"chart"`
	Depth        *DepthDoc   `json:"depth"`
	DepthHistory []DepthDoc  `json:"depth_history"`
	Trades       []TradeDoc  `json:"trades"`
	Stats        StatsDoc    `json:"stats"`
	Sides        SidesDoc    `json:"sides"`
	Counts       CountsDoc   `json:"counts"`
	Records      []RecordDoc `json:"records"` // Every decoded record, untimed last
}

// Chart holds parallel per-trade series for plotting.
type Chart struct {
	Timestamps        []string  `json:"timestamps"`
	Prices            []float64 `json:"prices"`
	Volumes           []int64   `json:"volumes"`
	CumulativeVolumes []int64   `json:"cumulative_volumes"`
	TotalVolumes      []int64   `json:"total_volumes"` // As reported by the feed
	VWAP              []float64 `json:"vwap"`
}

// LevelDoc is one book level.
type LevelDoc struct {
	Price  decimal.Decimal `json:"price"`
	Volume int64           `json:"volume"`
}

// DepthDoc is a compacted snapshot.
type DepthDoc struct {
	Timestamp string     `json:"timestamp"`
	Bids      []LevelDoc `json:"bids"`
	Asks      []LevelDoc `json:"asks"`
}

// TradeDoc is one tape row.
type TradeDoc struct {
	Timestamp string           `json:"timestamp"`
	Price     *decimal.Decimal `json:"price"`
	Volume    *int64           `json:"volume"`
	PreMatch  bool             `json:"pre_match"`
	Side      string           `json:"side"` // outer, inner or ambiguous
}

// StatsDoc carries exact decimals as strings.
type StatsDoc struct {
	Open         decimal.Decimal `json:"open"`
	High         decimal.Decimal `json:"high"`
	Low          decimal.Decimal `json:"low"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Average      decimal.Decimal `json:"average"`
	Change       decimal.Decimal `json:"change"`
	ChangePct    decimal.Decimal `json:"change_pct"`
	TradeCount   int             `json:"trade_count"`
	RawTrades    int             `json:"raw_trades"`
	Volume       int64           `json:"volume"`
	TotalVolume  int64           `json:"total_volume"`
	Valid        bool            `json:"valid"`
	HasRange     bool            `json:"has_range"`
}

// SidesDoc tallies classified trades.
type SidesDoc struct {
	Outer     int `json:"outer"`
	Inner     int `json:"inner"`
	Ambiguous int `json:"ambiguous"`
}

// CountsDoc mirrors analytics.Counts.
type CountsDoc struct {
	Records      int `json:"records"`
	Trades       int `json:"trades"`
	Depths       int `json:"depths"`
	Untimed      int `json:"untimed"`
	OutOfSession int `json:"out_of_session"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

func levelDocs(levels []model.Level) []LevelDoc {
	out := make([]LevelDoc, len(levels))
	for i, l := range levels {
		out[i] = LevelDoc{Price: l.Price.Decimal(), Volume: l.Volume}
	}
	return out
}

func depthDoc(v analytics.DepthView) DepthDoc {
	return DepthDoc{
		Timestamp: formatTime(v.Time),
		Bids:      levelDocs(v.Bids),
		Asks:      levelDocs(v.Asks),
	}
}

// NewDocument converts b for serialization.
func NewDocument(b *analytics.Bundle) *Document {
	doc := &Document{
		Symbol: b.Symbol,
		Market: b.Market,
		Date:   b.Date,
		RunID:  b.RunID.String(),
		Stats: StatsDoc{
			Open:         b.Stats.Open,
			High:         b.Stats.High,
			Low:          b.Stats.Low,
			CurrentPrice: b.Stats.Close,
			Average:      b.Stats.Average,
			Change:       b.Stats.Change,
			ChangePct:    b.Stats.ChangePct.Round(2),
			TradeCount:   b.Stats.TradeCount,
			RawTrades:    b.Stats.RawTrades,
			Volume:       b.Stats.Volume,
			TotalVolume:  b.Stats.TotalVolume,
			Valid:        b.Stats.Valid,
			HasRange:     b.Stats.HasRange,
		},
		Sides: SidesDoc{
			Outer:     b.Sides.Buyer,
			Inner:     b.Sides.Seller,
			Ambiguous: b.Sides.Ambiguous,
		},
		Counts: CountsDoc(b.Counts),
	}

	n := b.Chart.Len()
	doc.Chart = Chart{
		Timestamps:        make([]string, n),
		Prices:            make([]float64, n),
		Volumes:           b.Chart.Volumes,
		CumulativeVolumes: b.Chart.CumVolumes,
		TotalVolumes:      b.Chart.FeedTotals,
		VWAP:              make([]float64, n),
	}
	for i := 0; i < n; i++ {
		doc.Chart.Timestamps[i] = formatTime(b.Chart.Times[i])
		doc.Chart.Prices[i] = b.Chart.Prices[i].InexactFloat64()
		doc.Chart.VWAP[i] = b.Chart.VWAP[i].Round(4).InexactFloat64()
	}
	if doc.Chart.Volumes == nil {
		doc.Chart.Volumes = []int64{}
		doc.Chart.CumulativeVolumes = []int64{}
		doc.Chart.TotalVolumes = []int64{}
	}

	if b.Depth != nil {
		d := depthDoc(*b.Depth)
		doc.Depth = &d
	}
	doc.DepthHistory = make([]DepthDoc, len(b.DepthHistory))
	for i, v := range b.DepthHistory {
		doc.DepthHistory[i] = depthDoc(v)
	}

	doc.Trades = make([]TradeDoc, len(b.Trades))
	for i, t := range b.Trades {
		td := TradeDoc{
			Timestamp: formatTime(t.Time),
			Volume:    t.Volume,
			PreMatch:  t.PreMatch,
			Side:      t.Side.String(),
		}
		if t.Price != nil {
			p := t.Price.Decimal()
			td.Price = &p
		}
		doc.Trades[i] = td
	}

	doc.Records = make([]RecordDoc, len(b.Records))
	for i, rec := range b.Records {
		doc.Records[i] = RecordOf(rec)
	}
	return doc
}
