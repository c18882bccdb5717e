package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/quotefeed/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Series holds parallel per-trade chart sequences.
type Series struct {
	Times      []time.Time
	Prices     []decimal.Decimal
	Volumes    []int64
	CumVolumes []int64           // Running sum of charted volumes
	FeedTotals []int64           // Feed-reported cumulative volume, last known value when absent
	VWAP       []decimal.Decimal // Cumulative; zero while cumulative volume is zero
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Times) }

// Stats summarizes a session's trades.
type Stats struct {
	Open        decimal.Decimal
	High        decimal.Decimal
	Low         decimal.Decimal
	Close       decimal.Decimal
	Average     decimal.Decimal // Traded value / volume, zero without volume
	Change      decimal.Decimal // Close - Open
	ChangePct   decimal.Decimal // Change / Open * 100, zero when Open is zero
	TradeCount  int             // Trades carrying a price
	RawTrades   int             // All trades seen, priced or not
	Volume      int64           // Sum of volumes over trades with price and volume
	TotalVolume int64           // Largest feed cumulative volume, else Volume
	Valid       bool            // At least one trade carried a price
	HasRange    bool            // High and Low are set
}

// Aggregation is the output of Aggregate.
type Aggregation struct {
	Series Series
	Stats  Stats
}

// Aggregate computes the cumulative VWAP series and OHLC statistics for
// trades, which must be sorted ascending by time.
//
// Trades without a price are left out of the series and of every price
// statistic. A trade without a volume is charted with volume zero and is
// left out of high, low, average and volume sums.
func Aggregate(trades []*model.Trade) Aggregation {
	var (
		series   Series
		stats    Stats
		cumValue decimal.Decimal
		cumVol   int64
		statsVal decimal.Decimal
		feedMax  int64
		feedLast int64
		haveHL   bool
	)

	for _, t := range trades {
		stats.RawTrades++
		if t.TotalVolume != nil {
			feedLast = *t.TotalVolume
			feedMax = max(feedMax, feedLast)
		}
		if t.Price == nil {
			continue
		}

		price := t.Price.Decimal()
		if !stats.Valid {
			stats.Open = price
			stats.Valid = true
		}
		stats.Close = price
		stats.TradeCount++

		var vol int64
		if t.Volume != nil {
			vol = *t.Volume
			value := price.Mul(decimal.NewFromInt(vol))
			cumValue = cumValue.Add(value)
			statsVal = statsVal.Add(value)
			stats.Volume += vol

			if !haveHL || price.GreaterThan(stats.High) {
				stats.High = price
			}
			if !haveHL || price.LessThan(stats.Low) {
				stats.Low = price
			}
			haveHL = true
		}
		cumVol += vol

		vwap := decimal.Zero
		if cumVol > 0 {
			vwap = cumValue.Div(decimal.NewFromInt(cumVol))
		}

		series.Times = append(series.Times, t.Time)
		series.Prices = append(series.Prices, price)
		series.Volumes = append(series.Volumes, vol)
		series.CumVolumes = append(series.CumVolumes, cumVol)
		series.FeedTotals = append(series.FeedTotals, feedLast)
		series.VWAP = append(series.VWAP, vwap)
	}

	stats.HasRange = haveHL
	if stats.Volume > 0 {
		stats.Average = statsVal.Div(decimal.NewFromInt(stats.Volume))
	}
	if stats.Valid {
		stats.Change = stats.Close.Sub(stats.Open)
		if !stats.Open.IsZero() {
			stats.ChangePct = stats.Change.Div(stats.Open).Mul(hundred)
		}
	}
	stats.TotalVolume = feedMax
	if stats.TotalVolume == 0 {
		stats.TotalVolume = stats.Volume
	}

	return Aggregation{Series: series, Stats: stats}
}
