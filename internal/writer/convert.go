package writer

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/rickgao/quotefeed/internal/analytics"
	"github.com/rickgao/quotefeed/internal/model"
)

var json = jsoniter.ConfigFastest

// levelJSON represents a book level in JSONB format.
type levelJSON struct {
	Price  int64 `json:"price"`
	Volume int64 `json:"volume"`
}

// levelsToJSONB converts levels to JSONB bytes. Empty sides encode as [].
func levelsToJSONB(levels []model.Level) []byte {
	out := make([]levelJSON, len(levels))
	for i, l := range levels {
		out[i] = levelJSON{Price: int64(l.Price), Volume: l.Volume}
	}
	data, _ := json.Marshal(out)
	return data
}

func bestPrice(levels []model.Level) *int64 {
	if len(levels) == 0 {
		return nil
	}
	p := int64(levels[0].Price)
	return &p
}

func priceE4(p *model.Price) *int64 {
	if p == nil {
		return nil
	}
	v := int64(*p)
	return &v
}

func decimalE4(d decimal.Decimal, ok bool) *int64 {
	if !ok {
		return nil
	}
	v := int64(model.PriceFromDecimal(d))
	return &v
}

// transform flattens a bundle into rows: trades oldest first, then depth
// snapshots, then one stats row.
func transform(b *analytics.Bundle) ([]row, error) {
	day, err := time.Parse("20060102", b.Date)
	if err != nil {
		return nil, fmt.Errorf("bundle %s date: %w", b.Symbol, err)
	}
	runID := b.RunID.String()
	rows := make([]row, 0, len(b.Trades)+len(b.DepthHistory)+1)

	for i := len(b.Trades) - 1; i >= 0; i-- {
		t := b.Trades[i]
		rows = append(rows, tradeRow{
			TradeDate: day,
			Market:    b.Market,
			Symbol:    b.Symbol,
			Ts:        t.Time,
			Seq:       len(b.Trades) - 1 - i,
			PreMatch:  t.PreMatch,
			Price:     priceE4(t.Price),
			Volume:    t.Volume,
			Side:      t.Side.String(),
			RunID:     runID,
		})
	}

	for i, d := range b.DepthHistory {
		rows = append(rows, depthRow{
			TradeDate: day,
			Market:    b.Market,
			Symbol:    b.Symbol,
			Ts:        d.Time,
			Seq:       i,
			Bids:      levelsToJSONB(d.Bids),
			Asks:      levelsToJSONB(d.Asks),
			BestBid:   bestPrice(d.Bids),
			BestAsk:   bestPrice(d.Asks),
			RunID:     runID,
		})
	}

	s := b.Stats
	rows = append(rows, statsRow{
		TradeDate:   day,
		Market:      b.Market,
		Symbol:      b.Symbol,
		Open:        decimalE4(s.Open, s.Valid),
		High:        decimalE4(s.High, s.HasRange),
		Low:         decimalE4(s.Low, s.HasRange),
		Close:       decimalE4(s.Close, s.Valid),
		Average:     s.Average.InexactFloat64(),
		ChangePct:   s.ChangePct.InexactFloat64(),
		TradeCount:  s.TradeCount,
		Volume:      s.Volume,
		TotalVolume: s.TotalVolume,
		Buyer:       b.Sides.Buyer,
		Seller:      b.Sides.Seller,
		Ambiguous:   b.Sides.Ambiguous,
		RunID:       runID,
	})
	return rows, nil
}
