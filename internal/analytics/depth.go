package analytics

import (
	"time"

	"github.com/rickgao/quotefeed/internal/model"
)

// DepthView is a compacted snapshot: only populated levels, best first.
type DepthView struct {
	Time time.Time
	Bids []model.Level
	Asks []model.Level
}

// ViewOf compacts d.
func ViewOf(d *model.Depth) DepthView {
	v := DepthView{Time: d.Time}
	for _, l := range d.Bids {
		if l != nil {
			v.Bids = append(v.Bids, *l)
		}
	}
	for _, l := range d.Asks {
		if l != nil {
			v.Asks = append(v.Asks, *l)
		}
	}
	return v
}

// Latest returns the view of the last snapshot in depths, or nil.
func Latest(depths []*model.Depth) *DepthView {
	if len(depths) == 0 {
		return nil
	}
	v := ViewOf(depths[len(depths)-1])
	return &v
}

// History returns a view per snapshot, in input order.
func History(depths []*model.Depth) []DepthView {
	out := make([]DepthView, 0, len(depths))
	for _, d := range depths {
		out = append(out, ViewOf(d))
	}
	return out
}

// TradeDetail is one row of the trade tape.
type TradeDetail struct {
	Time     time.Time
	Price    *model.Price
	Volume   *int64
	PreMatch bool
	Side     model.Aggressor
}

// Details classifies every trade against book and returns the tape newest
// first. trades must be sorted ascending by time.
func Details(trades []*model.Trade, book *Book) []TradeDetail {
	out := make([]TradeDetail, len(trades))
	for i, t := range trades {
		out[len(trades)-1-i] = TradeDetail{
			Time:     t.Time,
			Price:    t.Price,
			Volume:   t.Volume,
			PreMatch: t.IsPreMatch(),
			Side:     book.Classify(t),
		}
	}
	return out
}

// SideCounts tallies classified trades.
type SideCounts struct {
	Buyer     int
	Seller    int
	Ambiguous int
}

// CountSides tallies the Side of each detail.
func CountSides(details []TradeDetail) SideCounts {
	var c SideCounts
	for _, d := range details {
		switch d.Side {
		case model.BuyerInitiated:
			c.Buyer++
		case model.SellerInitiated:
			c.Seller++
		default:
			c.Ambiguous++
		}
	}
	return c
}
