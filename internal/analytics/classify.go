package analytics

import (
	"sort"
	"time"

	"github.com/rickgao/quotefeed/internal/model"
)

// Book answers as-of lookups over a symbol's depth snapshots.
type Book struct {
	depths []*model.Depth
}

// NewBook indexes depths, which must already be sorted ascending by time
// (see Split).
func NewBook(depths []*model.Depth) *Book {
	return &Book{depths: depths}
}

// Len returns the number of snapshots.
func (b *Book) Len() int { return len(b.depths) }

// At returns the last snapshot with time <= t, or nil.
func (b *Book) At(t time.Time) *model.Depth {
	i := sort.Search(len(b.depths), func(i int) bool {
		return b.depths[i].Time.After(t)
	})
	if i == 0 {
		return nil
	}
	return b.depths[i-1]
}

// Classify labels trade against the latest snapshot at or before its time.
func (b *Book) Classify(trade *model.Trade) model.Aggressor {
	if trade.Time.IsZero() {
		return model.Ambiguous
	}
	return ClassifyAgainst(trade, b.At(trade.Time))
}

// Classify labels trade against depths sorted ascending by time.
func Classify(trade *model.Trade, depths []*model.Depth) model.Aggressor {
	return NewBook(depths).Classify(trade)
}

// ClassifyAgainst labels trade against one snapshot.
//
// A price at or above the best ask is buyer-initiated; at or below the best
// bid is seller-initiated. Strictly inside the spread the trade goes to the
// nearer side, ties at the midpoint counting as seller-initiated. Without a
// snapshot, a trade price, or both best levels, the result is Ambiguous.
func ClassifyAgainst(trade *model.Trade, d *model.Depth) model.Aggressor {
	if d == nil || trade.Price == nil {
		return model.Ambiguous
	}
	price := *trade.Price
	bid, ask := d.BestBid(), d.BestAsk()

	switch {
	case ask != nil && price >= ask.Price:
		return model.BuyerInitiated
	case bid != nil && price <= bid.Price:
		return model.SellerInitiated
	case bid != nil && ask != nil:
		// 2p <= bid+ask is p <= midpoint without leaving integer ticks.
		if 2*price <= bid.Price+ask.Price {
			return model.SellerInitiated
		}
		return model.BuyerInitiated
	default:
		return model.Ambiguous
	}
}
