package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/quotefeed/internal/model"
)

var day = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func at(h, m, s int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
}

func px(v string) *model.Price {
	p := model.PriceFromDecimal(decimal.RequireFromString(v))
	return &p
}

func vol(v int64) *int64 { return &v }

func trade(ts time.Time, price string, volume int64) *model.Trade {
	t := &model.Trade{Code: "2330", Time: ts, Volume: vol(volume)}
	if price != "" {
		t.Price = px(price)
	}
	return t
}

func depth(ts time.Time, bid, ask string) *model.Depth {
	d := &model.Depth{Code: "2330", Time: ts, BidCount: 1, AskCount: 1}
	if bid != "" {
		d.Bids[0] = &model.Level{Price: *px(bid), Volume: 10}
	}
	if ask != "" {
		d.Asks[0] = &model.Level{Price: *px(ask), Volume: 10}
	}
	return d
}

func TestAggregateVWAP(t *testing.T) {
	agg := Aggregate([]*model.Trade{
		trade(at(9, 0, 1), "10", 2),
		trade(at(9, 0, 2), "20", 2),
	})

	require.Equal(t, 2, agg.Series.Len())
	assert.True(t, agg.Series.VWAP[0].Equal(decimal.NewFromInt(10)), "vwap[0] = %s", agg.Series.VWAP[0])
	assert.True(t, agg.Series.VWAP[1].Equal(decimal.NewFromInt(15)), "vwap[1] = %s", agg.Series.VWAP[1])
	assert.Equal(t, []int64{2, 4}, agg.Series.CumVolumes)
}

func TestAggregateVWAPZeroVolume(t *testing.T) {
	agg := Aggregate([]*model.Trade{
		trade(at(9, 0, 1), "10", 0),
		trade(at(9, 0, 2), "12", 3),
	})

	require.Equal(t, 2, agg.Series.Len())
	assert.True(t, agg.Series.VWAP[0].IsZero())
	assert.True(t, agg.Series.VWAP[1].Equal(decimal.NewFromInt(12)))
}

func TestAggregateFeedTotals(t *testing.T) {
	withTotal := func(tr *model.Trade, total int64) *model.Trade {
		tr.TotalVolume = &total
		return tr
	}
	unpriced := withTotal(trade(at(9, 0, 3), "10", 1), 1520)
	unpriced.Price = nil

	agg := Aggregate([]*model.Trade{
		withTotal(trade(at(9, 0, 1), "10", 2), 1502),
		trade(at(9, 0, 2), "11", 1),
		unpriced,
		withTotal(trade(at(9, 0, 4), "12", 3), 1530),
	})

	require.Equal(t, 3, agg.Series.Len())
	assert.Equal(t, []int64{2, 3, 6}, agg.Series.CumVolumes)
	assert.Equal(t, []int64{1502, 1502, 1530}, agg.Series.FeedTotals)
	assert.Equal(t, int64(1530), agg.Stats.TotalVolume)
}

func TestAggregateStats(t *testing.T) {
	noVol := trade(at(9, 0, 4), "50", 0)
	noVol.Volume = nil
	total := int64(900)

	trades := []*model.Trade{
		trade(at(9, 0, 1), "100", 1),
		trade(at(9, 0, 2), "", 5),
		trade(at(9, 0, 3), "110", 3),
		noVol,
		trade(at(9, 0, 5), "95", 1),
	}
	trades[4].TotalVolume = &total

	s := Aggregate(trades).Stats

	assert.True(t, s.Valid)
	assert.Equal(t, 5, s.RawTrades)
	assert.Equal(t, 4, s.TradeCount)
	assert.Equal(t, "100", s.Open.String())
	assert.Equal(t, "95", s.Close.String())
	// The volume-less print at 50 does not set the low.
	assert.Equal(t, "95", s.Low.String())
	assert.Equal(t, "110", s.High.String())
	assert.Equal(t, int64(5), s.Volume)
	assert.Equal(t, int64(900), s.TotalVolume)
	// (100*1 + 110*3 + 95*1) / 5 = 105
	assert.Equal(t, "105", s.Average.String())
	assert.Equal(t, "-5", s.Change.String())
	assert.Equal(t, "-5", s.ChangePct.String())
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil).Stats
	assert.False(t, s.Valid)
	assert.True(t, s.ChangePct.IsZero())
	assert.Zero(t, s.TotalVolume)
}

func TestAggregateZeroOpen(t *testing.T) {
	s := Aggregate([]*model.Trade{
		trade(at(9, 0, 1), "0", 1),
		trade(at(9, 0, 2), "5", 1),
	}).Stats
	assert.Equal(t, "5", s.Change.String())
	assert.True(t, s.ChangePct.IsZero())
	assert.Equal(t, int64(2), s.TotalVolume)
}

func TestClassifyAgainst(t *testing.T) {
	snap := depth(at(9, 0, 0), "33.30", "33.35")

	tests := []struct {
		price string
		want  model.Aggressor
	}{
		{"33.35", model.BuyerInitiated},
		{"33.40", model.BuyerInitiated},
		{"33.30", model.SellerInitiated},
		{"33.20", model.SellerInitiated},
		{"33.32", model.SellerInitiated},
		{"33.33", model.BuyerInitiated},
		{"33.325", model.SellerInitiated},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			got := ClassifyAgainst(trade(at(9, 0, 1), tt.price, 1), snap)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyMissingSides(t *testing.T) {
	tr := trade(at(9, 0, 1), "33.32", 1)

	assert.Equal(t, model.Ambiguous, ClassifyAgainst(tr, nil))
	assert.Equal(t, model.Ambiguous, ClassifyAgainst(tr, depth(at(9, 0, 0), "", "")))
	assert.Equal(t, model.Ambiguous, ClassifyAgainst(tr, depth(at(9, 0, 0), "33.30", "")))
	assert.Equal(t, model.BuyerInitiated, ClassifyAgainst(tr, depth(at(9, 0, 0), "", "33.31")))

	noPrice := trade(at(9, 0, 1), "", 1)
	assert.Equal(t, model.Ambiguous, ClassifyAgainst(noPrice, depth(at(9, 0, 0), "33.30", "33.35")))
}

func TestBookAsOf(t *testing.T) {
	depths := []*model.Depth{
		depth(at(9, 0, 0), "10", "11"),
		depth(at(9, 0, 5), "20", "21"),
		depth(at(9, 0, 5), "30", "31"),
		depth(at(9, 0, 9), "40", "41"),
	}
	book := NewBook(depths)

	assert.Nil(t, book.At(at(8, 59, 59)))
	assert.Same(t, depths[0], book.At(at(9, 0, 0)))
	assert.Same(t, depths[0], book.At(at(9, 0, 4)))
	// Equal timestamps resolve to the last snapshot in input order.
	assert.Same(t, depths[2], book.At(at(9, 0, 5)))
	assert.Same(t, depths[3], book.At(at(10, 0, 0)))
}

func TestBookNoPriorSnapshot(t *testing.T) {
	book := NewBook([]*model.Depth{depth(at(9, 0, 5), "10", "11")})
	assert.Equal(t, model.Ambiguous, book.Classify(trade(at(9, 0, 1), "12", 1)))
	assert.Equal(t, model.BuyerInitiated, book.Classify(trade(at(9, 0, 5), "12", 1)))
	assert.Equal(t, model.Ambiguous, book.Classify(trade(time.Time{}, "12", 1)))
}

func TestSplitOrdersAndDropsUntimed(t *testing.T) {
	late := trade(at(9, 0, 2), "1", 1)
	early := trade(at(9, 0, 1), "2", 1)
	untimed := trade(time.Time{}, "3", 1)
	d := depth(at(9, 0, 0), "1", "2")

	trades, depths, n := Split([]model.Record{late, untimed, d, early})

	assert.Equal(t, []*model.Trade{early, late}, trades)
	assert.Equal(t, []*model.Depth{d}, depths)
	assert.Equal(t, 1, n)
}

func TestSortRecordsUntimedLast(t *testing.T) {
	a := trade(time.Time{}, "1", 1)
	b := trade(at(9, 0, 2), "1", 1)
	c := depth(at(9, 0, 1), "1", "2")

	got := SortRecords([]model.Record{a, b, c})
	assert.Equal(t, []model.Record{c, b, a}, got)
}

func TestSession(t *testing.T) {
	s := DefaultSession()
	assert.False(t, s.Contains(at(8, 59, 59)))
	assert.True(t, s.Contains(at(9, 0, 0)))
	assert.True(t, s.Contains(at(13, 30, 0)))

	off := Session{}
	assert.True(t, off.Contains(at(8, 30, 0)))

	trades := []*model.Trade{trade(at(8, 30, 0), "1", 1), trade(at(9, 1, 0), "1", 1)}
	assert.Len(t, s.Trades(trades), 1)
	assert.Len(t, off.Trades(trades), 2)
}

func TestDetailsNewestFirst(t *testing.T) {
	trades := []*model.Trade{
		trade(at(9, 0, 1), "33.35", 1),
		trade(at(9, 0, 2), "33.30", 2),
	}
	trades[1].Flag = new(int)
	*trades[1].Flag = model.FlagPreMatch
	book := NewBook([]*model.Depth{depth(at(9, 0, 0), "33.30", "33.35")})

	got := Details(trades, book)

	require.Len(t, got, 2)
	assert.Equal(t, at(9, 0, 2), got[0].Time)
	assert.Equal(t, model.SellerInitiated, got[0].Side)
	assert.True(t, got[0].PreMatch)
	assert.Equal(t, model.BuyerInitiated, got[1].Side)
	assert.Equal(t, SideCounts{Buyer: 1, Seller: 1}, CountSides(got))
}

func TestViewOfCompactsLevels(t *testing.T) {
	d := &model.Depth{Time: at(9, 0, 0)}
	d.Bids[0] = &model.Level{Price: 100, Volume: 1}
	d.Bids[2] = &model.Level{Price: 90, Volume: 3}
	d.Asks[1] = &model.Level{Price: 110, Volume: 2}

	v := ViewOf(d)
	assert.Equal(t, []model.Level{{Price: 100, Volume: 1}, {Price: 90, Volume: 3}}, v.Bids)
	assert.Equal(t, []model.Level{{Price: 110, Volume: 2}}, v.Asks)

	assert.Nil(t, Latest(nil))
	assert.Equal(t, at(9, 0, 0), Latest([]*model.Depth{d}).Time)
}

func TestBuild(t *testing.T) {
	id := uuid.New()
	records := []model.Record{
		trade(at(9, 0, 3), "33.32", 4),
		depth(at(9, 0, 1), "33.30", "33.35"),
		trade(at(8, 45, 0), "33.00", 9),
		trade(time.Time{}, "33.40", 1),
		trade(at(9, 0, 2), "33.35", 2),
	}

	b := Build("2330", "20240315", records, Options{Session: DefaultSession(), RunID: id})

	assert.Equal(t, "2330", b.Symbol)
	assert.Equal(t, id, b.RunID)
	assert.Len(t, b.Records, 5)
	assert.Equal(t, Counts{Records: 5, Trades: 2, Depths: 1, Untimed: 1, OutOfSession: 1}, b.Counts)
	assert.Equal(t, 2, b.Chart.Len())
	assert.Equal(t, SideCounts{Buyer: 1, Seller: 1}, b.Sides)
	require.NotNil(t, b.Depth)
	assert.Len(t, b.DepthHistory, 1)
	assert.Equal(t, int64(6), b.Stats.Volume)
	assert.Equal(t, "33.35", b.Stats.Open.String())
	assert.Equal(t, "33.32", b.Stats.Close.String())
}
