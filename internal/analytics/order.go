package analytics

import (
	"sort"

	"github.com/rickgao/quotefeed/internal/model"
)

// Split separates a symbol's records into trades and depths, each stably
// sorted by time. Records with a zero time are dropped and counted.
func Split(records []model.Record) (trades []*model.Trade, depths []*model.Depth, untimed int) {
	for _, r := range records {
		if r.At().IsZero() {
			untimed++
			continue
		}
		switch rec := r.(type) {
		case *model.Trade:
			trades = append(trades, rec)
		case *model.Depth:
			depths = append(depths, rec)
		}
	}
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].Time.Before(trades[j].Time) })
	sort.SliceStable(depths, func(i, j int) bool { return depths[i].Time.Before(depths[j].Time) })
	return trades, depths, untimed
}

// SortRecords returns a copy of records stably ordered by time, with untimed
// records kept at the end in their original order.
func SortRecords(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].At(), out[j].At()
		switch {
		case ti.IsZero():
			return false
		case tj.IsZero():
			return true
		default:
			return ti.Before(tj)
		}
	})
	return out
}
