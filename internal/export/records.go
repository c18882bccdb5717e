package export

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/quotefeed/internal/model"
)

// RecordDoc is the lossless JSON form of a decoded record. Prices are exact
// decimals; Datetime is microseconds since the Unix epoch, null when the
// packed time was unusable. Bids and Asks always hold model.Levels slots.
type RecordDoc struct {
	Type        string           `json:"type"`
	StockCode   string           `json:"stock_code"`
	Datetime    *int64           `json:"datetime_us"`
	Packed      string           `json:"packed_time"`
	Flag        *int             `json:"flag,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Volume      *int64           `json:"volume,omitempty"`
	TotalVolume *int64           `json:"total_volume,omitempty"`
	BidCount    *int             `json:"bid_count,omitempty"`
	AskCount    *int             `json:"ask_count,omitempty"`
	Bids        []*LevelDoc      `json:"bids,omitempty"`
	Asks        []*LevelDoc      `json:"asks,omitempty"`
}

// RecordOf converts rec for the document's records array.
func RecordOf(rec model.Record) RecordDoc {
	doc := RecordDoc{Type: string(rec.Kind()), StockCode: rec.Symbol()}
	if t := rec.At(); !t.IsZero() {
		doc.Datetime = i64(t.UnixMicro())
	}

	switch r := rec.(type) {
	case *model.Trade:
		doc.Packed = r.Packed
		doc.Flag = r.Flag
		if r.Price != nil {
			p := r.Price.Decimal()
			doc.Price = &p
		}
		doc.Volume = r.Volume
		doc.TotalVolume = r.TotalVolume
	case *model.Depth:
		doc.Packed = r.Packed
		bc, ac := r.BidCount, r.AskCount
		doc.BidCount, doc.AskCount = &bc, &ac
		doc.Bids = slotDocs(r.Bids)
		doc.Asks = slotDocs(r.Asks)
	}
	return doc
}

func slotDocs(levels [model.Levels]*model.Level) []*LevelDoc {
	out := make([]*LevelDoc, model.Levels)
	for i, l := range levels {
		if l != nil {
			out[i] = &LevelDoc{Price: l.Price.Decimal(), Volume: l.Volume}
		}
	}
	return out
}

func slotLevels(docs []*LevelDoc) ([model.Levels]*model.Level, error) {
	var out [model.Levels]*model.Level
	if len(docs) > model.Levels {
		return out, fmt.Errorf("%d level slots, want at most %d", len(docs), model.Levels)
	}
	for i, d := range docs {
		if d != nil {
			out[i] = &model.Level{Price: model.PriceFromDecimal(d.Price), Volume: d.Volume}
		}
	}
	return out, nil
}

// Record rebuilds the decoded record.
func (r RecordDoc) Record() (model.Record, error) {
	var ts time.Time
	if r.Datetime != nil {
		ts = time.UnixMicro(*r.Datetime).UTC()
	}

	switch model.Kind(r.Type) {
	case model.KindTrade:
		t := &model.Trade{
			Code:        r.StockCode,
			Time:        ts,
			Packed:      r.Packed,
			Flag:        r.Flag,
			Volume:      r.Volume,
			TotalVolume: r.TotalVolume,
		}
		if r.Price != nil {
			p := model.PriceFromDecimal(*r.Price)
			t.Price = &p
		}
		return t, nil
	case model.KindDepth:
		d := &model.Depth{Code: r.StockCode, Time: ts, Packed: r.Packed}
		if r.BidCount != nil {
			d.BidCount = *r.BidCount
		}
		if r.AskCount != nil {
			d.AskCount = *r.AskCount
		}
		var err error
		if d.Bids, err = slotLevels(r.Bids); err != nil {
			return nil, fmt.Errorf("bids: %w", err)
		}
		if d.Asks, err = slotLevels(r.Asks); err != nil {
			return nil, fmt.Errorf("asks: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown record type %q", r.Type)
	}
}

// DecodedRecords rebuilds every record in d.Records.
func (d *Document) DecodedRecords() ([]model.Record, error) {
	out := make([]model.Record, 0, len(d.Records))
	for i, rd := range d.Records {
		rec, err := rd.Record()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
