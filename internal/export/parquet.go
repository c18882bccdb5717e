package export

import (
	"context"
	"fmt"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/rickgao/quotefeed/internal/analytics"
	"github.com/rickgao/quotefeed/internal/model"
)

// Row is one decoded record in the parquet record file. Prices are
// ten-thousandths; Datetime is microseconds since the Unix epoch.
type Row struct {
	Type        string `parquet:"type,dict"`
	StockCode   string `parquet:"stock_code,dict"`
	Datetime    *int64 `parquet:"datetime_us,optional"`
	Packed      string `parquet:"packed_time"`
	Flag        *int64 `parquet:"flag,optional"`
	Price       *int64 `parquet:"price_e4,optional"`
	Volume      *int64 `parquet:"volume,optional"`
	TotalVolume *int64 `parquet:"total_volume,optional"`
	BidCount    *int64 `parquet:"bid_count,optional"`
	AskCount    *int64 `parquet:"ask_count,optional"`

	Bid1Price  *int64 `parquet:"bid1_price_e4,optional"`
	Bid1Volume *int64 `parquet:"bid1_volume,optional"`
	Bid2Price  *int64 `parquet:"bid2_price_e4,optional"`
	Bid2Volume *int64 `parquet:"bid2_volume,optional"`
	Bid3Price  *int64 `parquet:"bid3_price_e4,optional"`
	Bid3Volume *int64 `parquet:"bid3_volume,optional"`
	Bid4Price  *int64 `parquet:"bid4_price_e4,optional"`
	Bid4Volume *int64 `parquet:"bid4_volume,optional"`
	Bid5Price  *int64 `parquet:"bid5_price_e4,optional"`
	Bid5Volume *int64 `parquet:"bid5_volume,optional"`

	Ask1Price  *int64 `parquet:"ask1_price_e4,optional"`
	Ask1Volume *int64 `parquet:"ask1_volume,optional"`
	Ask2Price  *int64 `parquet:"ask2_price_e4,optional"`
	Ask2Volume *int64 `parquet:"ask2_volume,optional"`
	Ask3Price  *int64 `parquet:"ask3_price_e4,optional"`
	Ask3Volume *int64 `parquet:"ask3_volume,optional"`
	Ask4Price  *int64 `parquet:"ask4_price_e4,optional"`
	Ask4Volume *int64 `parquet:"ask4_volume,optional"`
	Ask5Price  *int64 `parquet:"ask5_price_e4,optional"`
	Ask5Volume *int64 `parquet:"ask5_volume,optional"`
}

func i64(v int64) *int64 { return &v }

func priceOf(p *model.Price) *int64 {
	if p == nil {
		return nil
	}
	return i64(int64(*p))
}

func (r *Row) bidSlots() [model.Levels][2]**int64 {
	return [model.Levels][2]**int64{
		{&r.Bid1Price, &r.Bid1Volume},
		{&r.Bid2Price, &r.Bid2Volume},
		{&r.Bid3Price, &r.Bid3Volume},
		{&r.Bid4Price, &r.Bid4Volume},
		{&r.Bid5Price, &r.Bid5Volume},
	}
}

func (r *Row) askSlots() [model.Levels][2]**int64 {
	return [model.Levels][2]**int64{
		{&r.Ask1Price, &r.Ask1Volume},
		{&r.Ask2Price, &r.Ask2Volume},
		{&r.Ask3Price, &r.Ask3Volume},
		{&r.Ask4Price, &r.Ask4Volume},
		{&r.Ask5Price, &r.Ask5Volume},
	}
}

// RowOf flattens a record.
func RowOf(rec model.Record) Row {
	row := Row{Type: string(rec.Kind()), StockCode: rec.Symbol()}
	if t := rec.At(); !t.IsZero() {
		row.Datetime = i64(t.UnixMicro())
	}

	switch r := rec.(type) {
	case *model.Trade:
		row.Packed = r.Packed
		if r.Flag != nil {
			row.Flag = i64(int64(*r.Flag))
		}
		row.Price = priceOf(r.Price)
		row.Volume = r.Volume
		row.TotalVolume = r.TotalVolume
	case *model.Depth:
		row.Packed = r.Packed
		row.BidCount = i64(int64(r.BidCount))
		row.AskCount = i64(int64(r.AskCount))
		fillSlots(row.bidSlots(), r.Bids)
		fillSlots(row.askSlots(), r.Asks)
	}
	return row
}

func fillSlots(slots [model.Levels][2]**int64, levels [model.Levels]*model.Level) {
	for i, l := range levels {
		if l == nil {
			continue
		}
		*slots[i][0] = i64(int64(l.Price))
		*slots[i][1] = i64(l.Volume)
	}
}

func readSlots(slots [model.Levels][2]**int64) [model.Levels]*model.Level {
	var out [model.Levels]*model.Level
	for i, s := range slots {
		if *s[0] == nil || *s[1] == nil {
			continue
		}
		out[i] = &model.Level{Price: model.Price(**s[0]), Volume: **s[1]}
	}
	return out
}

// Record rebuilds the decoded record from a row.
func (r Row) Record() (model.Record, error) {
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
			Volume:      r.Volume,
			TotalVolume: r.TotalVolume,
		}
		if r.Flag != nil {
			f := int(*r.Flag)
			t.Flag = &f
		}
		if r.Price != nil {
			p := model.Price(*r.Price)
			t.Price = &p
		}
		return t, nil
	case model.KindDepth:
		d := &model.Depth{Code: r.StockCode, Time: ts, Packed: r.Packed}
		if r.BidCount != nil {
			d.BidCount = int(*r.BidCount)
		}
		if r.AskCount != nil {
			d.AskCount = int(*r.AskCount)
		}
		d.Bids = readSlots(r.bidSlots())
		d.Asks = readSlots(r.askSlots())
		return d, nil
	default:
		return nil, fmt.Errorf("unknown record type %q", r.Type)
	}
}

// ParquetSink writes <dir>/<date>/<symbol>.parquet with one Row per record.
type ParquetSink struct {
	Dir string
}

func (s *ParquetSink) Name() string { return FormatParquet }

// Write stores b.Records in time order.
func (s *ParquetSink) Write(ctx context.Context, b *analytics.Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([]Row, len(b.Records))
	for i, rec := range b.Records {
		rows[i] = RowOf(rec)
	}

	path, err := outputPath(s.Dir, b.Date, b.Symbol, FormatParquet)
	if err != nil {
		return err
	}
	return writeAtomic(path, func(tmp string) error {
		if err := parquet.WriteFile(tmp, rows); err != nil {
			return fmt.Errorf("write records %s: %w", b.Symbol, err)
		}
		return nil
	})
}

// ReadRecords loads a record file written by ParquetSink.
func ReadRecords(path string) ([]model.Record, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("read records %s: %w", path, err)
	}
	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.Record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
