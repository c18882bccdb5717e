package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPrice_Decimal(t *testing.T) {
	tests := []struct {
		raw  int64
		want string
	}{
		{333500, "33.35"},
		{333000, "33.3"},
		{1, "0.0001"},
		{0, "0"},
		{12345678901, "1234567.8901"},
	}

	for _, tt := range tests {
		got := Price(tt.raw).Decimal()
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Price(%d).Decimal() = %s, want %s", tt.raw, got, tt.want)
		}
		if back := PriceFromDecimal(got); back != Price(tt.raw) {
			t.Errorf("PriceFromDecimal(%s) = %d, want %d", got, back, tt.raw)
		}
	}
}

func TestPrice_String(t *testing.T) {
	if got := Price(333500).String(); got != "33.35" {
		t.Errorf("String() = %q, want %q", got, "33.35")
	}
}

func TestAggressor_MarshalText(t *testing.T) {
	data, err := json.Marshal(map[string]Aggressor{
		"a": BuyerInitiated,
		"b": SellerInitiated,
		"c": Ambiguous,
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"a":"outer","b":"inner","c":"ambiguous"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestDepth_BestLevels(t *testing.T) {
	d := &Depth{}
	if d.BestBid() != nil || d.BestAsk() != nil {
		t.Fatal("empty depth should have no best levels")
	}

	d.Bids[0] = &Level{Price: 333000, Volume: 27}
	d.Asks[0] = &Level{Price: 333500, Volume: 17}

	if d.BestBid().Price != 333000 {
		t.Errorf("BestBid().Price = %d, want 333000", d.BestBid().Price)
	}
	if d.BestAsk().Volume != 17 {
		t.Errorf("BestAsk().Volume = %d, want 17", d.BestAsk().Volume)
	}
}

func TestSymbolSet(t *testing.T) {
	s := NewSymbolSet("2330", "2317")
	s.Union(NewSymbolSet("2317", "1101"))

	if !s.Has("1101") {
		t.Error("Has(1101) = false, want true")
	}
	got := s.Sorted()
	want := []string{"1101", "2317", "2330"}
	if len(got) != len(want) {
		t.Fatalf("Sorted() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecordInterface(t *testing.T) {
	records := []Record{
		&Trade{Code: "2330"},
		&Depth{Code: "2330"},
	}
	if records[0].Kind() != KindTrade || records[1].Kind() != KindDepth {
		t.Errorf("kinds = %s, %s", records[0].Kind(), records[1].Kind())
	}
}
