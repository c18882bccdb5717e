package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Fixed-point layout of feed prices.
const (
	PriceScale   = 4
	PriceDivisor = 10000

	// Levels is the number of book levels materialized per side.
	Levels = 5
)

// Price is a feed price in ten-thousandths.
type Price int64

// Decimal returns the exact base-10 value of p.
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -PriceScale)
}

// Float64 returns p as a float for charting. Not exact.
func (p Price) Float64() float64 {
	return float64(p) / PriceDivisor
}

func (p Price) String() string {
	return p.Decimal().String()
}

// PriceFromDecimal converts d back to ten-thousandths, truncating extra digits.
func PriceFromDecimal(d decimal.Decimal) Price {
	return Price(d.Shift(PriceScale).IntPart())
}

// Kind is the record-kind tag in field 0 of a feed line.
type Kind string

const (
	KindTrade Kind = "Trade"
	KindDepth Kind = "Depth"
)

// Record is a decoded feed line: *Trade or *Depth.
type Record interface {
	Kind() Kind
	Symbol() string
	// At returns the decoded instant; zero when the packed time was unusable.
	At() time.Time
}

// Auction flags carried by trades.
const (
	FlagNormal   = 0
	FlagPreMatch = 1
)

// Trade is a single executed print.
type Trade struct {
	Code        string    // Stock code
	Time        time.Time // Zero if the packed timestamp did not form a valid clock time
	Packed      string    // Packed timestamp as received
	Flag        *int      // 0 = normal, 1 = pre-match (trial) print
	Price       *Price    // Trade price
	Volume      *int64    // Lots in this print
	TotalVolume *int64    // Cumulative session volume reported by the feed
}

func (t *Trade) Kind() Kind       { return KindTrade }
func (t *Trade) Symbol() string   { return t.Code }
func (t *Trade) At() time.Time    { return t.Time }
func (t *Trade) HasPrice() bool   { return t.Price != nil }
func (t *Trade) IsPreMatch() bool { return t.Flag != nil && *t.Flag == FlagPreMatch }

// Level is one populated price level of a depth snapshot.
type Level struct {
	Price  Price
	Volume int64
}

// Depth is a five-level book snapshot. Level 0 is best on both sides.
type Depth struct {
	Code     string
	Time     time.Time
	Packed   string
	BidCount int // Advertised level count after BID:
	AskCount int // Advertised level count after ASK:
	Bids     [Levels]*Level
	Asks     [Levels]*Level
}

func (d *Depth) Kind() Kind     { return KindDepth }
func (d *Depth) Symbol() string { return d.Code }
func (d *Depth) At() time.Time  { return d.Time }

// BestBid returns the first bid level, or nil.
func (d *Depth) BestBid() *Level { return d.Bids[0] }

// BestAsk returns the first ask level, or nil.
func (d *Depth) BestAsk() *Level { return d.Asks[0] }

// Aggressor labels which side initiated a trade.
type Aggressor int8

const (
	Ambiguous Aggressor = iota
	BuyerInitiated
	SellerInitiated
)

// String returns the market's inner/outer naming: buyer-initiated prints are
// "outer", seller-initiated prints are "inner".
func (a Aggressor) String() string {
	switch a {
	case BuyerInitiated:
		return "outer"
	case SellerInitiated:
		return "inner"
	default:
		return "ambiguous"
	}
}

func (a Aggressor) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// SymbolSet is a set of trimmed stock codes.
type SymbolSet map[string]struct{}

// NewSymbolSet builds a set from codes.
func NewSymbolSet(codes ...string) SymbolSet {
	s := make(SymbolSet, len(codes))
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

func (s SymbolSet) Add(code string) { s[code] = struct{}{} }

func (s SymbolSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Union adds every member of other to s.
func (s SymbolSet) Union(other SymbolSet) {
	for c := range other {
		s[c] = struct{}{}
	}
}

// Sorted returns the members in ascending order.
func (s SymbolSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
