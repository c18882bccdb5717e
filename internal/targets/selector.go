package targets

import (
	"fmt"
	"sort"
	"time"

	"github.com/rickgao/quotefeed/internal/model"
)

const dateLayout = "20060102"

// DefaultLookbackDays bounds the search for the previous noteworthy date.
const DefaultLookbackDays = 7

// Noteworthy maps YYYYMMDD dates to the symbols noteworthy on that date.
type Noteworthy map[string]model.SymbolSet

// Add records symbol as noteworthy on date.
func (n Noteworthy) Add(date, symbol string) {
	set, ok := n[date]
	if !ok {
		set = make(model.SymbolSet)
		n[date] = set
	}
	set.Add(symbol)
}

// Dates returns the dates present in n in ascending order.
func (n Noteworthy) Dates() []string {
	out := make([]string, 0, len(n))
	for d := range n {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Calendar locates the trading day preceding a date.
type Calendar interface {
	// Previous returns the date before date whose symbols should also be
	// decoded, or false if there is none.
	Previous(n Noteworthy, date time.Time) (string, bool)
}

// LookbackCalendar walks back one calendar day at a time, up to MaxDays, and
// stops at the first date present in the noteworthy list.
type LookbackCalendar struct {
	MaxDays int
}

func (c LookbackCalendar) Previous(n Noteworthy, date time.Time) (string, bool) {
	maxDays := c.MaxDays
	if maxDays <= 0 {
		maxDays = DefaultLookbackDays
	}
	for back := 1; back <= maxDays; back++ {
		d := date.AddDate(0, 0, -back).Format(dateLayout)
		if _, ok := n[d]; ok {
			return d, true
		}
	}
	return "", false
}

// Selector computes target symbol sets.
type Selector struct {
	calendar Calendar
}

// NewSelector creates a Selector. A nil calendar means LookbackCalendar with
// the default window.
func NewSelector(calendar Calendar) *Selector {
	if calendar == nil {
		calendar = LookbackCalendar{MaxDays: DefaultLookbackDays}
	}
	return &Selector{calendar: calendar}
}

// Targets returns the union of the symbols noteworthy on date and on the
// previous trading day.
func (s *Selector) Targets(n Noteworthy, date string) (model.SymbolSet, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse target date %q: %w", date, err)
	}

	out := make(model.SymbolSet)
	out.Union(n[date])
	if prev, ok := s.calendar.Previous(n, day); ok {
		out.Union(n[prev])
	}
	return out, nil
}
