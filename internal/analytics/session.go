package analytics

import (
	"time"

	"github.com/rickgao/quotefeed/internal/model"
)

// DefaultSessionOpen is the start of the regular trading session.
const DefaultSessionOpen = 9 * time.Hour

// Session restricts analytics to the regular session. Records stamped before
// Open (time of day) are pre-market and are excluded when Enabled.
type Session struct {
	Open    time.Duration
	Enabled bool
}

// DefaultSession filters out everything before 09:00.
func DefaultSession() Session {
	return Session{Open: DefaultSessionOpen, Enabled: true}
}

// Contains reports whether t falls within the session.
func (s Session) Contains(t time.Time) bool {
	if !s.Enabled {
		return true
	}
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return t.Sub(midnight) >= s.Open
}

// Trades returns the trades inside the session, preserving order.
func (s Session) Trades(trades []*model.Trade) []*model.Trade {
	if !s.Enabled {
		return trades
	}
	out := make([]*model.Trade, 0, len(trades))
	for _, t := range trades {
		if s.Contains(t.Time) {
			out = append(out, t)
		}
	}
	return out
}

// Depths returns the snapshots inside the session, preserving order.
func (s Session) Depths(depths []*model.Depth) []*model.Depth {
	if !s.Enabled {
		return depths
	}
	out := make([]*model.Depth, 0, len(depths))
	for _, d := range depths {
		if s.Contains(d.Time) {
			out = append(out, d)
		}
	}
	return out
}
