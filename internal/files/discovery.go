package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// DefaultMarkets are the feeds produced by the exchange gateway.
var DefaultMarkets = []string{"OTC", "TSE"}

var feedName = regexp.MustCompile(`^([A-Za-z]+)Quote\.(\d{8})$`)

// FeedFile is one market's feed for one trading day.
type FeedFile struct {
	Path   string
	Market string
	Date   string // YYYYMMDD
}

// Key identifies the unit, e.g. "TSE/20251031".
func (f FeedFile) Key() string {
	return f.Market + "/" + f.Date
}

// ParseName splits a feed file name into market and date.
func ParseName(name string) (market, date string, ok bool) {
	m := feedName.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return strings.ToUpper(m[1]), m[2], true
}

// Discover lists feed files for markets in dir, sorted by date then market.
// An empty markets list means DefaultMarkets.
func Discover(dir string, markets []string) ([]FeedFile, error) {
	if len(markets) == 0 {
		markets = DefaultMarkets
	}
	want := make(map[string]bool, len(markets))
	for _, m := range markets {
		want[strings.ToUpper(strings.TrimSpace(m))] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var out []FeedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		market, date, ok := ParseName(entry.Name())
		if !ok || !want[market] {
			continue
		}
		out = append(out, FeedFile{
			Path:   filepath.Join(dir, entry.Name()),
			Market: market,
			Date:   date,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Market < out[j].Market
	})
	return out, nil
}

// Find returns the feed file for market and date in dir.
func Find(dir, market, date string) (FeedFile, error) {
	market = strings.ToUpper(market)
	path := filepath.Join(dir, market+"Quote."+date)
	info, err := os.Stat(path)
	if err != nil {
		return FeedFile{}, fmt.Errorf("feed file %s: %w", path, err)
	}
	if info.IsDir() {
		return FeedFile{}, fmt.Errorf("feed file %s is a directory", path)
	}
	return FeedFile{Path: path, Market: market, Date: date}, nil
}

// Dates returns the distinct dates of files, ascending.
func Dates(files []FeedFile) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range files {
		if !seen[f.Date] {
			seen[f.Date] = true
			out = append(out, f.Date)
		}
	}
	sort.Strings(out)
	return out
}
