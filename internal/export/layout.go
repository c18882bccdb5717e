package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rickgao/quotefeed/internal/model"
)

// File extensions per format.
const (
	FormatJSON    = "json"
	FormatParquet = "parquet"
)

// Path returns <dir>/<date>/<symbol>.<format>.
func Path(dir, date, symbol, format string) string {
	return filepath.Join(dir, date, symbol+"."+format)
}

// outputPath is Path for sinks: it refuses names that would escape dir.
func outputPath(dir, date, symbol, format string) (string, error) {
	if !ValidDate(date) {
		return "", fmt.Errorf("invalid output date %q", date)
	}
	if !ValidSymbol(symbol) {
		return "", fmt.Errorf("invalid output symbol %q", symbol)
	}
	return Path(dir, date, symbol, format), nil
}

// ValidDate reports whether s looks like YYYYMMDD.
func ValidDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidSymbol reports whether s is usable as a file name stem.
func ValidSymbol(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`+"\x00")
}

// Exists reports whether every format's file for symbol is present.
func Exists(dir, date, symbol string, formats []string) bool {
	for _, f := range formats {
		if _, err := os.Stat(Path(dir, date, symbol, f)); err != nil {
			return false
		}
	}
	return true
}

// Complete reports whether every symbol already has output in all formats.
// An empty symbol set is never complete.
func Complete(dir, date string, symbols model.SymbolSet, formats []string) bool {
	if len(symbols) == 0 {
		return false
	}
	for s := range symbols {
		if !Exists(dir, date, s, formats) {
			return false
		}
	}
	return true
}

// ListDates returns the date directories under dir, newest first. A missing
// dir yields no dates.
func ListDates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var dates []string
	for _, e := range entries {
		if e.IsDir() && ValidDate(e.Name()) {
			dates = append(dates, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// ListSymbols returns the symbols with a bundle of format for date, ascending.
func ListSymbols(dir, date, format string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, date))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read date directory %s: %w", date, err)
	}

	suffix := "." + format
	var symbols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, suffix) {
			continue
		}
		symbols = append(symbols, strings.TrimSuffix(name, suffix))
	}
	sort.Strings(symbols)
	return symbols, nil
}

// writeAtomic writes via a temp file in the same directory and renames it
// into place.
func writeAtomic(path string, write func(tmp string) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := write(tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
