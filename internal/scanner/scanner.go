package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/rickgao/quotefeed/internal/feed"
	"github.com/rickgao/quotefeed/internal/model"
)

// cancelCheckEvery is how many lines pass between context checks.
const cancelCheckEvery = 4096

// Stats tallies one scan.
type Stats struct {
	Lines   int64 // Lines read
	Trades  int64 // Trade records decoded
	Depths  int64 // Depth records decoded
	Errors  int64 // Record-fatal decode failures
	Skipped int64 // Unknown tags and untargeted symbols
}

// Result holds the records of one feed file, grouped by symbol in file order.
type Result struct {
	Date    time.Time
	Records map[string][]model.Record
	Stats   Stats
}

// Symbols returns the symbols that produced at least one record.
func (r *Result) Symbols() []string {
	set := make(model.SymbolSet, len(r.Records))
	for s := range r.Records {
		set.Add(s)
	}
	return set.Sorted()
}

// Scanner reads feed files.
type Scanner struct {
	enc       encoding.Encoding
	logger    *slog.Logger
	maxLogged int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithEncoding selects the input text encoding by WHATWG name (e.g. "utf-8",
// "big5").
func WithEncoding(name string) Option {
	return func(s *Scanner) {
		if name == "" {
			return
		}
		if enc, err := htmlindex.Get(name); err == nil {
			s.enc = enc
		} else {
			s.logger.Warn("unknown feed encoding, using utf-8", "encoding", name)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithErrorLogLimit caps how many decode failures per scan are logged.
func WithErrorLogLimit(n int) Option {
	return func(s *Scanner) {
		s.maxLogged = n
	}
}

// New creates a Scanner. The default encoding is UTF-8 with replacement of
// invalid bytes.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		enc:       unicode.UTF8,
		logger:    slog.Default(),
		maxLogged: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanFile opens path and scans it. Open failures are returned wrapped.
func (s *Scanner) ScanFile(ctx context.Context, path string, targets model.SymbolSet, date time.Time) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed file: %w", err)
	}
	defer f.Close()

	res, err := s.Scan(ctx, f, targets, date)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return res, nil
}

// Scan reads r to the end and decodes every line of a targeted symbol. A nil
// targets set selects every symbol. Cancellation returns ctx.Err() and no
// partial result.
func (s *Scanner) Scan(ctx context.Context, r io.Reader, targets model.SymbolSet, date time.Time) (*Result, error) {
	dec := feed.NewLineDecoder(date)
	res := &Result{
		Date:    date,
		Records: make(map[string][]model.Record),
	}

	br := bufio.NewReaderSize(transform.NewReader(r, s.enc.NewDecoder()), 64*1024)
	logged := 0

	for {
		line, readErr := br.ReadString('\n')
		if len(line) > 0 {
			res.Stats.Lines++
			if res.Stats.Lines%cancelCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			s.scanLine(dec, line, targets, res, &logged)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read line %d: %w", res.Stats.Lines+1, readErr)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// lineNoise is stripped from the front of every line before the tag test.
// Exported feeds sometimes start with a UTF-8 byte order mark.
const lineNoise = " \t\r\ufeff"

func (s *Scanner) scanLine(dec feed.Decoder, line string, targets model.SymbolSet, res *Result, logged *int) {
	line = strings.TrimLeft(line, lineNoise)
	sym, ok := prefilter(line)
	if !ok || (targets != nil && !targets.Has(sym)) {
		res.Stats.Skipped++
		return
	}

	rec, err := dec.Decode(line)
	switch {
	case errors.Is(err, feed.ErrUnknownTag):
		res.Stats.Skipped++
		return
	case err != nil:
		res.Stats.Errors++
		if *logged < s.maxLogged {
			*logged++
			s.logger.Debug("dropped feed line", "line_number", res.Stats.Lines, "error", err)
		}
		return
	}

	switch rec.Kind() {
	case model.KindTrade:
		res.Stats.Trades++
	case model.KindDepth:
		res.Stats.Depths++
	}
	res.Records[rec.Symbol()] = append(res.Records[rec.Symbol()], rec)
}

// prefilter returns the trimmed stock code field of a Trade or Depth line
// without splitting the whole line.
func prefilter(line string) (string, bool) {
	var rest string
	switch {
	case strings.HasPrefix(line, string(model.KindTrade)+","):
		rest = line[len(model.KindTrade)+1:]
	case strings.HasPrefix(line, string(model.KindDepth)+","):
		rest = line[len(model.KindDepth)+1:]
	default:
		return "", false
	}
	code, _, _ := strings.Cut(rest, ",")
	return strings.TrimSpace(code), true
}
