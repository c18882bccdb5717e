package feed

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/quotefeed/internal/model"
)

const (
	minTradeFields = 7
	minDepthFields = 4

	bidMarker = "BID:"
	askMarker = "ASK:"
	levelSep  = "*"
)

// Decoder turns one raw feed line into a record.
type Decoder interface {
	Decode(line string) (model.Record, error)
}

// LineDecoder decodes lines of a single feed file. It holds only the file's
// calendar date and is safe for concurrent use.
type LineDecoder struct {
	date time.Time
}

// NewLineDecoder creates a decoder for lines dated date.
func NewLineDecoder(date time.Time) *LineDecoder {
	return &LineDecoder{date: date}
}

// Date returns the calendar date combined with packed timestamps.
func (d *LineDecoder) Date() time.Time { return d.date }

// Decode dispatches on the record tag. It returns ErrUnknownTag for tags
// other than Trade and Depth, and a *DecodeError for record-fatal problems.
func (d *LineDecoder) Decode(line string) (model.Record, error) {
	line = strings.TrimSpace(line)
	fields := strings.Split(line, ",")

	switch model.Kind(strings.TrimSpace(fields[0])) {
	case model.KindTrade:
		t, err := DecodeTrade(fields, d.date)
		if err != nil {
			return nil, &DecodeError{Line: line, Err: err}
		}
		return t, nil
	case model.KindDepth:
		dp, err := DecodeDepth(fields, d.date)
		if err != nil {
			return nil, &DecodeError{Line: line, Err: err}
		}
		return dp, nil
	default:
		return nil, ErrUnknownTag
	}
}

// DecodeTrade decodes the fields of a Trade line. A trailing sequence field
// beyond the seventh is ignored.
func DecodeTrade(fields []string, date time.Time) (*model.Trade, error) {
	if len(fields) < minTradeFields {
		return nil, ErrTooFewFields
	}

	code, err := parseCode(fields[1])
	if err != nil {
		return nil, err
	}
	ts, packed, err := parseTime(fields[2], date)
	if err != nil {
		return nil, err
	}

	t := &model.Trade{
		Code:        code,
		Time:        ts,
		Packed:      packed,
		Price:       parsePrice(fields[4]),
		Volume:      parseInt64(fields[5]),
		TotalVolume: parseInt64(fields[6]),
	}
	if v := parseInt64(fields[3]); v != nil {
		flag := int(*v)
		t.Flag = &flag
	}
	return t, nil
}

// DecodeDepth decodes the fields of a Depth line.
//
// The bid block runs from the field after BID:<n> up to ASK:<n>; the ask
// block runs from the field after ASK:<n> to the end of the line, minus a
// final sequence field when that field carries no '*'. Levels past the
// advertised count or past model.Levels stay nil.
func DecodeDepth(fields []string, date time.Time) (*model.Depth, error) {
	if len(fields) < minDepthFields {
		return nil, ErrTooFewFields
	}

	bidIdx, askIdx := -1, -1
	for i, f := range fields {
		if bidIdx < 0 && strings.Contains(f, bidMarker) {
			bidIdx = i
		} else if askIdx < 0 && strings.Contains(f, askMarker) {
			askIdx = i
		}
	}
	if bidIdx < 0 || askIdx < 0 {
		return nil, ErrMissingMarker
	}

	code, err := parseCode(fields[1])
	if err != nil {
		return nil, err
	}
	ts, packed, err := parseTime(fields[2], date)
	if err != nil {
		return nil, err
	}

	d := &model.Depth{
		Code:     code,
		Time:     ts,
		Packed:   packed,
		BidCount: parseCount(fields[bidIdx]),
		AskCount: parseCount(fields[askIdx]),
	}

	var bids []string
	if bidIdx < askIdx {
		bids = fields[bidIdx+1 : askIdx]
	}
	end := len(fields)
	if end-1 > askIdx && !strings.Contains(fields[end-1], levelSep) {
		end--
	}
	asks := fields[askIdx+1 : end]

	fillLevels(&d.Bids, bids, d.BidCount)
	fillLevels(&d.Asks, asks, d.AskCount)
	return d, nil
}

func fillLevels(dst *[model.Levels]*model.Level, block []string, count int) {
	for i := 0; i < model.Levels && i < len(block) && i < count; i++ {
		dst[i] = parseLevel(block[i])
	}
}

// parseLevel decodes "<price>*<volume>". Any malformed part yields nil.
func parseLevel(s string) *model.Level {
	priceStr, volStr, ok := strings.Cut(strings.TrimSpace(s), levelSep)
	if !ok || strings.Contains(volStr, levelSep) {
		return nil
	}
	price := parsePrice(priceStr)
	vol := parseInt64(volStr)
	if price == nil || vol == nil {
		return nil
	}
	return &model.Level{Price: *price, Volume: *vol}
}

// parseCount reads the level count after a BID:/ASK: marker. Non-numeric
// counts decode as zero.
func parseCount(field string) int {
	_, after, _ := strings.Cut(field, ":")
	n, err := strconv.Atoi(strings.TrimSpace(after))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseCode(s string) (string, error) {
	code := strings.TrimSpace(s)
	if code == "" || strings.ContainsAny(code, " \t:*/\\\x00") {
		return "", ErrBadSymbol
	}
	return code, nil
}

// parseTime returns a zero time (and no error) when the packed value is
// well-formed but not a clock time, so the record survives for diagnostics.
func parseTime(s string, date time.Time) (time.Time, string, error) {
	packed := strings.TrimSpace(s)
	ts, err := DecodeTimestamp(packed, date)
	switch {
	case err == nil:
		return ts, packed, nil
	case errors.Is(err, ErrClockRange):
		return time.Time{}, packed, nil
	default:
		return time.Time{}, packed, err
	}
}

// parsePrice parses a raw integer price. Negative prices are treated as absent.
func parsePrice(s string) *model.Price {
	v := parseInt64(s)
	if v == nil || *v < 0 {
		return nil
	}
	p := model.Price(*v)
	return &p
}

func parseInt64(s string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
