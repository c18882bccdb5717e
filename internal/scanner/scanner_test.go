package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/quotefeed/internal/model"
)

var feedDate = time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)

const sampleFeed = "Index,t00,090000000000,23000\n" +
	"Depth,2355,90000000000,BID:1,333000*27,ASK:1,333500*17,1\n" +
	"Trade,2330,90000100000,0,10000000,5,5\n" +
	"Trade,2355,90000200000,0,333500,1,1\n" +
	"Trade,2355,bad,0,333500,1,1\n" +
	"Depth,2355,90000300000,BID:1,333500*2,ASK:1,334000*9,2\n" +
	"Depth,23550,90000300000,BID:1,333500*2,ASK:1,334000*9,3\n" +
	"Trade,2355,90000400000,0,334000,2,3"

func TestScan_FiltersAndPreservesOrder(t *testing.T) {
	s := New()

	res, err := s.Scan(context.Background(), strings.NewReader(sampleFeed), model.NewSymbolSet("2355"), feedDate)
	require.NoError(t, err)

	recs := res.Records["2355"]
	require.Len(t, recs, 4)
	assert.Equal(t, model.KindDepth, recs[0].Kind())
	assert.Equal(t, model.KindTrade, recs[1].Kind())
	assert.Equal(t, model.KindDepth, recs[2].Kind())
	assert.Equal(t, model.KindTrade, recs[3].Kind())

	assert.NotContains(t, res.Records, "2330")
	assert.NotContains(t, res.Records, "23550", "prefilter must match whole fields")

	assert.Equal(t, Stats{Lines: 8, Trades: 2, Depths: 2, Errors: 1, Skipped: 3}, res.Stats)
	assert.Equal(t, []string{"2355"}, res.Symbols())
}

func TestScan_NilTargetsSelectsAll(t *testing.T) {
	res, err := New().Scan(context.Background(), strings.NewReader(sampleFeed), nil, feedDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"2330", "2355", "23550"}, res.Symbols())
}

func TestScan_InvalidBytes(t *testing.T) {
	data := "Trade,2355,90000200000,0,333500,1,1\n" +
		"\xff\xfe\xfd garbage \xc3\x28\n" +
		"Trade,2355,90000300000,0,\xff333500,1,2\n" +
		"Trade,2355,90000400000,0,334000,2,4\n"

	res, err := New().Scan(context.Background(), strings.NewReader(data), model.NewSymbolSet("2355"), feedDate)
	require.NoError(t, err)

	recs := res.Records["2355"]
	require.Len(t, recs, 3)
	assert.Nil(t, recs[1].(*model.Trade).Price, "replaced bytes leave the price unparsable")
	assert.Equal(t, int64(1), res.Stats.Skipped)
}

func TestScan_Big5(t *testing.T) {
	// "Name" line with Big5 bytes, followed by a normal trade.
	data := "Name,2355,\xa5\xc3\xb1\xbc\n" + "Trade,2355,90000200000,0,333500,1,1\n"

	res, err := New(WithEncoding("big5")).Scan(context.Background(), strings.NewReader(data), nil, feedDate)
	require.NoError(t, err)
	assert.Len(t, res.Records["2355"], 1)
}

func TestScan_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var b strings.Builder
	for i := 0; i < cancelCheckEvery+10; i++ {
		b.WriteString("Trade,2355,90000200000,0,333500,1,1\n")
	}

	res, err := New().Scan(ctx, strings.NewReader(b.String()), nil, feedDate)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res, "no partial output on cancellation")
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "TSEQuote.20251031")
	require.NoError(t, os.WriteFile(path, []byte(sampleFeed), 0o644))

	res, err := New().ScanFile(context.Background(), path, model.NewSymbolSet("2330"), feedDate)
	require.NoError(t, err)
	assert.Len(t, res.Records["2330"], 1)

	_, err = New().ScanFile(context.Background(), filepath.Join(dir, "missing"), nil, feedDate)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScan_LeadingNoise(t *testing.T) {
	feed := "\ufeffTrade,2330,90000100000,0,10000000,5,5\n" +
		"  Trade,2330,90000200000,0,10050000,1,6\n" +
		"\tDepth,2330,90000300000,BID:1,10000000*3,ASK:1,10050000*4\n" +
		"Trade,2330,90000400000,0,10000000,2,8\n"

	res, err := New().Scan(context.Background(), strings.NewReader(feed), model.NewSymbolSet("2330"), feedDate)
	require.NoError(t, err)

	assert.Len(t, res.Records["2330"], 4)
	assert.Equal(t, Stats{Lines: 4, Trades: 3, Depths: 1}, res.Stats)

	first, ok := res.Records["2330"][0].(*model.Trade)
	require.True(t, ok)
	assert.Equal(t, "90000100000", first.Packed)
}

func TestPrefilter(t *testing.T) {
	tests := []struct {
		line string
		sym  string
		ok   bool
	}{
		{"Trade,2330,1,0,1,1,1", "2330", true},
		{"Depth, 2330 ,1,BID:0,ASK:0", "2330", true},
		{"Trade,2330", "2330", true},
		{"Tradex,2330,1", "", false},
		{"Index,2330,1", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		sym, ok := prefilter(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.sym, sym, tt.line)
	}
}
