package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644))
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name   string
		market string
		date   string
		ok     bool
	}{
		{"TSEQuote.20251031", "TSE", "20251031", true},
		{"OTCQuote.20240102", "OTC", "20240102", true},
		{"otcQuote.20240102", "OTC", "20240102", true},
		{"TSEQuote.2025103", "", "", false},
		{"TSEQuote.20251031.bak", "", "", false},
		{"Quote.20251031", "", "", false},
		{"TSE.20251031", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			market, date, ok := ParseName(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.market, market)
			assert.Equal(t, tt.date, date)
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "TSEQuote.20251031")
	touch(t, dir, "OTCQuote.20251031")
	touch(t, dir, "TSEQuote.20251030")
	touch(t, dir, "XYZQuote.20251030")
	touch(t, dir, "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "OTCQuote.20251029"), 0o755))

	got, err := Discover(dir, nil)
	require.NoError(t, err)

	var keys []string
	for _, f := range got {
		keys = append(keys, f.Key())
	}
	assert.Equal(t, []string{"TSE/20251030", "OTC/20251031", "TSE/20251031"}, keys)
	assert.Equal(t, filepath.Join(dir, "TSEQuote.20251030"), got[0].Path)
	assert.Equal(t, []string{"20251030", "20251031"}, Dates(got))

	only, err := Discover(dir, []string{"otc"})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "OTC", only[0].Market)
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "absent"), nil)
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "TSEQuote.20251031")

	f, err := Find(dir, "tse", "20251031")
	require.NoError(t, err)
	assert.Equal(t, "TSE", f.Market)

	_, err = Find(dir, "OTC", "20251031")
	assert.Error(t, err)
}
