package targets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/quotefeed/internal/model"
)

func TestSelector_FallsBackAcrossMissingDay(t *testing.T) {
	n := Noteworthy{
		"20251030": model.NewSymbolSet("2330"),
		"20251101": model.NewSymbolSet("2317"),
	}

	got, err := NewSelector(nil).Targets(n, "20251101")
	require.NoError(t, err)
	assert.Equal(t, []string{"2317", "2330"}, got.Sorted())
}

func TestSelector_StopsAtFirstHit(t *testing.T) {
	n := Noteworthy{
		"20251027": model.NewSymbolSet("1101"),
		"20251030": model.NewSymbolSet("2330"),
		"20251031": model.NewSymbolSet("2317"),
	}

	got, err := NewSelector(nil).Targets(n, "20251103")
	require.NoError(t, err)
	assert.Equal(t, []string{"2317"}, got.Sorted(), "only the nearest earlier date contributes")
}

func TestSelector_LookbackWindow(t *testing.T) {
	n := Noteworthy{
		"20251020": model.NewSymbolSet("2330"),
	}

	got, err := NewSelector(nil).Targets(n, "20251028")
	require.NoError(t, err)
	assert.Empty(t, got, "8 days back is outside the default window")

	got, err = NewSelector(nil).Targets(n, "20251027")
	require.NoError(t, err)
	assert.Equal(t, []string{"2330"}, got.Sorted())

	got, err = NewSelector(LookbackCalendar{MaxDays: 10}).Targets(n, "20251028")
	require.NoError(t, err)
	assert.Equal(t, []string{"2330"}, got.Sorted())
}

func TestSelector_DateNotInList(t *testing.T) {
	n := Noteworthy{}
	got, err := NewSelector(nil).Targets(n, "20251101")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelector_InvalidDate(t *testing.T) {
	_, err := NewSelector(nil).Targets(Noteworthy{}, "2025-11-01")
	assert.Error(t, err)
}

type fixedCalendar string

func (c fixedCalendar) Previous(Noteworthy, time.Time) (string, bool) {
	return string(c), c != ""
}

func TestSelector_CustomCalendar(t *testing.T) {
	n := Noteworthy{
		"20250101": model.NewSymbolSet("9999"),
		"20251101": model.NewSymbolSet("2317"),
	}

	got, err := NewSelector(fixedCalendar("20250101")).Targets(n, "20251101")
	require.NoError(t, err)
	assert.Equal(t, []string{"2317", "9999"}, got.Sorted())
}

func TestNoteworthy_AddAndDates(t *testing.T) {
	n := make(Noteworthy)
	n.Add("20251101", "2317")
	n.Add("20251030", "2330")
	n.Add("20251101", "2330")

	assert.Equal(t, []string{"20251030", "20251101"}, n.Dates())
	assert.Len(t, n["20251101"], 2)
}
