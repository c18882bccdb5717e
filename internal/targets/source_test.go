package targets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := map[string]string{
		"20251031":             "20251031",
		"2025-10-31":           "20251031",
		"2025-10-31 00:00:00":  "20251031",
		"2025-10-31T00:00:00Z": "20251031",
		" 2025/10/31 ":         "20251031",
	}
	for in, want := range tests {
		got, err := NormalizeDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := NormalizeDate("31/10/2025")
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	data := "stock_id,name,date\n" +
		"2330 ,TSMC,2025-10-30\n" +
		"2317,Hon Hai,20251101\n" +
		"2330,TSMC,2025-11-01\n" +
		",blank,2025-11-01\n"

	n, err := ReadCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"20251030", "20251101"}, n.Dates())
	assert.True(t, n["20251030"].Has("2330"), "symbols are trimmed")
	assert.Equal(t, []string{"2317", "2330"}, n["20251101"].Sorted())
}

func TestReadCSV_MissingColumns(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("symbol,day\n2330,20251030\n"))
	assert.Error(t, err)
}

func TestReadCSV_BadDate(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("date,stock_id\nyesterday,2330\n"))
	assert.Error(t, err)
}

func TestCSVSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noteworthy.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffdate,stock_id\n20251030,2330\n"), 0o644))

	n, err := CSVSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, n["20251030"].Has("2330"))

	_, err = CSVSource{Path: filepath.Join(t.TempDir(), "missing.csv")}.Load(context.Background())
	assert.Error(t, err)
}

func TestParquetSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noteworthy.parquet")
	rows := []noteworthyRow{
		{Date: "2025-10-30", StockID: "2330"},
		{Date: "20251101", StockID: " 2317 "},
	}
	require.NoError(t, parquet.WriteFile(path, rows))

	n, err := ParquetSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, n["20251030"].Has("2330"))
	assert.True(t, n["20251101"].Has("2317"))
}

type fakeRows struct {
	data [][2]string
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	*dest[0].(*string) = row[0]
	*dest[1].(*string) = row[1]
	return nil
}

type fakeQuerier struct {
	rows  *fakeRows
	err   error
	query string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.query = sql
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestPostgresSource_Load(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][2]string{
		{"20251030", "2330"},
		{"20251101", "2317"},
	}}}

	n, err := PostgresSource{DB: q}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultQuery, q.query)
	assert.Equal(t, []string{"20251030", "20251101"}, n.Dates())

	got, err := NewSelector(nil).Targets(n, "20251101")
	require.NoError(t, err)
	assert.Equal(t, []string{"2317", "2330"}, got.Sorted())
}

func TestPostgresSource_Errors(t *testing.T) {
	_, err := PostgresSource{DB: &fakeQuerier{err: errors.New("conn refused")}}.Load(context.Background())
	assert.ErrorContains(t, err, "conn refused")

	_, err = PostgresSource{DB: &fakeQuerier{rows: &fakeRows{err: errors.New("broken")}}}.Load(context.Background())
	assert.ErrorContains(t, err, "broken")
}
