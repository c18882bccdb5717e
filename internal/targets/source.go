package targets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/parquet-go/parquet-go"
)

// Source loads a noteworthy symbol list.
type Source interface {
	Load(ctx context.Context) (Noteworthy, error)
}

// Column names of the external noteworthy table.
const (
	DateColumn   = "date"
	SymbolColumn = "stock_id"
)

// DefaultQuery reads the noteworthy table from Postgres.
const DefaultQuery = `SELECT to_char(date, 'YYYYMMDD'), stock_id::text FROM noteworthy_symbols`

var dateLayouts = []string{
	dateLayout,
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// NormalizeDate converts the date spellings found in noteworthy tables to
// YYYYMMDD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

func addRow(n Noteworthy, date, symbol string) error {
	d, err := NormalizeDate(date)
	if err != nil {
		return err
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil
	}
	n.Add(d, symbol)
	return nil
}

// CSVSource reads a CSV file with a header naming the date and stock_id
// columns, in any order.
type CSVSource struct {
	Path string
}

func (s CSVSource) Load(ctx context.Context) (Noteworthy, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open noteworthy csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(ctx, f)
}

// ReadCSV parses noteworthy rows from r.
func ReadCSV(ctx context.Context, r io.Reader) (Noteworthy, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read noteworthy header: %w", err)
	}
	dateIdx, symIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case DateColumn:
			dateIdx = i
		case SymbolColumn:
			symIdx = i
		}
	}
	if dateIdx < 0 || symIdx < 0 {
		return nil, fmt.Errorf("noteworthy header %v: need %q and %q columns", header, DateColumn, SymbolColumn)
	}

	n := make(Noteworthy)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read noteworthy row %d: %w", line, err)
		}
		if dateIdx >= len(rec) || symIdx >= len(rec) {
			return nil, fmt.Errorf("noteworthy row %d: short row", line)
		}
		if err := addRow(n, rec[dateIdx], rec[symIdx]); err != nil {
			return nil, fmt.Errorf("noteworthy row %d: %w", line, err)
		}
	}
	return n, nil
}

// noteworthyRow is the Parquet layout of the noteworthy table.
type noteworthyRow struct {
	Date    string `parquet:"date"`
	StockID string `parquet:"stock_id"`
}

// ParquetSource reads a Parquet file with string date and stock_id columns.
type ParquetSource struct {
	Path string
}

func (s ParquetSource) Load(ctx context.Context) (Noteworthy, error) {
	rows, err := parquet.ReadFile[noteworthyRow](s.Path)
	if err != nil {
		return nil, fmt.Errorf("read noteworthy parquet: %w", err)
	}
	n := make(Noteworthy)
	for i, r := range rows {
		if err := addRow(n, r.Date, r.StockID); err != nil {
			return nil, fmt.Errorf("noteworthy row %d: %w", i, err)
		}
	}
	return n, ctx.Err()
}

// Querier is satisfied by *pgxpool.Pool and *pgx.Conn.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource runs a query returning (date, stock_id) text columns.
type PostgresSource struct {
	DB    Querier
	Query string
}

func (s PostgresSource) Load(ctx context.Context) (Noteworthy, error) {
	query := s.Query
	if query == "" {
		query = DefaultQuery
	}

	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query noteworthy: %w", err)
	}
	defer rows.Close()

	n := make(Noteworthy)
	for rows.Next() {
		var date, symbol string
		if err := rows.Scan(&date, &symbol); err != nil {
			return nil, fmt.Errorf("scan noteworthy: %w", err)
		}
		if err := addRow(n, date, symbol); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate noteworthy: %w", err)
	}
	return n, nil
}
