package targets

import (
	"fmt"

	"github.com/rickgao/quotefeed/internal/config"
)

// NewSource builds the Source selected by cfg. db is only consulted for the
// postgres source and may be nil otherwise.
func NewSource(cfg config.NoteworthyConfig, db Querier) (Source, error) {
	switch cfg.Source {
	case "csv":
		return CSVSource{Path: cfg.Path}, nil
	case "parquet":
		return ParquetSource{Path: cfg.Path}, nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("noteworthy source postgres: no database connection")
		}
		return PostgresSource{DB: db, Query: cfg.Query}, nil
	default:
		return nil, fmt.Errorf("unknown noteworthy source %q", cfg.Source)
	}
}
