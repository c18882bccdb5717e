package export

import (
	"context"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/rickgao/quotefeed/internal/analytics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Sink persists one symbol's bundle.
type Sink interface {
	Name() string
	Write(ctx context.Context, b *analytics.Bundle) error
}

// JSONSink writes <dir>/<date>/<symbol>.json.
type JSONSink struct {
	Dir string
}

func (s *JSONSink) Name() string { return FormatJSON }

// Write encodes b as a Document.
func (s *JSONSink) Write(ctx context.Context, b *analytics.Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(NewDocument(b))
	if err != nil {
		return fmt.Errorf("encode bundle %s: %w", b.Symbol, err)
	}
	path, err := outputPath(s.Dir, b.Date, b.Symbol, FormatJSON)
	if err != nil {
		return err
	}
	return writeAtomic(path, func(tmp string) error {
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return fmt.Errorf("write bundle %s: %w", b.Symbol, err)
		}
		return nil
	})
}

// ReadDocument loads a bundle written by JSONSink.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode bundle %s: %w", path, err)
	}
	return &doc, nil
}
