package feed

import (
	"errors"
	"fmt"
)

// ErrUnknownTag marks a line whose record kind is neither Trade nor Depth.
// Callers skip such lines without counting them as failures.
var ErrUnknownTag = errors.New("unknown record tag")

// Record-fatal decode errors.
var (
	ErrTooFewFields  = errors.New("too few fields")
	ErrMissingMarker = errors.New("missing BID:/ASK: marker")
	ErrBadSymbol     = errors.New("invalid stock code")
	ErrBadTimestamp  = errors.New("invalid packed timestamp")
)

// ErrClockRange marks a well-formed packed timestamp that is not a time of
// day. Decoders keep the record and leave its time zero.
var ErrClockRange = errors.New("packed timestamp out of range")

// DecodeError wraps a record-fatal error with the offending line.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	line := e.Line
	if len(line) > 80 {
		line = line[:80] + "..."
	}
	return fmt.Sprintf("decode %q: %v", line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
