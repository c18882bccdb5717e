package feed

import (
	"fmt"
	"strings"
	"time"
)

const (
	// PackedLength is the width of a fully padded packed timestamp.
	PackedLength = 12

	// DateLayout is the calendar date embedded in feed file names.
	DateLayout = "20060102"
)

// ParseDate parses a YYYYMMDD feed date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("parse date %q: want %d digits", s, len(DateLayout))
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// PadPacked left-pads a packed timestamp with zeros to PackedLength.
// It fails on empty, non-digit or over-length input.
func PadPacked(packed string) (string, error) {
	packed = strings.TrimSpace(packed)
	if packed == "" || len(packed) > PackedLength {
		return "", fmt.Errorf("%w: %q", ErrBadTimestamp, packed)
	}
	for i := 0; i < len(packed); i++ {
		if packed[i] < '0' || packed[i] > '9' {
			return "", fmt.Errorf("%w: %q", ErrBadTimestamp, packed)
		}
	}
	return strings.Repeat("0", PackedLength-len(packed)) + packed, nil
}

// DecodeTimestamp combines a packed HHMMSSffffff time with date.
//
// Syntactic problems (empty, non-digit, longer than 12) return ErrBadTimestamp.
// A well-formed string whose fields are not a clock time (hour 24+, minute or
// second 60+) returns ErrClockRange.
func DecodeTimestamp(packed string, date time.Time) (time.Time, error) {
	p, err := PadPacked(packed)
	if err != nil {
		return time.Time{}, err
	}

	hh := atoiDigits(p[0:2])
	mm := atoiDigits(p[2:4])
	ss := atoiDigits(p[4:6])
	us := atoiDigits(p[6:12])
	if hh > 23 || mm > 59 || ss > 59 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrClockRange, packed)
	}

	y, m, d := date.Date()
	return time.Date(y, m, d, hh, mm, ss, us*int(time.Microsecond), time.UTC), nil
}

// atoiDigits converts a string already known to be ASCII digits.
func atoiDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
