// Package model defines the record types shared across the quote feed decoder.
//
// Conventions:
//   - Prices: integer ten-thousandths as carried on the wire (333500 = 33.35)
//   - Timestamps: time.Time in UTC, wall clock of the exchange (no zone shift)
//   - Optional numeric fields are pointers; nil means the feed value was unusable
//   - Symbols: trimmed stock codes (e.g. "2330")
package model
