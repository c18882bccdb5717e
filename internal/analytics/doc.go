// Package analytics derives per-symbol trading analytics from decoded records:
// aggressor classification against the prevailing book, cumulative VWAP
// series, OHLC statistics and depth views.
//
// Everything here expects the records of a single symbol. Records without a
// decoded timestamp never take part in time-ordered work.
package analytics
