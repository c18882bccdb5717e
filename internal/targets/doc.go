// Package targets decides which symbols to decode for a feed date.
//
// The noteworthy list maps YYYYMMDD dates to stock codes of interest. A date's
// targets are its own noteworthy symbols plus those of the previous trading
// day. Without a trading calendar the previous trading day is approximated by
// LookbackCalendar: the nearest earlier date present in the list within seven
// calendar days.
package targets
