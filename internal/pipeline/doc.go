// Package pipeline turns feed files into per-symbol outputs.
//
// A unit is one market's feed for one date. Processor handles a unit end to
// end: target selection, skip-existing check, scan, per-symbol analytics and
// sinks. Runner fans units out over a bounded worker pool; a failed unit is
// recorded in its UnitResult and never stops the others.
package pipeline
