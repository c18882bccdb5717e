// Package files locates raw quote feed files on disk.
//
// Feed files are named <MARKET>Quote.<YYYYMMDD>, for example
// TSEQuote.20251031. Discover lists the files of the configured markets in a
// directory; each one is a unit of work for the pipeline.
package files
