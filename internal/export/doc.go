// Package export writes per-symbol analysis bundles to disk and reads them
// back for the viewer.
//
// Layout under the output directory:
//
//	<dir>/<YYYYMMDD>/<symbol>.json     analysis bundle (Document)
//	<dir>/<YYYYMMDD>/<symbol>.parquet  decoded records, one row each
package export
