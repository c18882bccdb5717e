// Package scanner streams a quote feed file once and groups the decoded
// records of target symbols by stock code, preserving file order.
//
// Lines are pre-filtered on their tag and stock code field before full
// decoding, so untargeted symbols cost a prefix compare and one field cut.
// Input bytes are decoded through golang.org/x/text; invalid sequences are
// replaced rather than aborting the scan.
package scanner
