// Package feed decodes raw quote feed lines into typed records.
//
// Line formats (comma separated):
//
//	Trade,<code>,<packed time>,<flag>,<price>,<volume>,<total volume>[,<seq>]
//	Depth,<code>,<packed time>,BID:<n>,<p*v>...,ASK:<n>,<p*v>...[,<seq>]
//
// Prices are integers in ten-thousandths. Packed times are HHMMSSffffff with
// leading zeros stripped by the producer; they are combined with the calendar
// date of the feed file.
//
// Unknown tags are reported with ErrUnknownTag and are not decode failures.
// A numeric subfield that does not parse leaves the matching record field nil;
// only a bad field count, missing BID:/ASK: markers, an empty stock code or a
// syntactically invalid packed time drop the whole line.
package feed
