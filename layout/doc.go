// Package layout reconstructs reading order from positioned words.
//
// Budget PDFs print partida tables in one or more vertical bands
// (columns of the page, not columns of the table). Reading a
// multi-band page top to bottom interleaves unrelated rows, so the
// package first splits each page into bands, then serializes rows
// band by band.
//
// # Band Detection
//
// [BandDetector] builds a histogram of word start positions, finds
// sustained horizontal gaps, and confirms each gap by measuring how
// much of the page height it crosses without obstruction. Confirmed
// gaps split the page into [Band] regions; bands narrower than the
// configured minimum are treated as margin noise and dropped.
//
// # Rows
//
// [BandLayout.Rows] groups each band's words into visual rows by
// vertical overlap, orders rows top to bottom within a band, and
// joins words left to right with single spaces. Bands are emitted in
// left-to-right order, so a two-band page reads: left band top to
// bottom, then right band top to bottom.
//
// # Decoration
//
// [DecorationFilter] strips repeated page decoration before
// classification: pagination footers, table headers repeated on
// every page, and the project title line. Totals are never stripped,
// however often they repeat.
package layout
