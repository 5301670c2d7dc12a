// Package pdfwords extracts positioned words from PDF files.
//
// It is the extraction front end of the parsing pipeline: glyph runs are
// read with their page coordinates, grouped into visual rows, and merged
// into words wherever the horizontal gap between runs stays below a
// fraction of the font size. Coordinates are converted from PDF
// bottom-origin to top-origin, so smaller Y means higher on the page.
//
// Files are structurally validated before extraction; malformed input
// fails fast with a descriptive error rather than producing a partial
// word list.
package pdfwords
