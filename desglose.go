// Package desglose parses Spanish construction budget PDFs
// (presupuestos de obra) into a validated chapter/subchapter/partida
// hierarchy.
//
// Basic usage:
//
//	res, warnings, err := desglose.Open("presupuesto.pdf").Parse()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:\n" + desglose.FormatWarnings(warnings))
//	}
//
// With options:
//
//	res, _, err := desglose.Open("presupuesto.pdf").
//	    Pages(1, 2, 3).
//	    WithBuilderConfig(cfg).
//	    Parse()
//
// The pipeline also exposes its intermediate stages (Words, Lines,
// Classified) for inspection and debugging. For callers that already
// have positioned words, FromPages skips PDF extraction entirely.
package desglose

import (
	"github.com/desglose/desglose/model"
)

// Open prepares a budget PDF for parsing and returns a Parser for fluent
// configuration. The file is not read until a terminal operation runs.
//
// Example:
//
//	res, warnings, err := desglose.Open("presupuesto.pdf").Parse()
func Open(filename string) *Parser {
	return &Parser{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromPages creates a Parser over caller-supplied positioned words,
// bypassing PDF extraction. This is useful for testing and for callers
// with their own extraction front end.
//
// Example:
//
//	pages := []model.Page{...}
//	res, warnings, err := desglose.FromPages(pages).Parse()
func FromPages(pages []model.Page) *Parser {
	return &Parser{
		provided: pages,
		hasPages: true,
		options:  defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	lines := desglose.Must(countLines("presupuesto.pdf"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustParse is a helper that wraps a terminal operation returning
// (T, []Warning, error) and panics if the error is non-nil. It discards
// warnings and returns just the value. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	res := desglose.MustParse(desglose.Open("presupuesto.pdf").Parse())
func MustParse[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
