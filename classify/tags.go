package classify

import "github.com/desglose/desglose/model"

// Tag is the structural classification of one line.
type Tag int

const (
	// TagIgnore marks blank lines, pagination rows, table headers,
	// deduction blocks, and anything no other rule accepted.
	TagIgnore Tag = iota

	// TagChapter marks a top-level section heading ("01 DEMOLICIONES",
	// "CAPÍTULO C01 ACTUACIONES").
	TagChapter

	// TagSubchapter marks a nested section heading with a dotted code,
	// explicit ("SUBCAPÍTULO 01.04 ...", "APARTADO 01.04.01 ...") or
	// implicit ("01.04.01 PAVIMENTO PERMEABLE").
	TagSubchapter

	// TagTotal marks a section total row ("TOTAL SUBCAPÍTULO 01.04.01
	// 49.578,18", "TOTAL 01.04.01....... 49.578,18", "TOTAL 123,45").
	TagTotal

	// TagPartidaFull marks a complete partida line: code, unit, summary,
	// and the quantity/price/amount triplet all present.
	TagPartidaFull

	// TagPartidaHeader marks a partida line that opens an item without
	// completing it on the spot: either code+unit+summary with the values
	// still to come, or an overlap shape where the unit glyph was lost.
	TagPartidaHeader

	// TagPartidaData marks a detached value row of 2 or 3 locale numbers
	// belonging to the open partida.
	TagPartidaData

	// TagDescriptionContinuation marks free text inside an open partida.
	TagDescriptionContinuation
)

// String returns the tag name used in reports and stats.
func (t Tag) String() string {
	switch t {
	case TagChapter:
		return "CHAPTER"
	case TagSubchapter:
		return "SUBCHAPTER"
	case TagTotal:
		return "TOTAL"
	case TagPartidaFull:
		return "PARTIDA_FULL"
	case TagPartidaHeader:
		return "PARTIDA_HEADER"
	case TagPartidaData:
		return "PARTIDA_DATA"
	case TagDescriptionContinuation:
		return "DESCRIPTION_CONTINUATION"
	default:
		return "IGNORE"
	}
}

// ClassifiedLine is one line of the stream together with its tag and the
// fields extracted from the text. Fields not applicable to the tag keep
// their zero value.
type ClassifiedLine struct {
	// Line is the source line; after continuation joining its Text may
	// span the extra joined line.
	Line model.Line

	Tag Tag

	// Code is the section code on heading and named total lines, or the
	// partida code on partida lines.
	Code string

	// Name is the section title on heading lines.
	Name string

	// Scope is the keyword of a named total line ("CAPÍTULO",
	// "SUBCAPÍTULO", "APARTADO"), empty otherwise.
	Scope string

	// Unit is the normalized measurement unit on partida lines, or
	// model.UnitUnknown when the glyph collided with the code.
	Unit string

	// Summary is the descriptive text of a partida line.
	Summary string

	// Quantity, Price and Amount carry the value triplet of partida
	// lines and value rows. A 2-number value row fills Quantity and
	// Amount only. On total lines Amount holds the declared total.
	Quantity float64
	Price    float64
	Amount   float64

	// Overlap reports that the unit token was lost to a code/unit glyph
	// collision and the code came from the overlap heuristics.
	Overlap bool

	// Ambiguous reports that a non-blank line with real content fell
	// through every rule and was ignored.
	Ambiguous bool
}

// Context is the inter-line state threaded through classification: only
// whether a partida is currently open.
type Context struct {
	PartidaActive bool
}

// Next returns the context after a line with the given tag. Headers open
// a partida; value rows, section headings, and totals close it.
func (c Context) Next(t Tag) Context {
	switch t {
	case TagPartidaFull, TagPartidaHeader:
		c.PartidaActive = true
	case TagPartidaData, TagChapter, TagSubchapter, TagTotal:
		c.PartidaActive = false
	}
	return c
}
