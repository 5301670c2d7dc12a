package model

// ParseResult is the complete output of one parse: the chapter forest,
// the validation report, and the bookkeeping produced while building the
// tree. The JSON shape is the stable contract consumed by downstream
// tooling.
type ParseResult struct {
	// Chapters are the top-level budget nodes in document order.
	Chapters []*BudgetNode `json:"chapters"`

	// Validation reports declared-versus-computed total mismatches.
	Validation Validation `json:"validation"`

	// Unassigned holds partidas whose source line preceded every known
	// section range; they are kept visible rather than dropped.
	Unassigned []Partida `json:"unassigned,omitempty"`

	// Relocations records every partida moved by range reattachment.
	Relocations []Relocation `json:"relocations,omitempty"`

	// Stats are per-stage counters for the parse.
	Stats Stats `json:"stats"`
}

// Validation is the totals validation report. Valid is false when any
// node's declared total differs from its computed total beyond tolerance.
type Validation struct {
	Valid           bool            `json:"valid"`
	Inconsistencies []Inconsistency `json:"inconsistencies"`
}

// Inconsistency records one declared-versus-computed mismatch. The node
// stays in the tree; the mismatch is reported, not fatal.
type Inconsistency struct {
	Code          string  `json:"code"`
	TotalDeclared float64 `json:"total_declared"`
	TotalComputed float64 `json:"total_computed"`
	Diff          float64 `json:"diff"`
}

// Relocation records a partida that range reattachment moved away from
// its provisional section.
type Relocation struct {
	PartidaCode string `json:"partida"`
	FromCode    string `json:"from"`
	ToCode      string `json:"to"`
	Line        int    `json:"line"`
}

// Stats holds counters gathered across the pipeline stages.
type Stats struct {
	Pages    int `json:"pages"`
	Words    int `json:"words"`
	Lines    int `json:"lines"`
	Filtered int `json:"filtered"`

	// TagCounts maps classification tag names to line counts.
	TagCounts map[string]int `json:"tag_counts,omitempty"`

	Chapters    int `json:"chapters"`
	Subchapters int `json:"subchapters"`
	Partidas    int `json:"partidas"`
	Synthesized int `json:"synthesized"`
	Relocated   int `json:"relocated"`
	Unassigned  int `json:"unassigned"`
}
