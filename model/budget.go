package model

import "strings"

// UnitUnknown is the sentinel stored in Partida.Unit when the unit token
// could not be read because its glyph collided with the code in the source
// document.
const UnitUnknown = "<unknown>"

// BudgetNode is one section of the budget hierarchy: a chapter (depth 1)
// or a nested subchapter (depth ≥ 2). Children and Partidas preserve
// document order.
type BudgetNode struct {
	// Code is the dotted section code, e.g. "01" or "01.04.02".
	Code string `json:"codigo"`

	// Name is the section title as printed in the document.
	Name string `json:"nombre"`

	// Depth is the number of dot-separated code segments.
	Depth int `json:"-"`

	// TotalDeclared is the total printed in the document, nil when the
	// document never declared one (synthesized levels, missing TOTAL rows).
	TotalDeclared *float64 `json:"total_declarado"`

	// TotalComputed is the recursive sum of child totals and partida
	// amounts, filled by the totals pass.
	TotalComputed float64 `json:"total_computado"`

	// Partidas attached directly to this node.
	Partidas []Partida `json:"partidas"`

	// Children are nested subchapters in document order.
	Children []*BudgetNode `json:"subcapitulos"`

	// Synthesized marks levels created from a deeper code's segments
	// rather than from a declared section line.
	Synthesized bool `json:"-"`
}

// Child returns the direct child with the given code, or nil.
func (n *BudgetNode) Child(code string) *BudgetNode {
	for _, c := range n.Children {
		if c.Code == code {
			return c
		}
	}
	return nil
}

// Walk visits the node and all descendants depth-first in document order.
func (n *BudgetNode) Walk(fn func(*BudgetNode)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Partida is a priced line item of work.
type Partida struct {
	// Code identifies the item, e.g. "APUDes23UA014e".
	Code string `json:"codigo"`

	// Unit is the normalized measurement unit, or UnitUnknown when the
	// token was lost to a code/unit glyph collision.
	Unit string `json:"unidad"`

	// Summary is the first descriptive line of the item.
	Summary string `json:"resumen"`

	// Description is the full multi-line description, joined with spaces.
	Description string `json:"descripcion"`

	Quantity  float64 `json:"cantidad"`
	UnitPrice float64 `json:"precio"`
	Amount    float64 `json:"importe"`

	// SourceLine is the global line number where the item started; it is
	// the key used for range-based attribution.
	SourceLine int `json:"linea"`

	// Overlap reports that the unit glyph collided with the code in the
	// source document.
	Overlap bool `json:"solape"`
}

// CodeDepth returns the number of dot-separated segments in a section
// code: "01" → 1, "01.04.02" → 3. An empty code has depth 0.
func CodeDepth(code string) int {
	if code == "" {
		return 0
	}
	return strings.Count(code, ".") + 1
}

// ParentCode returns the code with its last dot segment removed, or ""
// for a top-level code.
func ParentCode(code string) string {
	i := strings.LastIndex(code, ".")
	if i < 0 {
		return ""
	}
	return code[:i]
}

// CodePrefixes returns every ancestor code from shallowest to deepest,
// excluding the code itself: "01.04.02" → ["01", "01.04"].
func CodePrefixes(code string) []string {
	var prefixes []string
	for i, r := range code {
		if r == '.' {
			prefixes = append(prefixes, code[:i])
		}
	}
	return prefixes
}
