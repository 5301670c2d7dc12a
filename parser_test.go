package desglose

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/desglose/desglose/classify"
	"github.com/desglose/desglose/layout"
	"github.com/desglose/desglose/model"
)

// ============================================================================
// Test Helpers
// ============================================================================

// pageOf lays out each text as one word per visual row, stacked top to
// bottom in a single column.
func pageOf(num int, texts ...string) model.Page {
	words := make([]model.Word, len(texts))
	for i, t := range texts {
		y := 60 + float64(i)*20
		words[i] = model.Word{Text: t, X0: 72, X1: 523, Y0: y, Y1: y + 10}
	}
	return model.Page{Number: num, Width: 595.28, Height: 841.89, Words: words}
}

// budgetPages is a two-page budget with repeated page decoration, an
// overlap partida, a partida split across the page boundary, and one
// deliberately wrong declared total.
func budgetPages() []model.Page {
	return []model.Page{
		pageOf(1,
			"PRESUPUESTO",
			"REHABILITACIÓN DEL MERCADO MUNICIPAL DE ABASTOS",
			"CÓDIGO RESUMEN CANTIDAD PRECIO IMPORTE",
			"01 DEMOLICIONES",
			"01.04 FIRMES Y PAVIMENTOS",
			"01.04.01 PAVIMENTO PERMEABLE",
			"APUDes23UA014e LEVANTADO DE BORDILLO 95,00 9,17 869,32",
			"D38AP018 m3 EXCAVACIÓN EN ZANJA",
			"Excavación mecánica en terreno compacto, incluso carga y transporte.",
			"1",
		),
		pageOf(2,
			"PRESUPUESTO",
			"REHABILITACIÓN DEL MERCADO MUNICIPAL DE ABASTOS",
			"CÓDIGO RESUMEN CANTIDAD PRECIO IMPORTE",
			"120,50 4,14 498,87",
			"TOTAL SUBCAPÍTULO 01.04.01 PAVIMENTO PERMEABLE...... 1.368,19",
			"01.04.02 PAVIMENTO IMPERMEABLE",
			"U09TC010 m2 PAVIMENTO CONTINUO DE HORMIGÓN 274,30 35,10 9.627,93",
			"TOTAL 01.04.02....... 107.930,01",
			"TOTAL 01.04........ 10.996,12",
			"2",
		),
	}
}

func findNode(chapters []*model.BudgetNode, code string) *model.BudgetNode {
	var found *model.BudgetNode
	for _, ch := range chapters {
		ch.Walk(func(n *model.BudgetNode) {
			if n.Code == code {
				found = n
			}
		})
	}
	return found
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func warningCodes(warnings []Warning) map[WarningCode]int {
	counts := make(map[WarningCode]int)
	for _, w := range warnings {
		counts[w.Code]++
	}
	return counts
}

// ============================================================================
// Full Pipeline Tests
// ============================================================================

func TestParseBudgetDocument(t *testing.T) {
	res, warnings, err := FromPages(budgetPages()).Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if len(res.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(res.Chapters))
	}
	ch := res.Chapters[0]
	if ch.Code != "01" || ch.Name != "DEMOLICIONES" {
		t.Errorf("expected chapter 01 DEMOLICIONES, got %s %s", ch.Code, ch.Name)
	}
	if !almostEqual(ch.TotalComputed, 10996.12) {
		t.Errorf("expected chapter total 10996.12, got %.2f", ch.TotalComputed)
	}
	if ch.TotalDeclared != nil {
		t.Errorf("chapter has no printed total, got declared %.2f", *ch.TotalDeclared)
	}

	sub := findNode(res.Chapters, "01.04")
	if sub == nil {
		t.Fatal("expected node 01.04")
	}
	if sub.Name != "FIRMES Y PAVIMENTOS" {
		t.Errorf("expected 01.04 FIRMES Y PAVIMENTOS, got %q", sub.Name)
	}
	if sub.TotalDeclared == nil || !almostEqual(*sub.TotalDeclared, 10996.12) {
		t.Errorf("expected 01.04 declared 10996.12, got %v", sub.TotalDeclared)
	}
	if len(sub.Children) != 2 {
		t.Fatalf("expected 2 subchapters under 01.04, got %d", len(sub.Children))
	}
	if sub.Children[0].Code != "01.04.01" || sub.Children[1].Code != "01.04.02" {
		t.Errorf("expected children in document order, got %s, %s",
			sub.Children[0].Code, sub.Children[1].Code)
	}

	good := findNode(res.Chapters, "01.04.01")
	if !almostEqual(good.TotalComputed, 1368.19) {
		t.Errorf("expected 01.04.01 computed 1368.19, got %.2f", good.TotalComputed)
	}
	if len(good.Partidas) != 2 {
		t.Fatalf("expected 2 partidas in 01.04.01, got %d", len(good.Partidas))
	}

	bad := findNode(res.Chapters, "01.04.02")
	if bad.Name != "PAVIMENTO IMPERMEABLE" {
		t.Errorf("expected 01.04.02 PAVIMENTO IMPERMEABLE, got %q", bad.Name)
	}
	if !almostEqual(bad.TotalComputed, 9627.93) {
		t.Errorf("expected 01.04.02 computed 9627.93, got %.2f", bad.TotalComputed)
	}
	if len(bad.Partidas) != 1 {
		t.Fatalf("expected 1 partida in 01.04.02, got %d", len(bad.Partidas))
	}

	if res.Validation.Valid {
		t.Error("expected validation failure from the wrong declared total")
	}
	if len(res.Validation.Inconsistencies) != 1 {
		t.Fatalf("expected 1 inconsistency, got %d", len(res.Validation.Inconsistencies))
	}
	inc := res.Validation.Inconsistencies[0]
	if inc.Code != "01.04.02" {
		t.Errorf("expected inconsistency on 01.04.02, got %s", inc.Code)
	}
	if !almostEqual(inc.TotalDeclared, 107930.01) || !almostEqual(inc.TotalComputed, 9627.93) {
		t.Errorf("expected declared 107930.01 computed 9627.93, got %.2f / %.2f",
			inc.TotalDeclared, inc.TotalComputed)
	}
	if !almostEqual(inc.Diff, 98302.08) {
		t.Errorf("expected diff 98302.08, got %.2f", inc.Diff)
	}

	if len(res.Unassigned) != 0 {
		t.Errorf("expected no unassigned partidas, got %d", len(res.Unassigned))
	}
	if len(res.Relocations) != 0 {
		t.Errorf("expected no relocations, got %d", len(res.Relocations))
	}

	// The kept first occurrences of PRESUPUESTO and the project title
	// fall through classification; the overlap partida fails the
	// quantity × price check; the wrong declared total is reported.
	codes := warningCodes(warnings)
	if codes[WarnAmbiguousLine] != 2 {
		t.Errorf("expected 2 ambiguous line warnings, got %d", codes[WarnAmbiguousLine])
	}
	if codes[WarnArithmeticMismatch] != 1 {
		t.Errorf("expected 1 arithmetic warning, got %d", codes[WarnArithmeticMismatch])
	}
	if codes[WarnTotalMismatch] != 1 {
		t.Errorf("expected 1 total mismatch warning, got %d", codes[WarnTotalMismatch])
	}
	if len(warnings) != 4 {
		t.Errorf("expected 4 warnings, got %d: %s", len(warnings), FormatWarnings(warnings))
	}
}

func TestParseStats(t *testing.T) {
	res, _, err := FromPages(budgetPages()).Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	s := res.Stats
	if s.Pages != 2 || s.Words != 20 {
		t.Errorf("expected 2 pages / 20 words, got %d / %d", s.Pages, s.Words)
	}
	if s.Lines != 15 || s.Filtered != 5 {
		t.Errorf("expected 15 lines / 5 filtered, got %d / %d", s.Lines, s.Filtered)
	}
	if s.Chapters != 1 || s.Subchapters != 3 || s.Partidas != 3 {
		t.Errorf("expected 1/3/3 chapters/subchapters/partidas, got %d/%d/%d",
			s.Chapters, s.Subchapters, s.Partidas)
	}
	if s.Synthesized != 0 || s.Relocated != 0 || s.Unassigned != 0 {
		t.Errorf("expected no synthesized/relocated/unassigned, got %d/%d/%d",
			s.Synthesized, s.Relocated, s.Unassigned)
	}

	want := map[string]int{
		"IGNORE":                   3,
		"CHAPTER":                  1,
		"SUBCHAPTER":               3,
		"TOTAL":                    3,
		"PARTIDA_HEADER":           2,
		"PARTIDA_FULL":             1,
		"PARTIDA_DATA":             1,
		"DESCRIPTION_CONTINUATION": 1,
	}
	for tag, count := range want {
		if s.TagCounts[tag] != count {
			t.Errorf("expected %d %s lines, got %d", count, tag, s.TagCounts[tag])
		}
	}
}

func TestParsePartidaDetails(t *testing.T) {
	res, _, err := FromPages(budgetPages()).Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	partidas := findNode(res.Chapters, "01.04.01").Partidas

	overlap := partidas[0]
	if overlap.Code != "APUDes23UA014e" {
		t.Fatalf("expected APUDes23UA014e first, got %s", overlap.Code)
	}
	if !overlap.Overlap {
		t.Error("expected overlap flag on APUDes23UA014e")
	}
	if overlap.Unit != model.UnitUnknown {
		t.Errorf("expected unit %q, got %q", model.UnitUnknown, overlap.Unit)
	}
	if overlap.Summary != "LEVANTADO DE BORDILLO" {
		t.Errorf("expected summary LEVANTADO DE BORDILLO, got %q", overlap.Summary)
	}
	if !almostEqual(overlap.Quantity, 95) || !almostEqual(overlap.UnitPrice, 9.17) || !almostEqual(overlap.Amount, 869.32) {
		t.Errorf("expected values 95 / 9.17 / 869.32, got %.2f / %.2f / %.2f",
			overlap.Quantity, overlap.UnitPrice, overlap.Amount)
	}
	if overlap.SourceLine != 7 {
		t.Errorf("expected source line 7, got %d", overlap.SourceLine)
	}

	// Header on page 1, description below it, value row on page 2.
	split := partidas[1]
	if split.Code != "D38AP018" {
		t.Fatalf("expected D38AP018 second, got %s", split.Code)
	}
	if split.Unit != "m³" {
		t.Errorf("expected normalized unit m³, got %q", split.Unit)
	}
	if split.Description != "Excavación mecánica en terreno compacto, incluso carga y transporte." {
		t.Errorf("unexpected description %q", split.Description)
	}
	if !almostEqual(split.Quantity, 120.50) || !almostEqual(split.UnitPrice, 4.14) || !almostEqual(split.Amount, 498.87) {
		t.Errorf("expected values 120.50 / 4.14 / 498.87, got %.2f / %.2f / %.2f",
			split.Quantity, split.UnitPrice, split.Amount)
	}
	if split.Overlap {
		t.Error("did not expect overlap flag on D38AP018")
	}

	u09 := findNode(res.Chapters, "01.04.02").Partidas[0]
	if u09.Code != "U09TC010" || u09.Unit != "m²" {
		t.Errorf("expected U09TC010 with unit m², got %s %q", u09.Code, u09.Unit)
	}
}

func TestParseUnassignedAndIncomplete(t *testing.T) {
	pages := []model.Page{pageOf(1,
		"E01X001 m2 LIMPIEZA PREVIA 100,00 2,50 250,00",
		"01 TRABAJOS PREVIOS",
		"E01X002 ud DESMONTAJE DE MOBILIARIO",
		"02 RED DE SANEAMIENTO",
		"U08ZT010 m CONDUCCIÓN DE PVC 44,00 21,50 946,00",
		"TOTAL 02........ 946,00",
	)}

	res, warnings, err := FromPages(pages).Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if len(res.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(res.Chapters))
	}

	// The complete partida before any section heading is reported, not
	// silently attached anywhere.
	if len(res.Unassigned) != 1 || res.Unassigned[0].Code != "E01X001" {
		t.Fatalf("expected E01X001 unassigned, got %+v", res.Unassigned)
	}

	// The header without value rows is dropped from the tree.
	if n := findNode(res.Chapters, "01"); len(n.Partidas) != 0 {
		t.Errorf("expected dropped partida to stay out of chapter 01, got %d", len(n.Partidas))
	}
	if res.Stats.Partidas != 1 {
		t.Errorf("expected 1 partida in the tree, got %d", res.Stats.Partidas)
	}

	if !res.Validation.Valid {
		t.Errorf("expected valid totals, got %+v", res.Validation.Inconsistencies)
	}

	codes := warningCodes(warnings)
	if codes[WarnUnassignedPartida] != 1 {
		t.Errorf("expected 1 unassigned warning, got %d", codes[WarnUnassignedPartida])
	}
	if codes[WarnIncompletePartida] != 1 {
		t.Errorf("expected 1 incomplete warning, got %d", codes[WarnIncompletePartida])
	}
}

func TestParseDeterministic(t *testing.T) {
	first, _, err := FromPages(budgetPages()).Parse()
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	second, _, err := FromPages(budgetPages()).Parse()
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("expected byte-identical output for identical input")
	}
}

func TestClassifiedOverlapScenario(t *testing.T) {
	classified, _, err := FromPages(budgetPages()).Classified()
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	var overlap *classify.ClassifiedLine
	for i := range classified {
		if classified[i].Code == "APUDes23UA014e" {
			overlap = &classified[i]
		}
	}
	if overlap == nil {
		t.Fatal("expected APUDes23UA014e in classified stream")
	}
	if overlap.Tag != classify.TagPartidaHeader {
		t.Errorf("expected PARTIDA_HEADER, got %s", overlap.Tag)
	}
	if !overlap.Overlap || overlap.Unit != model.UnitUnknown {
		t.Errorf("expected overlap with unknown unit, got overlap=%v unit=%q",
			overlap.Overlap, overlap.Unit)
	}
}

// ============================================================================
// Layout and Line Stream Tests
// ============================================================================

func TestLinesTwoBandReadingOrder(t *testing.T) {
	// Two columns: left band rows come out before right band rows.
	left := []model.Word{
		{Text: "01 DEMOLICIONES", X0: 72, X1: 240, Y0: 100, Y1: 110},
		{Text: "E01DR010 ud DERRIBO 1,00 5,00 5,00", X0: 72, X1: 240, Y0: 120, Y1: 130},
	}
	right := []model.Word{
		{Text: "02 SANEAMIENTO", X0: 400, X1: 545, Y0: 100, Y1: 110},
		{Text: "U08ZT010 m TUBO PVC 2,00 10,00 20,00", X0: 400, X1: 545, Y0: 120, Y1: 130},
	}
	page := model.Page{Number: 1, Words: append(left, right...)}

	lines, _, err := FromPages([]model.Page{page}).Lines()
	if err != nil {
		t.Fatalf("lines failed: %v", err)
	}

	want := []string{
		"01 DEMOLICIONES",
		"E01DR010 ud DERRIBO 1,00 5,00 5,00",
		"02 SANEAMIENTO",
		"U08ZT010 m TUBO PVC 2,00 10,00 20,00",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i, w := range want {
		if lines[i].Text != w {
			t.Errorf("line %d: expected %q, got %q", i+1, w, lines[i].Text)
		}
		if lines[i].Number != i+1 {
			t.Errorf("line %d: expected number %d, got %d", i, i+1, lines[i].Number)
		}
	}
}

func TestLinesKeepPageDecorations(t *testing.T) {
	filtered, _, err := FromPages(budgetPages()).Lines()
	if err != nil {
		t.Fatalf("lines failed: %v", err)
	}
	kept, _, err := FromPages(budgetPages()).KeepPageDecorations().Lines()
	if err != nil {
		t.Fatalf("lines failed: %v", err)
	}

	if len(filtered) != 15 {
		t.Errorf("expected 15 filtered lines, got %d", len(filtered))
	}
	if len(kept) != 20 {
		t.Errorf("expected all 20 rows with decorations kept, got %d", len(kept))
	}
}

// ============================================================================
// Page Selection Tests
// ============================================================================

func TestPageSelection(t *testing.T) {
	pages, _, err := FromPages(budgetPages()).Pages(2).Words()
	if err != nil {
		t.Fatalf("selection failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 2 {
		t.Fatalf("expected only page 2, got %+v", pageNumbers(pages))
	}

	// Duplicates collapse and document order wins over request order.
	pages, _, err = FromPages(budgetPages()).Pages(2, 1, 2).Words()
	if err != nil {
		t.Fatalf("selection failed: %v", err)
	}
	if got := pageNumbers(pages); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected pages [1 2], got %v", got)
	}

	pages, _, err = FromPages(budgetPages()).PageRange(1, 2).Words()
	if err != nil {
		t.Fatalf("range selection failed: %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("expected 2 pages from range, got %d", len(pages))
	}
}

func TestPageSelectionOutOfRange(t *testing.T) {
	_, _, err := FromPages(budgetPages()).Pages(3).Words()
	if err == nil {
		t.Fatal("expected error for page 3 of a 2-page document")
	}
	if err.Error() != "page 3 out of range (1-2)" {
		t.Errorf("unexpected error message: %v", err)
	}

	// Page numbers are 1-indexed.
	_, _, err = FromPages(budgetPages()).Pages(0).Words()
	if err == nil {
		t.Error("expected error for page 0")
	}
}

func pageNumbers(pages []model.Page) []int {
	nums := make([]int, len(pages))
	for i, p := range pages {
		nums[i] = p.Number
	}
	return nums
}

// ============================================================================
// Input Error Tests
// ============================================================================

func TestEmptyPageWarning(t *testing.T) {
	pages := []model.Page{
		pageOf(1, "01 DEMOLICIONES"),
		{Number: 2},
	}

	got, warnings, err := FromPages(pages).Words()
	if err != nil {
		t.Fatalf("words failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected both pages back, got %d", len(got))
	}
	if len(warnings) != 1 || warnings[0].Code != WarnEmptyPage || warnings[0].Page != 2 {
		t.Errorf("expected empty_page warning for page 2, got %v", warnings)
	}
}

func TestNoExtractableText(t *testing.T) {
	pages := []model.Page{{Number: 1}, {Number: 2}}

	_, _, err := FromPages(pages).Parse()
	if err == nil {
		t.Fatal("expected error for pages without words")
	}
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %T", err)
	}
	if inputErr.Reason != "no extractable text" {
		t.Errorf("unexpected reason %q", inputErr.Reason)
	}
}

func TestNoPages(t *testing.T) {
	_, _, err := FromPages(nil).Parse()
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %T", err)
	}
}

// ============================================================================
// Chain Semantics Tests
// ============================================================================

func TestChainImmutability(t *testing.T) {
	base := FromPages(budgetPages())

	withPages := base.Pages(1, 2)
	if len(base.options.pages) != 0 {
		t.Error("Pages modified the receiver")
	}
	if len(withPages.options.pages) != 2 {
		t.Errorf("expected 2 selected pages, got %d", len(withPages.options.pages))
	}

	more := withPages.Pages(1)
	if len(withPages.options.pages) != 2 {
		t.Error("second Pages call modified the first chain link")
	}
	if len(more.options.pages) != 3 {
		t.Errorf("expected cumulative page selection of 3, got %d", len(more.options.pages))
	}

	kept := base.KeepPageDecorations()
	if base.options.keepDecorations {
		t.Error("KeepPageDecorations modified the receiver")
	}
	if !kept.options.keepDecorations {
		t.Error("KeepPageDecorations not set on the new parser")
	}

	cfg := layout.DefaultBandConfig()
	cfg.GapThreshold = 30
	tuned := base.WithBandConfig(cfg)
	if base.options.band.GapThreshold != 50 {
		t.Errorf("WithBandConfig modified the receiver: %v", base.options.band.GapThreshold)
	}
	if tuned.options.band.GapThreshold != 30 {
		t.Errorf("expected gap threshold 30, got %v", tuned.options.band.GapThreshold)
	}

	// Slice-typed config is deep-copied along the chain.
	branch := base.Pages(1)
	branch.options.decoration.KnownHeaders[0] = "MUTATED"
	if base.options.decoration.KnownHeaders[0] != "PRESUPUESTO" {
		t.Error("KnownHeaders shared between chain links")
	}
}
