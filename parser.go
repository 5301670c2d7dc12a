package desglose

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/desglose/desglose/classify"
	"github.com/desglose/desglose/layout"
	"github.com/desglose/desglose/model"
	"github.com/desglose/desglose/pdfwords"
	"github.com/desglose/desglose/structure"
)

// Parser provides a fluent interface for parsing construction budget
// documents. Each configuration method returns a new Parser instance,
// making it safe for concurrent use and allowing method chaining.
type Parser struct {
	// Source (exactly one is used)
	filename string
	provided []model.Page
	hasPages bool

	// Configuration
	options ParseOptions

	// Accumulated error (fail-fast)
	err error

	// Warnings accumulated during processing
	warnings []Warning
}

// clone creates a shallow copy of the Parser with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (p *Parser) clone() *Parser {
	newP := &Parser{
		filename: p.filename,
		provided: p.provided,
		hasPages: p.hasPages,
		options:  p.options.clone(),
		err:      p.err,
		warnings: append([]Warning(nil), p.warnings...),
	}
	return newP
}

// ============================================================================
// Configuration Methods (return new Parser instance)
// ============================================================================

// Pages specifies which pages to parse (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	res, _, err := desglose.Open("presupuesto.pdf").Pages(1, 3, 5).Parse()
func (p *Parser) Pages(pages ...int) *Parser {
	newP := p.clone()
	newP.options.pages = append(newP.options.pages, pages...)
	return newP
}

// PageRange specifies a range of pages to parse (1-indexed, inclusive).
//
// Example:
//
//	res, _, err := desglose.Open("presupuesto.pdf").PageRange(5, 10).Parse()
func (p *Parser) PageRange(start, end int) *Parser {
	newP := p.clone()
	for i := start; i <= end; i++ {
		newP.options.pages = append(newP.options.pages, i)
	}
	return newP
}

// WithBandConfig overrides the column band detection configuration.
//
// Example:
//
//	cfg := layout.DefaultBandConfig()
//	cfg.GapThreshold = 30
//	res, _, err := desglose.Open("presupuesto.pdf").WithBandConfig(cfg).Parse()
func (p *Parser) WithBandConfig(cfg layout.BandConfig) *Parser {
	newP := p.clone()
	newP.options.band = cfg
	return newP
}

// WithDecorationConfig overrides the page decoration filter configuration.
func (p *Parser) WithDecorationConfig(cfg layout.DecorationConfig) *Parser {
	newP := p.clone()
	newP.options.decoration = cfg
	return newP
}

// WithClassifierConfig overrides the line classification configuration.
//
// Example:
//
//	cfg := classify.DefaultClassifierConfig()
//	cfg.MinSummaryWords = 3
//	res, _, err := desglose.Open("presupuesto.pdf").WithClassifierConfig(cfg).Parse()
func (p *Parser) WithClassifierConfig(cfg classify.ClassifierConfig) *Parser {
	newP := p.clone()
	newP.options.classifier = cfg
	return newP
}

// WithBuilderConfig overrides the tree building and totals validation
// configuration.
//
// Example:
//
//	cfg := structure.DefaultBuilderConfig()
//	cfg.AbsTolerance = 0.5
//	res, _, err := desglose.Open("presupuesto.pdf").WithBuilderConfig(cfg).Parse()
func (p *Parser) WithBuilderConfig(cfg structure.BuilderConfig) *Parser {
	newP := p.clone()
	newP.options.builder = cfg
	return newP
}

// KeepPageDecorations configures the parser to keep repeated page
// headers, footers, and title rows in the line stream instead of
// filtering them out before classification.
//
// Example:
//
//	lines, _, err := desglose.Open("presupuesto.pdf").KeepPageDecorations().Lines()
func (p *Parser) KeepPageDecorations() *Parser {
	newP := p.clone()
	newP.options.keepDecorations = true
	return newP
}

// ============================================================================
// Terminal Operations (execute the pipeline and return results)
// ============================================================================

// Words extracts positioned words grouped by page, after page selection.
// This is a terminal operation.
//
// Returns the pages, any warnings encountered during processing, and an
// error if extraction failed.
//
// Example:
//
//	pages, warnings, err := desglose.Open("presupuesto.pdf").Pages(1).Words()
func (p *Parser) Words() ([]model.Page, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}

	pages, err := p.selectPages()
	if err != nil {
		return nil, nil, err
	}

	return pages, p.warnings, nil
}

// Lines runs layout reconstruction and returns the final line stream:
// band detection per page, reading-order serialization, and decoration
// filtering (unless KeepPageDecorations was set), with global 1-based
// numbering. This is a terminal operation.
//
// Example:
//
//	lines, warnings, err := desglose.Open("presupuesto.pdf").Lines()
//	for _, line := range lines {
//	    fmt.Printf("%4d  %s\n", line.Number, line.Text)
//	}
func (p *Parser) Lines() ([]model.Line, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}

	pages, err := p.selectPages()
	if err != nil {
		return nil, nil, err
	}

	lines, _ := p.buildLines(pages)
	return lines, p.warnings, nil
}

// Classified runs the pipeline through line classification and returns
// every line with its tag and extracted fields. Continuation lines are
// joined into their partida, so the result may be shorter than the line
// stream. This is a terminal operation.
//
// Example:
//
//	classified, warnings, err := desglose.Open("presupuesto.pdf").Classified()
//	for _, cl := range classified {
//	    fmt.Printf("[%s] %s\n", cl.Tag, cl.Line.Text)
//	}
func (p *Parser) Classified() ([]classify.ClassifiedLine, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}

	pages, err := p.selectPages()
	if err != nil {
		return nil, nil, err
	}

	lines, _ := p.buildLines(pages)
	classified := p.classifyLines(lines)
	return classified, p.warnings, nil
}

// Parse runs the full pipeline and returns the budget hierarchy with
// validated totals. This is a terminal operation.
//
// Returns the parse result, any warnings encountered during processing,
// and an error if the input could not be parsed at all. Warnings indicate
// non-fatal issues (unrecognized lines, total mismatches) where parsing
// succeeded but the result may be imperfect.
//
// Example:
//
//	res, warnings, err := desglose.Open("presupuesto.pdf").Parse()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:\n" + desglose.FormatWarnings(warnings))
//	}
//	for _, ch := range res.Chapters {
//	    fmt.Printf("%s %s: %.2f\n", ch.Code, ch.Name, ch.TotalComputed)
//	}
func (p *Parser) Parse() (*model.ParseResult, []Warning, error) {
	if p.err != nil {
		return nil, nil, p.err
	}

	pages, err := p.selectPages()
	if err != nil {
		return nil, nil, err
	}

	lines, filtered := p.buildLines(pages)
	classified := p.classifyLines(lines)

	builder := structure.NewBuilderWithConfig(p.options.builder)
	built := builder.Build(classified)
	p.collectBuildWarnings(built)

	result := &model.ParseResult{
		Chapters:    built.Chapters,
		Validation:  built.Validation,
		Unassigned:  built.Unassigned,
		Relocations: built.Relocations,
		Stats:       buildStats(pages, lines, filtered, classified, built),
	}

	return result, p.warnings, nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// selectPages loads the source pages, applies page selection, and
// enforces the fatal input conditions (no pages, no words).
func (p *Parser) selectPages() ([]model.Page, error) {
	pages, err := p.loadPages()
	if err != nil {
		return nil, err
	}

	pages, err = p.resolvePages(pages)
	if err != nil {
		return nil, err
	}

	totalWords := 0
	for _, pg := range pages {
		if len(pg.Words) == 0 {
			p.warnings = append(p.warnings, Warning{
				Code:    WarnEmptyPage,
				Message: fmt.Sprintf("page %d produced no words", pg.Number),
				Page:    pg.Number,
			})
		}
		totalWords += len(pg.Words)
	}
	if totalWords == 0 {
		return nil, &InputError{Path: p.filename, Reason: "no extractable text"}
	}

	return pages, nil
}

// loadPages returns the caller-supplied pages or extracts them from the
// configured file.
func (p *Parser) loadPages() ([]model.Page, error) {
	if p.hasPages {
		return p.provided, nil
	}
	if p.filename == "" {
		return nil, &InputError{Reason: "no input specified"}
	}

	pages, err := pdfwords.Extract(p.filename)
	if err != nil {
		return nil, &InputError{Path: p.filename, Reason: "text extraction failed", Err: err}
	}
	return pages, nil
}

// resolvePages applies the 1-indexed page selection and validates it.
// If no pages were specified, all pages are returned.
func (p *Parser) resolvePages(pages []model.Page) ([]model.Page, error) {
	if len(pages) == 0 {
		return nil, &InputError{Path: p.filename, Reason: "document has no pages"}
	}

	if len(p.options.pages) == 0 {
		return pages, nil
	}

	byNumber := make(map[int]int, len(pages))
	maxNum := 0
	for i, pg := range pages {
		byNumber[pg.Number] = i
		if pg.Number > maxNum {
			maxNum = pg.Number
		}
	}

	seen := make(map[int]bool)
	var indices []int
	for _, n := range p.options.pages {
		idx, ok := byNumber[n]
		if !ok {
			return nil, fmt.Errorf("page %d out of range (1-%d)", n, maxNum)
		}
		if !seen[n] {
			seen[n] = true
			indices = append(indices, idx)
		}
	}

	// Keep document order regardless of request order
	sort.Ints(indices)

	selected := make([]model.Page, len(indices))
	for i, idx := range indices {
		selected[i] = pages[idx]
	}
	return selected, nil
}

// buildLines reconstructs the line stream from positioned words: band
// detection per page, reading-order rows, decoration filtering, global
// numbering. Returns the lines and the count of filtered decoration rows.
func (p *Parser) buildLines(pages []model.Page) ([]model.Line, int) {
	detector := layout.NewBandDetectorWithConfig(p.options.band)

	pageRows := make([][]layout.Row, 0, len(pages))
	for _, pg := range pages {
		pageLayout := detector.Detect(pg)
		pageRows = append(pageRows, pageLayout.Rows())
	}

	var rows []layout.Row
	filtered := 0
	if p.options.keepDecorations {
		for _, pr := range pageRows {
			rows = append(rows, pr...)
		}
	} else {
		filter := layout.NewDecorationFilterWithConfig(p.options.decoration)
		res := filter.Filter(pageRows)
		rows = res.Rows
		filtered = res.Removed
	}

	lines := make([]model.Line, len(rows))
	for i, r := range rows {
		lines[i] = model.Line{Number: i + 1, Text: r.Text, Page: r.Page}
	}
	return lines, filtered
}

// classifyLines tags every line and records a warning for each line that
// fell through all classification rules.
func (p *Parser) classifyLines(lines []model.Line) []classify.ClassifiedLine {
	classifier := classify.NewLineClassifierWithConfig(p.options.classifier)
	classified := classifier.ClassifyAll(lines)

	for _, cl := range classified {
		if cl.Ambiguous {
			p.warnings = append(p.warnings, Warning{
				Code:    WarnAmbiguousLine,
				Message: fmt.Sprintf("unrecognized line %q ignored", truncate(cl.Line.Text, 60)),
				Page:    cl.Line.Page,
				Line:    cl.Line.Number,
			})
		}
	}
	return classified
}

// collectBuildWarnings converts the builder's bookkeeping into warnings.
func (p *Parser) collectBuildWarnings(built *structure.Result) {
	for _, pt := range built.Unassigned {
		p.warnings = append(p.warnings, Warning{
			Code:    WarnUnassignedPartida,
			Message: fmt.Sprintf("partida %s appears before any section", pt.Code),
			Line:    pt.SourceLine,
		})
	}
	for _, pt := range built.Incomplete {
		p.warnings = append(p.warnings, Warning{
			Code:    WarnIncompletePartida,
			Message: fmt.Sprintf("partida %s has no value rows; dropped", pt.Code),
			Line:    pt.SourceLine,
		})
	}
	for _, ai := range built.Arithmetic {
		p.warnings = append(p.warnings, Warning{
			Code: WarnArithmeticMismatch,
			Message: fmt.Sprintf("partida %s: quantity times price gives %.2f, document says %.2f",
				ai.Code, ai.Expected, ai.Amount),
			Line: ai.Line,
		})
	}
	for _, inc := range built.Validation.Inconsistencies {
		p.warnings = append(p.warnings, Warning{
			Code: WarnTotalMismatch,
			Message: fmt.Sprintf("section %s: declared total %.2f, computed %.2f (diff %.2f)",
				inc.Code, inc.TotalDeclared, inc.TotalComputed, inc.Diff),
		})
	}
}

// buildStats gathers the per-stage counters for the parse result.
func buildStats(pages []model.Page, lines []model.Line, filtered int, classified []classify.ClassifiedLine, built *structure.Result) model.Stats {
	stats := model.Stats{
		Pages:      len(pages),
		Lines:      len(lines),
		Filtered:   filtered,
		TagCounts:  make(map[string]int),
		Chapters:   len(built.Chapters),
		Relocated:  len(built.Relocations),
		Unassigned: len(built.Unassigned),
	}

	for _, pg := range pages {
		stats.Words += len(pg.Words)
	}
	for _, cl := range classified {
		stats.TagCounts[cl.Tag.String()]++
	}
	for _, ch := range built.Chapters {
		ch.Walk(func(n *model.BudgetNode) {
			if n.Depth > 1 {
				stats.Subchapters++
			}
			if n.Synthesized {
				stats.Synthesized++
			}
			stats.Partidas += len(n.Partidas)
		})
	}

	return stats
}

// truncate shortens s to at most n runes for warning messages.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
