package structure

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/desglose/desglose/classify"
	"github.com/desglose/desglose/model"
)

// BuilderConfig holds the tolerances of totals validation.
type BuilderConfig struct {
	// AbsTolerance is the absolute declared-versus-computed tolerance.
	// Default: 0.01
	AbsTolerance float64

	// RelTolerance is the tolerance relative to the declared total; the
	// larger of the two tolerances applies.
	// Default: 0.001
	RelTolerance float64

	// ArithTolerance bounds |quantity × price − amount| per partida.
	// Default: 0.05
	ArithTolerance float64
}

// DefaultBuilderConfig returns tolerances suited to cent-rounded
// documents.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		AbsTolerance:   0.01,
		RelTolerance:   0.001,
		ArithTolerance: 0.05,
	}
}

// Builder turns a classified line stream into the budget tree.
type Builder struct {
	config BuilderConfig
}

// NewBuilder creates a builder with default configuration.
func NewBuilder() *Builder {
	return NewBuilderWithConfig(DefaultBuilderConfig())
}

// NewBuilderWithConfig creates a builder with custom configuration.
func NewBuilderWithConfig(config BuilderConfig) *Builder {
	return &Builder{config: config}
}

// ArithmeticIssue records a partida whose printed amount disagrees with
// quantity × price beyond ArithTolerance.
type ArithmeticIssue struct {
	Code     string
	Line     int
	Expected float64
	Amount   float64
	Diff     float64
}

// Result is the built tree plus the bookkeeping gathered on the way.
type Result struct {
	// Chapters are the top-level nodes in document order.
	Chapters []*model.BudgetNode

	// Validation is the totals report over the whole tree.
	Validation model.Validation

	// Unassigned holds partidas whose source line preceded every section
	// range.
	Unassigned []model.Partida

	// Relocations records partidas that reattachment moved away from
	// their provisional section.
	Relocations []model.Relocation

	// Ranges are the finalized section line ranges, ordered by start.
	Ranges []model.LineRange

	// Incomplete holds partidas discarded for lacking an amount (a
	// header whose value lines never arrived).
	Incomplete []model.Partida

	// Arithmetic lists partidas failing the quantity × price ≈ amount
	// check. The partidas stay in the tree.
	Arithmetic []ArithmeticIssue
}

// openSection is one entry of the depth-keyed stack.
type openSection struct {
	node  *model.BudgetNode
	depth int
	start int
}

// assembly collects the pieces of the partida currently being read.
type assembly struct {
	partida     model.Partida
	provisional string
	descParts   []string
}

// pendingPartida is a finished partida awaiting range reattachment.
type pendingPartida struct {
	partida     model.Partida
	provisional string
}

// buildState carries everything pass 1 accumulates.
type buildState struct {
	cfg      BuilderConfig
	nodes    map[string]*model.BudgetNode
	chapters []*model.BudgetNode
	stack    []openSection
	ranges   []model.LineRange
	pending  []pendingPartida
	active   *assembly

	incomplete []model.Partida
	arithmetic []ArithmeticIssue
}

// Build assembles the hierarchy from classified lines, reattaches
// partidas by line range, and validates totals.
func (b *Builder) Build(lines []classify.ClassifiedLine) *Result {
	s := &buildState{
		cfg:   b.config,
		nodes: make(map[string]*model.BudgetNode),
	}

	// Pass 1: hierarchy, ranges, pending partidas.
	for _, cl := range lines {
		switch cl.Tag {
		case classify.TagChapter, classify.TagSubchapter:
			s.finishPartida()
			s.openNode(cl)
		case classify.TagTotal:
			s.finishPartida()
			s.assignTotal(cl)
		case classify.TagPartidaFull, classify.TagPartidaHeader:
			s.finishPartida()
			s.startPartida(cl)
		case classify.TagPartidaData:
			s.fillValues(cl)
		case classify.TagDescriptionContinuation:
			s.appendDescription(cl)
		}
	}
	s.finishPartida()

	last := 0
	if len(lines) > 0 {
		last = lines[len(lines)-1].Line.Number
	}
	s.closeAtEnd(last)
	sort.SliceStable(s.ranges, func(i, j int) bool {
		return s.ranges[i].Start < s.ranges[j].Start
	})

	// Pass 2: reattachment by source line.
	var unassigned []model.Partida
	var relocations []model.Relocation
	for _, pend := range s.pending {
		r := deepestRange(s.ranges, pend.partida.SourceLine)
		if r == nil {
			unassigned = append(unassigned, pend.partida)
			continue
		}
		node := s.nodes[r.Code]
		node.Partidas = append(node.Partidas, pend.partida)
		if r.Code != pend.provisional {
			relocations = append(relocations, model.Relocation{
				PartidaCode: pend.partida.Code,
				FromCode:    pend.provisional,
				ToCode:      r.Code,
				Line:        pend.partida.SourceLine,
			})
		}
	}

	// Totals pass, post-order.
	inconsistencies := make([]model.Inconsistency, 0)
	for _, ch := range s.chapters {
		b.computeTotals(ch, &inconsistencies)
	}

	return &Result{
		Chapters: s.chapters,
		Validation: model.Validation{
			Valid:           len(inconsistencies) == 0,
			Inconsistencies: inconsistencies,
		},
		Unassigned:  unassigned,
		Relocations: relocations,
		Ranges:      s.ranges,
		Incomplete:  s.incomplete,
		Arithmetic:  s.arithmetic,
	}
}

// openNode handles a chapter or subchapter line: closes sections at the
// same or deeper depth, materializes the node and any implied ancestors,
// and opens its range.
func (s *buildState) openNode(cl classify.ClassifiedLine) {
	depth := model.CodeDepth(cl.Code)
	s.closeOpenRanges(depth, cl.Line.Number-1)

	node := s.ensureNode(cl.Code)
	if node.Synthesized || node.Name == "" {
		node.Name = cl.Name
		node.Synthesized = false
	}
	s.stack = append(s.stack, openSection{node: node, depth: depth, start: cl.Line.Number})
}

// ensureNode returns the node for a code, creating it and every missing
// ancestor as synthesized placeholders.
func (s *buildState) ensureNode(code string) *model.BudgetNode {
	if n, ok := s.nodes[code]; ok {
		return n
	}
	node := &model.BudgetNode{
		Code:        code,
		Name:        "SUBCAPÍTULO " + code,
		Depth:       model.CodeDepth(code),
		Synthesized: true,
	}
	s.nodes[code] = node

	if parent := model.ParentCode(code); parent != "" {
		p := s.ensureNode(parent)
		p.Children = append(p.Children, node)
	} else {
		s.chapters = append(s.chapters, node)
	}
	return node
}

// closeOpenRanges closes every open section at the given or deeper depth,
// ending its range at end.
func (s *buildState) closeOpenRanges(depth, end int) {
	for len(s.stack) > 0 && s.stack[len(s.stack)-1].depth >= depth {
		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		s.ranges = append(s.ranges, model.LineRange{
			Code:  top.node.Code,
			Start: top.start,
			End:   end,
		})
	}
}

// closeAtEnd closes every section still open when input is exhausted.
// Enclosing sections end at the last line; the innermost one stays
// open-ended so trailing partidas can always be attributed.
func (s *buildState) closeAtEnd(last int) {
	innermost := true
	for len(s.stack) > 0 {
		top := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		end := last
		if innermost {
			end = 0
			innermost = false
		}
		s.ranges = append(s.ranges, model.LineRange{
			Code:  top.node.Code,
			Start: top.start,
			End:   end,
		})
	}
}

// assignTotal stores a declared total on the named node, or on the
// deepest open node for bare totals. Totals may name sections that never
// printed a heading; those are materialized like any implied ancestor.
func (s *buildState) assignTotal(cl classify.ClassifiedLine) {
	code := cl.Code
	if code == "" {
		if len(s.stack) == 0 {
			return
		}
		code = s.stack[len(s.stack)-1].node.Code
	}
	amount := cl.Amount
	s.ensureNode(code).TotalDeclared = &amount
}

// startPartida opens an assembly for a header or full partida line.
func (s *buildState) startPartida(cl classify.ClassifiedLine) {
	provisional := ""
	if len(s.stack) > 0 {
		provisional = s.stack[len(s.stack)-1].node.Code
	}
	s.active = &assembly{
		partida: model.Partida{
			Code:       cl.Code,
			Unit:       cl.Unit,
			Summary:    cl.Summary,
			Quantity:   cl.Quantity,
			UnitPrice:  cl.Price,
			Amount:     cl.Amount,
			SourceLine: cl.Line.Number,
			Overlap:    cl.Overlap,
		},
		provisional: provisional,
	}
}

// fillValues writes a values row into the active partida. Measurement
// listings print several numeric rows per item; the last one is the
// final quantity/price/amount row, so each row overwrites the previous.
func (s *buildState) fillValues(cl classify.ClassifiedLine) {
	if s.active == nil {
		return
	}
	s.active.partida.Quantity = cl.Quantity
	s.active.partida.UnitPrice = cl.Price
	s.active.partida.Amount = cl.Amount
}

func (s *buildState) appendDescription(cl classify.ClassifiedLine) {
	if s.active == nil {
		return
	}
	s.active.descParts = append(s.active.descParts, strings.TrimSpace(cl.Line.Text))
}

// finishPartida finalizes the active assembly: cleans the text, drops
// headers that never received an amount, runs the arithmetic check, and
// queues the partida for reattachment.
func (s *buildState) finishPartida() {
	if s.active == nil {
		return
	}
	a := s.active
	s.active = nil

	p := a.partida
	p.Summary = cleanText(p.Summary)
	p.Description = cleanText(strings.Join(a.descParts, " "))

	if p.Amount == 0 {
		s.incomplete = append(s.incomplete, p)
		return
	}

	if p.Quantity > 0 && p.UnitPrice > 0 {
		expected := round2(p.Quantity * p.UnitPrice)
		if diff := math.Abs(expected - p.Amount); diff > s.cfg.ArithTolerance {
			s.arithmetic = append(s.arithmetic, ArithmeticIssue{
				Code:     p.Code,
				Line:     p.SourceLine,
				Expected: expected,
				Amount:   p.Amount,
				Diff:     round2(diff),
			})
		}
	}

	s.pending = append(s.pending, pendingPartida{partida: p, provisional: a.provisional})
}

// computeTotals fills TotalComputed post-order and records declared
// mismatches beyond tolerance.
func (b *Builder) computeTotals(node *model.BudgetNode, inconsistencies *[]model.Inconsistency) float64 {
	sum := 0.0
	for _, c := range node.Children {
		sum += b.computeTotals(c, inconsistencies)
	}
	for _, p := range node.Partidas {
		sum += p.Amount
	}
	node.TotalComputed = round2(sum)

	if node.TotalDeclared != nil {
		declared := *node.TotalDeclared
		tolerance := math.Max(b.config.AbsTolerance, b.config.RelTolerance*math.Abs(declared))
		if diff := math.Abs(declared - node.TotalComputed); diff > tolerance {
			*inconsistencies = append(*inconsistencies, model.Inconsistency{
				Code:          node.Code,
				TotalDeclared: declared,
				TotalComputed: node.TotalComputed,
				Diff:          round2(diff),
			})
		}
	}
	return node.TotalComputed
}

// deepestRange returns the most specific range containing the line, or
// nil. Parent ranges span their children, so depth decides.
func deepestRange(ranges []model.LineRange, line int) *model.LineRange {
	var best *model.LineRange
	bestDepth := -1
	for i := range ranges {
		r := &ranges[i]
		if !r.Contains(line) {
			continue
		}
		if d := model.CodeDepth(r.Code); d > bestDepth {
			best, bestDepth = r, d
		}
	}
	return best
}

var multiSpaceRe = regexp.MustCompile(`\s+`)

// cleanText collapses whitespace and removes hyphenation artifacts left
// by joining wrapped lines.
func cleanText(s string) string {
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "- ", "")
	return strings.TrimSpace(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
