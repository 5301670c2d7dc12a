package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/desglose/desglose/model"
	"github.com/desglose/desglose/numeral"
)

var (
	// paginationRe matches rows of bare integers left over from page
	// numbering ("62", "63 63", "1 2").
	paginationRe = regexp.MustCompile(`^\d+(?:\s+\d+)*$`)

	// Explicit section headings. Codes may carry a letter prefix ("C01",
	// "C08.01"); subchapter and apartado codes are dotted.
	chapterRe    = regexp.MustCompile(`(?i)^CAPÍTULO\s+([A-Z]?\d+)\s+(.+)$`)
	subchapterRe = regexp.MustCompile(`(?i)^SUBCAPÍTULO\s+([A-Z]?\d+(?:\.\d+)+)\s+(.+)$`)
	apartadoRe   = regexp.MustCompile(`(?i)^APARTADO\s+([A-Z]?\d+(?:\.\d+)+)\s+(.+)$`)

	// Implicit headings: numeric code plus an upper-case title, with the
	// separating space optional ("01.04.06REPOSICIÓN" occurs). The title
	// charset excludes lower case and commas on purpose; partida
	// summaries and prose never qualify.
	implicitSubSpacedRe  = regexp.MustCompile(`^(\d{1,2}(?:\.\d{1,2})+)\s+([A-ZÁÉÍÓÚÑ0-9\s./()\-]+)$`)
	implicitSubGluedRe   = regexp.MustCompile(`^(\d{1,2}(?:\.\d{1,2})+)([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ0-9\s./()\-]*)$`)
	implicitChapSpacedRe = regexp.MustCompile(`^(\d{1,2})\s+([A-ZÁÉÍÓÚÑ0-9\s./()\-]+)$`)
	implicitChapGluedRe  = regexp.MustCompile(`^(\d{1,2})([A-ZÁÉÍÓÚÑ][A-ZÁÉÍÓÚÑ0-9\s./()\-]*)$`)

	// Total rows. The named form tolerates the section name and dot
	// filler between code and amount; the amount is taken from the end
	// of the line. totalCodeRe and totalFillerRe run on the text after
	// the TOTAL keyword.
	totalNamedRe  = regexp.MustCompile(`(?i)^TOTAL\s+(SUBCAPÍTULO|CAPÍTULO|APARTADO)\s+([A-Z]?\d+(?:\.\d+)*)`)
	totalTailRe   = regexp.MustCompile(`[\s.](\d[\d.,]*)\s*$`)
	totalPrefixRe = regexp.MustCompile(`(?i)^TOTAL[\s.]`)
	totalCodeRe   = regexp.MustCompile(`^([A-Z]?\d{1,2}(?:\.\d{1,2})*)[\s.]+(\d[\d.,]*)$`)
	totalFillerRe = regexp.MustCompile(`^[\s.]*(\d[\d.,]*)$`)

	// Partida shapes. The canonical code+unit+summary form is compiled
	// per classifier so configured extra units take part (see
	// compilePartidaRe); noUnitLineRe recognizes a code directly
	// followed by an upper-case summary when the unit glyph was lost;
	// looseCodeRe is the last-resort code+title split guarded by
	// validOverlapCode.
	noUnitLineRe = regexp.MustCompile(`^([A-Z0-9]\S*)\s+([A-ZÁÉÍÓÚÑ].+)$`)
	looseCodeRe  = regexp.MustCompile(`^([A-Z][A-Za-z0-9_]{4,})\s+(.+)$`)

	// continuationCodeRe matches a code-like token at the start of a
	// line, which rules the line out as a summary continuation.
	continuationCodeRe = regexp.MustCompile(`^[A-Z0-9]\S{4,}\s+`)
)

// forbiddenCodes are column keywords and structure words that can never
// be partida codes, compared upper-case.
var forbiddenCodes = map[string]struct{}{
	"ORDEN": {}, "CODIGO": {}, "CÓDIGO": {}, "RESUMEN": {},
	"CANTIDAD": {}, "PRECIO": {}, "IMPORTE": {}, "UNIDAD": {}, "UD": {},
	"TOTAL": {}, "SUBTOTAL": {}, "CAPITULO": {}, "CAPÍTULO": {},
	"SUBCAPITULO": {}, "SUBCAPÍTULO": {}, "APARTADO": {},
	"PROYECTO": {}, "DE": {},
}

// tableHeaderWords are the column titles whose co-occurrence marks a
// repeated table header row.
var tableHeaderWords = []string{"CÓDIGO", "RESUMEN", "CANTIDAD", "PRECIO", "IMPORTE"}

// ClassifierConfig holds the tunable thresholds of line classification.
type ClassifierConfig struct {
	// MinCodeLength is the minimum rune length of a partida code.
	// Default: 5
	MinCodeLength int

	// MinSummaryWords is the minimum word count a title must have for
	// the overlap heuristics to accept the preceding token as a code.
	// Default: 2
	MinSummaryWords int

	// GluedCodeMinLength and GluedCodeMaxLength bound the code part when
	// splitting a token glued to its summary at a case transition.
	// Default: 8 and 25
	GluedCodeMinLength int
	GluedCodeMaxLength int

	// ContinuationMaxLength is the maximum rune length of a line joined
	// onto a partida summary by the continuation pass.
	// Default: 150
	ContinuationMaxLength int

	// TableHeaderMinMatches is how many column titles must co-occur for
	// a line to count as a table header.
	// Default: 3
	TableHeaderMinMatches int

	// ExtraUnits extends the unit vocabulary with additional spellings,
	// matched case-insensitively as literal tokens. Extras take part in
	// partida matching and in the overlap-code rejection set.
	// Default: none
	ExtraUnits []string
}

// DefaultClassifierConfig returns the thresholds tuned on Spanish
// construction budgets.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MinCodeLength:         5,
		MinSummaryWords:       2,
		GluedCodeMinLength:    8,
		GluedCodeMaxLength:    25,
		ContinuationMaxLength: 150,
		TableHeaderMinMatches: 3,
	}
}

// LineClassifier tags lines of the reading-order stream.
type LineClassifier struct {
	config    ClassifierConfig
	partidaRe *regexp.Regexp
}

// NewLineClassifier creates a classifier with default configuration.
func NewLineClassifier() *LineClassifier {
	return NewLineClassifierWithConfig(DefaultClassifierConfig())
}

// NewLineClassifierWithConfig creates a classifier with custom
// configuration.
func NewLineClassifierWithConfig(config ClassifierConfig) *LineClassifier {
	return &LineClassifier{
		config:    config,
		partidaRe: compilePartidaRe(config.ExtraUnits),
	}
}

// compilePartidaRe builds the code+unit+summary pattern over the built-in
// vocabulary plus any configured extra units. Extras are quoted, so they
// are literal tokens, never regex fragments.
func compilePartidaRe(extra []string) *regexp.Regexp {
	alt := unitAlternation
	for _, u := range extra {
		if u = strings.TrimSpace(u); u != "" {
			alt += "|" + regexp.QuoteMeta(u)
		}
	}
	return regexp.MustCompile(`(?i)^(\S+)\s+(` + alt + `)\s+(.+)$`)
}

// Classify tags a single line. It returns the classified line and the
// context for the next one; the input context is not modified.
func (c *LineClassifier) Classify(line model.Line, ctx Context) (ClassifiedLine, Context) {
	cl := c.classifyText(strings.TrimSpace(line.Text), ctx)
	cl.Line = line
	return cl, ctx.Next(cl.Tag)
}

// ClassifyAll tags a whole document, threading the context from line to
// line, and then joins all-caps continuation lines onto their partida
// summary. The result can be shorter than the input when continuations
// are absorbed.
func (c *LineClassifier) ClassifyAll(lines []model.Line) []ClassifiedLine {
	out := make([]ClassifiedLine, 0, len(lines))
	ctx := Context{}
	for _, line := range lines {
		cl, next := c.Classify(line, ctx)
		out = append(out, cl)
		ctx = next
	}
	return c.joinContinuations(out)
}

// classifyText runs the rule chain on trimmed text.
func (c *LineClassifier) classifyText(text string, ctx Context) ClassifiedLine {
	if text == "" {
		return ClassifiedLine{Tag: TagIgnore}
	}
	if paginationRe.MatchString(text) {
		return ClassifiedLine{Tag: TagIgnore}
	}

	if cl, ok := c.classifyTotal(text); ok {
		return cl
	}

	if m := chapterRe.FindStringSubmatch(text); m != nil {
		return ClassifiedLine{Tag: TagChapter, Code: m[1], Name: strings.TrimSpace(m[2])}
	}
	if m := subchapterRe.FindStringSubmatch(text); m != nil {
		return ClassifiedLine{Tag: TagSubchapter, Code: m[1], Name: strings.TrimSpace(m[2])}
	}
	if m := apartadoRe.FindStringSubmatch(text); m != nil {
		return ClassifiedLine{Tag: TagSubchapter, Code: m[1], Name: strings.TrimSpace(m[2])}
	}
	if m := matchImplicit(implicitSubSpacedRe, implicitSubGluedRe, text); m != nil {
		return ClassifiedLine{Tag: TagSubchapter, Code: m[1], Name: strings.TrimSpace(m[2])}
	}
	if m := matchImplicit(implicitChapSpacedRe, implicitChapGluedRe, text); m != nil {
		return ClassifiedLine{Tag: TagChapter, Code: m[1], Name: strings.TrimSpace(m[2])}
	}

	upper := strings.ToUpper(text)
	if strings.HasPrefix(upper, "A DEDUCIR") || strings.HasPrefix(upper, "A DESCONTAR") {
		return ClassifiedLine{Tag: TagIgnore}
	}

	if prefix, nums, ok := numeral.TrailingNumbers(text, 3, 3); ok {
		if cl, found := c.classifyPricedPrefix(prefix, nums); found {
			return cl
		}
		if prefix == "" {
			return ClassifiedLine{Tag: TagPartidaData, Quantity: nums[0], Price: nums[1], Amount: nums[2]}
		}
		// Priced line whose prefix no partida rule accepted: a
		// measurement or note row, handled by the tail rules.
	} else if prefix, nums, ok := numeral.TrailingNumbers(text, 2, 2); ok && prefix == "" {
		return ClassifiedLine{Tag: TagPartidaData, Quantity: nums[0], Amount: nums[1]}
	} else {
		if m := c.partidaRe.FindStringSubmatch(text); m != nil && c.validUnitCode(m[1]) {
			return ClassifiedLine{
				Tag:     TagPartidaHeader,
				Code:    m[1],
				Unit:    NormalizeUnit(m[2]),
				Summary: strings.TrimSpace(m[3]),
			}
		}
		if code, title, ok := c.splitGluedCode(text); ok && c.validOverlapCode(code, title) {
			return overlapHeader(code, title, nil)
		}
		if m := looseCodeRe.FindStringSubmatch(text); m != nil && c.validOverlapCode(m[1], m[2]) {
			return overlapHeader(m[1], m[2], nil)
		}
	}

	if c.isTableHeader(text) {
		return ClassifiedLine{Tag: TagIgnore}
	}
	if ctx.PartidaActive {
		return ClassifiedLine{Tag: TagDescriptionContinuation}
	}
	return ClassifiedLine{Tag: TagIgnore, Ambiguous: true}
}

// classifyPricedPrefix tries the partida shapes on the text left of a
// trailing value triplet.
func (c *LineClassifier) classifyPricedPrefix(prefix string, nums []float64) (ClassifiedLine, bool) {
	if prefix == "" {
		return ClassifiedLine{}, false
	}

	if m := c.partidaRe.FindStringSubmatch(prefix); m != nil && c.validUnitCode(m[1]) {
		return ClassifiedLine{
			Tag:      TagPartidaFull,
			Code:     m[1],
			Unit:     NormalizeUnit(m[2]),
			Summary:  strings.TrimSpace(m[3]),
			Quantity: nums[0],
			Price:    nums[1],
			Amount:   nums[2],
		}, true
	}

	// Glued tokens split before the plain no-unit match; otherwise the
	// first summary word stays welded to the code.
	if code, title, ok := c.splitGluedCode(prefix); ok && c.validOverlapCode(code, title) {
		return overlapHeader(code, title, nums), true
	}

	if m := noUnitLineRe.FindStringSubmatch(prefix); m != nil {
		code := m[1]
		if !numeral.IsAmount(code) && c.validCode(code) {
			return overlapHeader(code, m[2], nums), true
		}
	}

	if m := looseCodeRe.FindStringSubmatch(prefix); m != nil && c.validOverlapCode(m[1], m[2]) {
		return overlapHeader(m[1], m[2], nums), true
	}

	return ClassifiedLine{}, false
}

// overlapHeader builds the classified line for a partida whose unit was
// lost to the code/unit glyph collision.
func overlapHeader(code, title string, nums []float64) ClassifiedLine {
	cl := ClassifiedLine{
		Tag:     TagPartidaHeader,
		Code:    code,
		Unit:    model.UnitUnknown,
		Summary: strings.TrimSpace(title),
		Overlap: true,
	}
	if len(nums) == 3 {
		cl.Quantity, cl.Price, cl.Amount = nums[0], nums[1], nums[2]
	}
	return cl
}

// classifyTotal recognizes the three printed total forms: named
// ("TOTAL SUBCAPÍTULO 01.04.01 49.578,18", section name and dot filler
// tolerated), coded ("TOTAL 01.04.01....... 49.578,18"), and bare
// ("TOTAL 123.456,78"). A total without an amount is not a total.
func (c *LineClassifier) classifyTotal(text string) (ClassifiedLine, bool) {
	if m := totalNamedRe.FindStringSubmatch(text); m != nil {
		// The amount sits after the code, usually behind the section
		// name and a run of dot filler. Without one this is not a
		// total row.
		tail := totalTailRe.FindStringSubmatch(text[len(m[0]):])
		if tail == nil {
			return ClassifiedLine{}, false
		}
		amount, err := numeral.ParseFloat(tail[1])
		if err != nil {
			return ClassifiedLine{}, false
		}
		return ClassifiedLine{
			Tag:    TagTotal,
			Scope:  strings.ToUpper(m[1]),
			Code:   m[2],
			Amount: amount,
		}, true
	}

	if !totalPrefixRe.MatchString(text) {
		return ClassifiedLine{}, false
	}
	rest := strings.TrimSpace(text[len("TOTAL"):])

	// A remainder that is itself one number is the bare form; checking
	// it first keeps "TOTAL 12.345,67" from parsing as code 12 with
	// amount 345,67.
	if numeral.IsNumber(rest) {
		amount, err := numeral.ParseFloat(rest)
		if err != nil {
			return ClassifiedLine{}, false
		}
		return ClassifiedLine{Tag: TagTotal, Amount: amount}, true
	}

	if m := totalCodeRe.FindStringSubmatch(rest); m != nil {
		amount, err := numeral.ParseFloat(m[2])
		if err != nil {
			return ClassifiedLine{}, false
		}
		return ClassifiedLine{Tag: TagTotal, Code: m[1], Amount: amount}, true
	}

	if m := totalFillerRe.FindStringSubmatch(rest); m != nil {
		amount, err := numeral.ParseFloat(m[1])
		if err != nil {
			return ClassifiedLine{}, false
		}
		return ClassifiedLine{Tag: TagTotal, Amount: amount}, true
	}

	return ClassifiedLine{}, false
}

// splitGluedCode finds the case transition where a code token was welded
// to its summary ("APUI_V_mU16NROU822SUMINISTRO E INSTALACIÓN") and
// splits there. A transition qualifies when it leads into a plausible
// description word: at least five upper-case letters in the first word
// and a space within the next thirty runes. Codes mix cases and digits
// while summaries are pure upper case, so the last qualifying
// transition inside the first token marks where the summary starts.
func (c *LineClassifier) splitGluedCode(s string) (code, title string, ok bool) {
	runes := []rune(s)
	cut := -1
	for i := 0; i+1 < len(runes) && runes[i] != ' '; i++ {
		cur := runes[i]
		if !unicode.IsLower(cur) && !unicode.IsDigit(cur) && cur != '_' {
			continue
		}
		if !unicode.IsUpper(runes[i+1]) {
			continue
		}
		if i+1 < c.config.GluedCodeMinLength || i+1 > c.config.GluedCodeMaxLength {
			continue
		}
		if !containsDigit(runes[:i+1]) {
			continue
		}

		rest := runes[i+1:]
		word := rest
		if j := indexSpace(rest); j >= 0 {
			word = rest[:j]
		} else if len(word) > 20 {
			word = word[:20]
		}
		upperCount := 0
		for _, r := range word {
			if unicode.IsUpper(r) {
				upperCount++
			}
		}

		window := rest
		if len(window) > 30 {
			window = window[:30]
		}
		if upperCount >= 5 && indexSpace(window) >= 0 {
			cut = i + 1
		}
	}

	if cut <= 0 {
		return "", "", false
	}
	return string(runes[:cut]), string(runes[cut:]), true
}

// validUnitCode gates codes on lines that carry a real unit token: at
// least MinCodeLength runes, starting with a letter, plus the shared
// checks.
func (c *LineClassifier) validUnitCode(code string) bool {
	runes := []rune(code)
	if len(runes) < c.config.MinCodeLength {
		return false
	}
	if !unicode.IsLetter(runes[0]) {
		return false
	}
	return c.validCode(code)
}

// validCode is the shared rejection set for every code candidate: column
// keywords never qualify, and a real code always carries a digit.
func (c *LineClassifier) validCode(code string) bool {
	if utf8.RuneCountInString(code) <= 2 {
		return false
	}
	if _, bad := forbiddenCodes[strings.ToUpper(code)]; bad {
		return false
	}
	return strings.ContainsFunc(code, unicode.IsDigit)
}

// validOverlapCode applies the strict overlap heuristics to a code/title
// split: length, no trailing dot, no dash in the last four runes, not a
// unit, not an amount, and a title of at least MinSummaryWords words.
func (c *LineClassifier) validOverlapCode(code, title string) bool {
	runes := []rune(code)
	if len(runes) < c.config.MinCodeLength {
		return false
	}
	if strings.HasSuffix(code, ".") {
		return false
	}
	tail := runes
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	for _, r := range tail {
		if r == '-' {
			return false
		}
	}
	if bareUnitRe.MatchString(code) || c.isExtraUnit(code) {
		return false
	}
	if numeral.IsAmount(code) {
		return false
	}
	if len(strings.Fields(title)) < c.config.MinSummaryWords {
		return false
	}
	return c.validCode(code)
}

// isExtraUnit reports whether the token is one of the configured extra
// unit spellings.
func (c *LineClassifier) isExtraUnit(token string) bool {
	for _, u := range c.config.ExtraUnits {
		if strings.EqualFold(token, u) {
			return true
		}
	}
	return false
}

// isTableHeader reports whether enough column titles co-occur in the
// line.
func (c *LineClassifier) isTableHeader(text string) bool {
	upper := strings.ToUpper(text)
	matches := 0
	for _, w := range tableHeaderWords {
		if strings.Contains(upper, w) {
			matches++
		}
	}
	return matches >= c.config.TableHeaderMinMatches
}

// joinContinuations merges all-caps continuation lines into the summary
// of the preceding partida header. The consumed line disappears from the
// output.
func (c *LineClassifier) joinContinuations(classified []ClassifiedLine) []ClassifiedLine {
	out := make([]ClassifiedLine, 0, len(classified))
	for i := 0; i < len(classified); i++ {
		cur := classified[i]
		if (cur.Tag == TagPartidaHeader || cur.Tag == TagPartidaFull) && i+1 < len(classified) {
			if next := classified[i+1]; c.isSummaryContinuation(next) {
				text := strings.TrimSpace(next.Line.Text)
				cur.Summary += " " + text
				cur.Line.Text += " " + text
				out = append(out, cur)
				i++
				continue
			}
		}
		out = append(out, cur)
	}
	return out
}

// isSummaryContinuation reports whether the line looks like the second
// half of a wrapped partida summary: ignored or description text, short,
// no leading code, no trailing values, not a table header, and every
// letter upper-case.
func (c *LineClassifier) isSummaryContinuation(next ClassifiedLine) bool {
	if next.Tag != TagIgnore && next.Tag != TagDescriptionContinuation {
		return false
	}
	text := strings.TrimSpace(next.Line.Text)
	if text == "" || utf8.RuneCountInString(text) >= c.config.ContinuationMaxLength {
		return false
	}
	if continuationCodeRe.MatchString(text) {
		return false
	}
	if _, _, ok := numeral.TrailingNumbers(text, 3, 3); ok {
		return false
	}
	if c.isTableHeader(text) {
		return false
	}

	letters, uppers := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	return letters > 0 && uppers == letters
}

// matchImplicit tries the spaced form of an implicit heading and falls
// back to the glued form.
func matchImplicit(spaced, glued *regexp.Regexp, text string) []string {
	if m := spaced.FindStringSubmatch(text); m != nil {
		return m
	}
	return glued.FindStringSubmatch(text)
}

// indexSpace returns the index of the first space rune, or -1.
func indexSpace(runes []rune) int {
	for i, r := range runes {
		if r == ' ' {
			return i
		}
	}
	return -1
}

func containsDigit(runes []rune) bool {
	for _, r := range runes {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

