package pdfwords

import (
	"fmt"
	"os"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/text/unicode/norm"

	"github.com/desglose/desglose/model"
)

// Fallback page size (A4 portrait in points) when no MediaBox is found.
const (
	defaultPageWidth  = 595.28
	defaultPageHeight = 841.89
)

// Config holds word assembly parameters.
type Config struct {
	// WordGapFactor is the maximum horizontal gap between glyph runs
	// merged into one word, as a fraction of the font size.
	WordGapFactor float64

	// RowTolerance is the Y distance in points within which glyph runs
	// are considered part of the same visual row.
	RowTolerance float64
}

// DefaultConfig returns the assembly parameters tuned for budget
// documents, which are typically rendered glyph by glyph.
func DefaultConfig() Config {
	return Config{
		WordGapFactor: 0.4,
		RowTolerance:  2.0,
	}
}

// Extractor reads positioned words from PDF files.
type Extractor struct {
	config Config
}

// NewExtractor creates an Extractor with default configuration.
func NewExtractor() *Extractor {
	return &Extractor{config: DefaultConfig()}
}

// NewExtractorWithConfig creates an Extractor with custom configuration.
func NewExtractorWithConfig(config Config) *Extractor {
	return &Extractor{config: config}
}

// Extract reads every page of the PDF at path using the default
// configuration.
func Extract(path string) ([]model.Page, error) {
	return NewExtractor().Extract(path)
}

// Extract reads every page of the PDF at path and returns positioned
// words in top-origin coordinates. Pages that produce no words are kept
// in the result with an empty word list so callers can report them.
func (e *Extractor) Extract(path string) ([]model.Page, error) {
	if err := validatePDF(path); err != nil {
		return nil, err
	}

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]model.Page, 0, total)

	for i := 1; i <= total; i++ {
		p := reader.Page(i)
		page := model.Page{
			Number: i,
			Width:  defaultPageWidth,
			Height: defaultPageHeight,
		}
		if p.V.IsNull() {
			pages = append(pages, page)
			continue
		}

		page.Width, page.Height = pageDimensions(p)
		page.Words = e.assembleWords(p.Content().Text, page.Height)
		pages = append(pages, page)
	}

	return pages, nil
}

// validatePDF runs a structural check before extraction so malformed
// files fail with a clear error instead of a mid-extraction surprise.
func validatePDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return fmt.Errorf("validate pdf: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("validate pdf: document has no pages")
	}
	return nil
}

// pageDimensions reads the page MediaBox, walking up the page tree when
// the box is inherited. Falls back to A4 when absent or malformed.
func pageDimensions(p pdflib.Page) (width, height float64) {
	v := p.V
	for depth := 0; depth < 8 && !v.IsNull(); depth++ {
		if w, h, ok := mediaBoxSize(v.Key("MediaBox")); ok {
			return w, h
		}
		v = v.Key("Parent")
	}
	return defaultPageWidth, defaultPageHeight
}

// mediaBoxSize parses a MediaBox array [llx lly urx ury] into a
// width/height pair.
func mediaBoxSize(box pdflib.Value) (width, height float64, ok bool) {
	if box.IsNull() || box.Kind() != pdflib.Array || box.Len() != 4 {
		return 0, 0, false
	}

	coords := make([]float64, 4)
	for i := 0; i < 4; i++ {
		val := box.Index(i)
		switch val.Kind() {
		case pdflib.Integer:
			coords[i] = float64(val.Int64())
		case pdflib.Real:
			coords[i] = val.Float64()
		default:
			return 0, 0, false
		}
	}

	width = coords[2] - coords[0]
	height = coords[3] - coords[1]
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

// wordRun accumulates consecutive glyph runs of one word. Extents are
// kept in the source bottom-origin space and flipped on flush.
type wordRun struct {
	text       strings.Builder
	x0, x1     float64
	yMin, yMax float64
}

// assembleWords merges glyph runs into words: group runs into visual
// rows by baseline, sort left to right, and join runs whose gap stays
// under the word-gap threshold. Whitespace-only runs act as separators.
func (e *Extractor) assembleWords(texts []pdflib.Text, pageHeight float64) []model.Word {
	rows := groupIntoRows(texts, e.config.RowTolerance)

	var words []model.Word
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X < row[j].X
		})

		var current *wordRun
		flush := func() {
			if current == nil {
				return
			}
			if w, ok := current.toWord(pageHeight); ok {
				words = append(words, w)
			}
			current = nil
		}

		for _, t := range row {
			s := strings.TrimSpace(t.S)
			if s == "" {
				flush()
				continue
			}

			top := t.Y + t.FontSize
			if current != nil {
				threshold := e.config.WordGapFactor * t.FontSize
				if threshold == 0 {
					threshold = 3.0
				}
				if t.X-current.x1 > threshold {
					flush()
				}
			}

			if current == nil {
				current = &wordRun{x0: t.X, x1: t.X + t.W, yMin: t.Y, yMax: top}
				current.text.WriteString(s)
				continue
			}

			current.text.WriteString(s)
			if t.X+t.W > current.x1 {
				current.x1 = t.X + t.W
			}
			if t.Y < current.yMin {
				current.yMin = t.Y
			}
			if top > current.yMax {
				current.yMax = top
			}
		}
		flush()
	}

	return words
}

// toWord finalizes the run: NFC-normalize the text and flip the vertical
// extent into top-origin coordinates.
func (r *wordRun) toWord(pageHeight float64) (model.Word, bool) {
	text := norm.NFC.String(r.text.String())
	if text == "" {
		return model.Word{}, false
	}
	return model.Word{
		Text: text,
		X0:   r.x0,
		X1:   r.x1,
		Y0:   pageHeight - r.yMax,
		Y1:   pageHeight - r.yMin,
	}, true
}

// groupIntoRows buckets glyph runs by baseline Y. The tolerance absorbs
// sub-point jitter between glyphs of the same visual row. Rows are
// returned top of page first.
func groupIntoRows(texts []pdflib.Text, tolerance float64) [][]pdflib.Text {
	if len(texts) == 0 {
		return nil
	}

	type rowBucket struct {
		yMin, yMax float64
		texts      []pdflib.Text
	}

	var buckets []rowBucket
	for _, t := range texts {
		placed := false
		for i := range buckets {
			if t.Y >= buckets[i].yMin-tolerance && t.Y <= buckets[i].yMax+tolerance {
				buckets[i].texts = append(buckets[i].texts, t)
				if t.Y < buckets[i].yMin {
					buckets[i].yMin = t.Y
				}
				if t.Y > buckets[i].yMax {
					buckets[i].yMax = t.Y
				}
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, rowBucket{yMin: t.Y, yMax: t.Y, texts: []pdflib.Text{t}})
		}
	}

	// Bottom-origin coordinates: higher Y is higher on the page
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].yMax > buckets[j].yMax
	})

	rows := make([][]pdflib.Text, len(buckets))
	for i, b := range buckets {
		rows[i] = b.texts
	}
	return rows
}
