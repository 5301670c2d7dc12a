package model

// Word is a positioned token extracted from a page. Coordinates are
// page-local with the origin at the top-left corner: X grows rightward and
// Y grows downward. (X0, Y0) is the top-left corner of the word's box,
// (X1, Y1) the bottom-right.
type Word struct {
	Text string
	X0   float64
	X1   float64
	Y0   float64
	Y1   float64
}

// Width returns the horizontal extent of the word's box.
func (w Word) Width() float64 {
	return w.X1 - w.X0
}

// Height returns the vertical extent of the word's box.
func (w Word) Height() float64 {
	return w.Y1 - w.Y0
}

// CenterY returns the vertical midpoint of the word's box.
func (w Word) CenterY() float64 {
	return (w.Y0 + w.Y1) / 2
}

// OverlapsY reports whether two words occupy overlapping vertical ranges
// within the given tolerance. Words on the same visual row overlap even
// when their baselines differ slightly.
func (w Word) OverlapsY(other Word, tolerance float64) bool {
	return w.Y0 <= other.Y1+tolerance && other.Y0 <= w.Y1+tolerance
}

// Page holds the words extracted from a single document page. Number is
// 1-based. Width and Height are optional: zero values mean the extractor
// did not report page dimensions and consumers should derive extents from
// the words themselves.
type Page struct {
	Number int
	Width  float64
	Height float64
	Words  []Word
}

// ContentBounds returns the extent of the page's words as
// (minX, maxX, minY, maxY). The X extent spans from the smallest X0 to the
// largest X1 so that trailing glyphs are never cut off. Returns all zeros
// for a page without words.
func (p Page) ContentBounds() (minX, maxX, minY, maxY float64) {
	if len(p.Words) == 0 {
		return 0, 0, 0, 0
	}
	first := p.Words[0]
	minX, maxX = first.X0, first.X1
	minY, maxY = first.Y0, first.Y1
	for _, w := range p.Words[1:] {
		if w.X0 < minX {
			minX = w.X0
		}
		if w.X1 > maxX {
			maxX = w.X1
		}
		if w.Y0 < minY {
			minY = w.Y0
		}
		if w.Y1 > maxY {
			maxY = w.Y1
		}
	}
	return minX, maxX, minY, maxY
}
