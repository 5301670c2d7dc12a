package layout

import (
	"math"
	"sort"

	"github.com/desglose/desglose/model"
)

// BandConfig holds configuration for vertical band detection
type BandConfig struct {
	// BinWidth is the width in points of each histogram bin
	// Default: 10 points
	BinWidth float64

	// GapThreshold is the minimum width in points of an empty
	// histogram run for it to count as a band separator candidate
	// Default: 50 points
	GapThreshold float64

	// MinGapWidth is the minimum physical width in points between
	// word extents for a candidate to survive refinement
	// Default: 20 points
	MinGapWidth float64

	// MinBandWidth is the minimum width in points of a band; narrower
	// bands are discarded as margin noise
	// Default: 150 points
	MinBandWidth float64

	// MinGapHeightRatio is the minimum fraction of the content height
	// a gap must span unobstructed to be confirmed (0.0 to 1.0)
	// Default: 0.5 (50% of content height)
	MinGapHeightRatio float64

	// YTolerance is the maximum vertical distance in points between
	// word intervals grouped into the same row
	// Default: 5 points
	YTolerance float64

	// MaxBands is the maximum number of bands to detect; when more
	// gaps are confirmed, the widest are kept
	// Default: 6
	MaxBands int
}

// DefaultBandConfig returns sensible default configuration
func DefaultBandConfig() BandConfig {
	return BandConfig{
		BinWidth:          10.0,
		GapThreshold:      50.0,
		MinGapWidth:       20.0,
		MinBandWidth:      150.0,
		MinGapHeightRatio: 0.5,
		YTolerance:        5.0,
		MaxBands:          6,
	}
}

// Band represents a vertical region of a page holding one column of
// budget rows
type Band struct {
	// Index is the band position, 0 = leftmost
	Index int

	// MinX and MaxX are the horizontal boundaries of the band
	MinX float64
	MaxX float64

	// Words contains the words assigned to this band
	Words []model.Word
}

// BandLayout contains the band detection result for a single page
type BandLayout struct {
	// PageNumber is the 1-based page the layout was built from
	PageNumber int

	// Bands contains the detected bands in left-to-right order
	Bands []Band

	// Config used for detection
	Config BandConfig
}

// BandDetector splits pages into vertical bands
type BandDetector struct {
	config BandConfig
}

// NewBandDetector creates a detector with default configuration
func NewBandDetector() *BandDetector {
	return &BandDetector{config: DefaultBandConfig()}
}

// NewBandDetectorWithConfig creates a detector with custom configuration
func NewBandDetectorWithConfig(config BandConfig) *BandDetector {
	return &BandDetector{config: config}
}

// gap is a confirmed band separator between word extents
type gap struct {
	left  float64
	right float64
}

func (g gap) width() float64 { return g.right - g.left }

func (g gap) center() float64 { return (g.left + g.right) / 2 }

// Detect analyzes a page and splits its words into vertical bands.
// Words are assigned to the band containing their start position.
// A page with no confirmed separators yields a single band holding
// every word.
func (d *BandDetector) Detect(page model.Page) *BandLayout {
	layout := &BandLayout{
		PageNumber: page.Number,
		Config:     d.config,
	}
	if len(page.Words) == 0 {
		return layout
	}

	minX, maxX, minY, maxY := page.ContentBounds()

	gaps := d.findGaps(page.Words, minX, maxX, minY, maxY)
	if len(gaps) == 0 {
		layout.Bands = []Band{singleBand(page.Words, minX, maxX)}
		return layout
	}

	bands := d.createBandsFromGaps(page.Words, gaps, minX, maxX)
	bands = d.validateBands(bands)

	// All candidate bands rejected: detection was spurious, fall
	// back to a single band so no content is lost.
	if len(bands) == 0 {
		bands = []Band{singleBand(page.Words, minX, maxX)}
	}

	layout.Bands = bands
	return layout
}

// findGaps locates sustained empty runs in the histogram of word
// start positions, refines each run to the physical space between
// word extents, and confirms it by unobstructed vertical extent.
func (d *BandDetector) findGaps(words []model.Word, minX, maxX, minY, maxY float64) []gap {
	span := maxX - minX
	if span <= d.config.BinWidth {
		return nil
	}

	binCount := int(math.Ceil(span/d.config.BinWidth)) + 1
	occupied := make([]bool, binCount)
	for _, w := range words {
		bin := int((w.X0 - minX) / d.config.BinWidth)
		if bin >= 0 && bin < binCount {
			occupied[bin] = true
		}
	}

	var gaps []gap
	runStart := -1
	for i := 0; i <= binCount; i++ {
		if i < binCount && !occupied[i] {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart < 0 {
			continue
		}
		// Runs touching either edge separate content from margin,
		// not band from band.
		interior := runStart > 0 && i < binCount
		runLeft := minX + float64(runStart)*d.config.BinWidth
		runRight := minX + float64(i)*d.config.BinWidth
		runStart = -1

		if !interior || runRight-runLeft < d.config.GapThreshold {
			continue
		}
		g, ok := refineGap(words, runLeft, runRight)
		if !ok || g.width() < d.config.MinGapWidth {
			continue
		}
		if measureGapClearance(words, g, minY, maxY) >= d.config.MinGapHeightRatio {
			gaps = append(gaps, g)
		}
	}

	// Too many separators: keep the widest, restore positional order.
	if d.config.MaxBands > 0 && len(gaps) > d.config.MaxBands-1 {
		sort.Slice(gaps, func(i, j int) bool {
			return gaps[i].width() > gaps[j].width()
		})
		gaps = gaps[:d.config.MaxBands-1]
		sort.Slice(gaps, func(i, j int) bool {
			return gaps[i].left < gaps[j].left
		})
	}

	return gaps
}

// refineGap narrows a histogram run to the physical gap between word
// extents. The histogram only sees where words start, so the bodies
// of the band to the left reach into the run; the physical gap runs
// from the rightmost word end to the first word start beyond the
// run.
func refineGap(words []model.Word, runLeft, runRight float64) (gap, bool) {
	right := math.Inf(1)
	for _, w := range words {
		if w.X0 >= runRight && w.X0 < right {
			right = w.X0
		}
	}
	if math.IsInf(right, 1) {
		return gap{}, false
	}

	left := runLeft
	found := false
	for _, w := range words {
		if w.X1 <= right && (!found || w.X1 > left) {
			left = w.X1
			found = true
		}
	}
	if left >= right {
		return gap{}, false
	}
	return gap{left: left, right: right}, true
}

// measureGapClearance returns the fraction of the content height the
// gap spans without words crossing it horizontally. A gap that only
// exists between two paragraphs scores low and is rejected; a true
// band separator scores near 1.0.
func measureGapClearance(words []model.Word, g gap, minY, maxY float64) float64 {
	contentHeight := maxY - minY
	if contentHeight <= 0 {
		return 0
	}

	type yRange struct {
		top, bottom float64
	}
	var blocked []yRange
	for _, w := range words {
		if w.X1 > g.left && w.X0 < g.right {
			blocked = append(blocked, yRange{top: w.Y0, bottom: w.Y1})
		}
	}
	if len(blocked) == 0 {
		return 1.0
	}

	sort.Slice(blocked, func(i, j int) bool {
		return blocked[i].top < blocked[j].top
	})

	blockedHeight := 0.0
	current := blocked[0]
	for _, r := range blocked[1:] {
		if r.top <= current.bottom {
			if r.bottom > current.bottom {
				current.bottom = r.bottom
			}
			continue
		}
		blockedHeight += current.bottom - current.top
		current = r
	}
	blockedHeight += current.bottom - current.top

	clear := contentHeight - blockedHeight
	if clear < 0 {
		clear = 0
	}
	return clear / contentHeight
}

// createBandsFromGaps builds band regions bounded by gap centers and
// assigns each word to the band containing its start position.
func (d *BandDetector) createBandsFromGaps(words []model.Word, gaps []gap, minX, maxX float64) []Band {
	boundaries := make([]float64, 0, len(gaps)+2)
	boundaries = append(boundaries, minX)
	for _, g := range gaps {
		boundaries = append(boundaries, g.center())
	}
	boundaries = append(boundaries, maxX)

	bands := make([]Band, len(boundaries)-1)
	for i := range bands {
		bands[i] = Band{
			Index: i,
			MinX:  boundaries[i],
			MaxX:  boundaries[i+1],
		}
	}

	for _, w := range words {
		idx := len(bands) - 1
		for i := range bands {
			if w.X0 < bands[i].MaxX {
				idx = i
				break
			}
		}
		bands[idx].Words = append(bands[idx].Words, w)
	}

	return bands
}

// validateBands drops empty bands and bands narrower than the
// configured minimum, then re-indexes the survivors.
func (d *BandDetector) validateBands(bands []Band) []Band {
	var valid []Band
	for _, b := range bands {
		if len(b.Words) == 0 {
			continue
		}
		if b.MaxX-b.MinX < d.config.MinBandWidth {
			continue
		}
		b.Index = len(valid)
		valid = append(valid, b)
	}
	return valid
}

func singleBand(words []model.Word, minX, maxX float64) Band {
	return Band{Index: 0, MinX: minX, MaxX: maxX, Words: words}
}
