package layout

import (
	"sort"
	"strings"

	"github.com/desglose/desglose/model"
)

// Row is a visual row of text reconstructed from one band of a page
type Row struct {
	// Text is the row content, words joined left to right with
	// single spaces
	Text string

	// Page is the 1-based page number the row came from
	Page int

	// Band is the index of the band the row belongs to
	Band int

	// Top is the vertical position of the row, smaller is higher
	Top float64
}

// Rows serializes the layout into reading order: bands left to
// right, rows top to bottom within each band.
func (l *BandLayout) Rows() []Row {
	var rows []Row
	for _, band := range l.Bands {
		clusters := groupWordsIntoRows(band.Words, l.Config.YTolerance)
		for _, cluster := range clusters {
			rows = append(rows, Row{
				Text: assembleRowText(cluster),
				Page: l.PageNumber,
				Band: band.Index,
				Top:  cluster[0].Y0,
			})
		}
	}
	return rows
}

// Text returns the layout serialized as plain text, one row per line.
func (l *BandLayout) Text() string {
	rows := l.Rows()
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = r.Text
	}
	return strings.Join(parts, "\n")
}

// groupWordsIntoRows clusters words whose vertical intervals overlap
// within tolerance. Words are swept top to bottom; a word joins the
// current cluster while it starts above the cluster's bottom edge
// plus tolerance. Clusters come out ordered by their top position.
func groupWordsIntoRows(words []model.Word, tolerance float64) [][]model.Word {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]model.Word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y0 != sorted[j].Y0 {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var clusters [][]model.Word
	current := []model.Word{sorted[0]}
	bottom := sorted[0].Y1

	for _, w := range sorted[1:] {
		if w.Y0 <= bottom+tolerance {
			current = append(current, w)
			if w.Y1 > bottom {
				bottom = w.Y1
			}
			continue
		}
		clusters = append(clusters, current)
		current = []model.Word{w}
		bottom = w.Y1
	}
	clusters = append(clusters, current)

	return clusters
}

// assembleRowText orders a row's words left to right and joins them
// with single spaces.
func assembleRowText(words []model.Word) string {
	sorted := make([]model.Word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].X0 < sorted[j].X0
	})

	parts := make([]string, 0, len(sorted))
	for _, w := range sorted {
		t := strings.TrimSpace(w.Text)
		if t == "" {
			continue
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}
