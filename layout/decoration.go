package layout

import (
	"regexp"
	"strings"
)

// DecorationConfig holds configuration for page decoration filtering
type DecorationConfig struct {
	// HeaderZoneRows is the number of leading rows per page scanned
	// for repeated headers and the project title
	// Default: 10
	HeaderZoneRows int

	// MinTitleLength is the minimum character count for a zone row
	// to qualify as the project title
	// Default: 30
	MinTitleLength int

	// ContainmentMinLength is the minimum pattern length before a
	// pattern contained in a longer row counts as a match
	// Default: 20
	ContainmentMinLength int

	// KnownHeaders lists decoration texts stripped on every
	// occurrence after the first
	KnownHeaders []string
}

// DefaultDecorationConfig returns sensible default configuration
func DefaultDecorationConfig() DecorationConfig {
	return DecorationConfig{
		HeaderZoneRows:       10,
		MinTitleLength:       30,
		ContainmentMinLength: 20,
		KnownHeaders: []string{
			"PRESUPUESTO",
			"CÓDIGO RESUMEN CANTIDAD PRECIO IMPORTE",
		},
	}
}

// footerPatterns match pagination footers: bare numbers, dashed or
// bracketed numbers, and Página/Page variants.
var footerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\d+\s*$`),
	regexp.MustCompile(`^\s*-\s*\d+\s*-\s*$`),
	regexp.MustCompile(`(?i)^\s*página\s+\d+\s*$`),
	regexp.MustCompile(`(?i)^\s*pág\.?\s+\d+\s*$`),
	regexp.MustCompile(`(?i)^\s*page\s+\d+\s*$`),
	regexp.MustCompile(`(?i)^\s*p\.\s*\d+\s*$`),
	regexp.MustCompile(`^\s*\d+\s*/\s*\d+\s*$`),
	regexp.MustCompile(`^\s*\[\s*\d+\s*\]\s*$`),
}

// chapterStartRe matches rows opening with a chapter or subchapter
// number, which are declarations rather than title candidates.
var chapterStartRe = regexp.MustCompile(`^\d{1,2}[\s.]`)

// titleExcludedPrefixes disqualify a zone row from title detection.
var titleExcludedPrefixes = []string{"CÓDIGO", "PRESUPUESTO"}

// DecorationFilter strips repeated page decoration from rows
type DecorationFilter struct {
	config DecorationConfig
}

// NewDecorationFilter creates a filter with default configuration
func NewDecorationFilter() *DecorationFilter {
	return &DecorationFilter{config: DefaultDecorationConfig()}
}

// NewDecorationFilterWithConfig creates a filter with custom configuration
func NewDecorationFilterWithConfig(config DecorationConfig) *DecorationFilter {
	return &DecorationFilter{config: config}
}

// FilterResult contains the rows that survived decoration filtering
type FilterResult struct {
	// Rows contains the surviving rows in reading order
	Rows []Row

	// Removed is the number of rows stripped
	Removed int

	// Title is the detected project title, empty when none was found
	Title string

	// Config used for filtering
	Config DecorationConfig
}

// Filter strips decoration from per-page rows and flattens the
// result into reading order. Three kinds of rows are removed: blank
// rows, pagination footers, and repeated headers. A header repeats
// when it matches a known pattern or the detected project title, or
// when an identical row already appeared in the header zone of an
// earlier page; the first occurrence is always kept. Rows starting
// with TOTAL are never removed.
func (f *DecorationFilter) Filter(pages [][]Row) *FilterResult {
	result := &FilterResult{Config: f.config}
	if len(pages) == 0 {
		return result
	}

	patterns := append([]string(nil), f.config.KnownHeaders...)
	if title := f.detectTitle(pages[0]); title != "" {
		patterns = append(patterns, title)
		result.Title = title
	}

	seenPatterns := make(map[string]bool)
	seenZone := make(map[string]bool)

	for _, page := range pages {
		var zoneKept []string
		for i, row := range page {
			text := strings.TrimSpace(row.Text)
			if text == "" {
				result.Removed++
				continue
			}
			if isFooterText(text) {
				result.Removed++
				continue
			}
			if strings.HasPrefix(strings.ToUpper(text), "TOTAL") {
				result.Rows = append(result.Rows, row)
				continue
			}

			inZone := i < f.config.HeaderZoneRows
			if p, ok := f.matchPattern(patterns, text); ok {
				if seenPatterns[p] {
					result.Removed++
					continue
				}
				seenPatterns[p] = true
			} else if inZone && seenZone[text] {
				result.Removed++
				continue
			}

			if inZone {
				zoneKept = append(zoneKept, text)
			}
			result.Rows = append(result.Rows, row)
		}
		// Committed after the page so duplicates within one page
		// survive; only repetition across pages is decoration.
		for _, t := range zoneKept {
			seenZone[t] = true
		}
	}

	return result
}

// detectTitle scans the first page's header zone for a long row that
// is neither a table header nor a chapter declaration. Budget covers
// typically print the project name between PRESUPUESTO and the
// column header row.
func (f *DecorationFilter) detectTitle(firstPage []Row) string {
	limit := f.config.HeaderZoneRows
	if limit > len(firstPage) {
		limit = len(firstPage)
	}
	for _, row := range firstPage[:limit] {
		text := strings.TrimSpace(row.Text)
		if len([]rune(text)) <= f.config.MinTitleLength {
			continue
		}
		if hasExcludedTitlePrefix(text) {
			continue
		}
		if containsString(f.config.KnownHeaders, text) {
			continue
		}
		return text
	}
	return ""
}

// matchPattern reports the first pattern the row matches, either
// exactly or, for patterns long enough to be unambiguous, by
// containment.
func (f *DecorationFilter) matchPattern(patterns []string, text string) (string, bool) {
	for _, p := range patterns {
		if text == p {
			return p, true
		}
		if len([]rune(p)) > f.config.ContainmentMinLength && strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

func isFooterText(text string) bool {
	for _, re := range footerPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func hasExcludedTitlePrefix(text string) bool {
	for _, p := range titleExcludedPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return chapterStartRe.MatchString(text)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
