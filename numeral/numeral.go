// Package numeral parses and formats numbers in the Spanish budget locale:
// dots group thousands, a comma separates decimals ("1.234,56" = 1234.56).
//
// Numbers are only recognized in trailing position when scanning value
// columns, so measurements embedded in descriptions ("tubo de 2,8 mm")
// never parse as prices.
package numeral

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// numberRe matches one locale number token: optional thousands groups,
	// optional decimal part of 1-4 digits.
	numberRe = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})*(?:,\d{1,4})?$|^\d+(?:,\d{1,4})?$`)

	// amountRe matches the strict money shape with exactly two decimals.
	amountRe = regexp.MustCompile(`^\d+(?:\.\d{3})*,\d{2}$`)

	// scanRe finds locale numbers inside free text, longest shapes first.
	scanRe = regexp.MustCompile(`\d{1,3}(?:\.\d{3})*,\d{2}|\d+,\d{2}|\d+,\d+|\d+`)
)

// IsNumber reports whether the token is a single locale number
// ("95", "9,17", "1.234,5678").
func IsNumber(token string) bool {
	return numberRe.MatchString(token)
}

// IsAmount reports whether the token has the strict money shape with two
// decimals ("869,32", "49.578,18").
func IsAmount(token string) bool {
	return amountRe.MatchString(token)
}

// ParseFloat converts a locale number to a float64. Thousands dots are
// stripped and the decimal comma becomes a point, so "1.234,56" parses to
// 1234.56. Dots are always read as thousands separators in this locale.
func ParseFloat(token string) (float64, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", token, err)
	}
	return v, nil
}

// Format renders a float64 in the locale with the given number of decimal
// digits: Format(1234.5678, 4) == "1.234,5678".
func Format(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

// ScanAll extracts every locale number found anywhere in the line, in
// order. Used for lines that consist of numbers only; callers that need
// value columns should prefer TrailingNumbers.
func ScanAll(line string) []float64 {
	var nums []float64
	for _, m := range scanRe.FindAllString(line, -1) {
		v, err := ParseFloat(m)
		if err != nil {
			continue
		}
		nums = append(nums, v)
	}
	return nums
}

// AllNumbers reports whether the line consists of nothing but locale
// numbers (at least one), the shape of a detached value row.
func AllNumbers(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !IsNumber(f) {
			return false
		}
	}
	return true
}

// TrailingNumbers splits the line into a text prefix and up to max
// trailing number tokens. It walks fields from the end and stops at the
// first non-number, so a measurement inside the prefix ("2,8 mm") is
// never captured. ok is true when at least min numbers were found.
func TrailingNumbers(line string, min, max int) (prefix string, nums []float64, ok bool) {
	fields := strings.Fields(line)

	cut := len(fields)
	for cut > 0 && len(fields)-cut < max && IsNumber(fields[cut-1]) {
		cut--
	}

	count := len(fields) - cut
	if count < min {
		return line, nil, false
	}

	nums = make([]float64, 0, count)
	for _, f := range fields[cut:] {
		v, err := ParseFloat(f)
		if err != nil {
			return line, nil, false
		}
		nums = append(nums, v)
	}
	return strings.Join(fields[:cut], " "), nums, true
}
