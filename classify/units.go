package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// unitAlternation is the measurement unit vocabulary as it appears in
// budget PDFs, collapsed to one case-insensitive alternation: meters and
// their powers (m, m2/m², m3/m³, ml, m.), units (u, ud, uf, compounds
// like ud/d), partida alzada (pa, p.a., p:a:), weight and time units.
const unitAlternation = `mes|ml|m[23²³]?(?:/[a-z]+)?|m\.|ud?(?:/[a-z]+)?|uf|p[.:]a[.:]?|pa|kg|d[íi]a|año|sem|sm|[hlt]|d`

var (
	// unitTokenRe matches one whole token from the vocabulary.
	unitTokenRe = regexp.MustCompile(`(?i)^(?:` + unitAlternation + `)$`)

	// bareUnitRe is the reduced set used to reject overlap code
	// candidates; time units are excluded because words like "mes" or
	// "sem" are legitimate code fragments.
	bareUnitRe = regexp.MustCompile(`(?i)^(?:m[23²³]?|ml|m\.?|ud?|uf|pa|p[.:]a[.:]?|kg|[hlt])$`)

	// partidaAlzadaRe matches the dotted spellings of "partida alzada":
	// P.A., P:A:, p.a. and so on.
	partidaAlzadaRe = regexp.MustCompile(`^[Pp][.:]+[Aa][.:]*$`)
)

// IsUnit reports whether the token belongs to the unit vocabulary.
func IsUnit(token string) bool {
	return unitTokenRe.MatchString(token)
}

// NormalizeUnit maps the spelling variants found in budget PDFs to one
// canonical form: ud/u become Ud, ml and m. become m, m2/m3 gain their
// superscript, partida alzada variants become PA. Unknown units keep
// their letters with only the first one upper-cased.
func NormalizeUnit(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return ""
	}
	if partidaAlzadaRe.MatchString(unit) {
		return "PA"
	}
	switch strings.ToLower(unit) {
	case "m", "ml", "m.":
		return "m"
	case "m2", "m²":
		return "m²"
	case "m3", "m³":
		return "m³"
	case "u", "ud":
		return "Ud"
	case "uf":
		return "Uf"
	case "pa":
		return "PA"
	}
	return capitalizeToken(unit)
}

// capitalizeToken upper-cases the first rune and lower-cases the rest:
// "KG" becomes "Kg", "día" becomes "Día".
func capitalizeToken(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
