package desglose

import (
	"fmt"
	"strings"
)

// WarningCode identifies the category of a non-fatal issue.
type WarningCode string

const (
	// WarnEmptyPage reports a page that produced no words.
	WarnEmptyPage WarningCode = "empty_page"

	// WarnAmbiguousLine reports a line with real content that no
	// classification rule accepted; the line was ignored.
	WarnAmbiguousLine WarningCode = "ambiguous_line"

	// WarnIncompletePartida reports a partida header whose value rows
	// never arrived; the item was dropped.
	WarnIncompletePartida WarningCode = "incomplete_partida"

	// WarnArithmeticMismatch reports a partida whose quantity × price
	// differs from its printed amount beyond tolerance.
	WarnArithmeticMismatch WarningCode = "arithmetic_mismatch"

	// WarnTotalMismatch reports a section whose declared total differs
	// from the computed sum beyond tolerance.
	WarnTotalMismatch WarningCode = "total_mismatch"

	// WarnUnassignedPartida reports a partida whose source line preceded
	// every known section.
	WarnUnassignedPartida WarningCode = "unassigned_partida"
)

// Warning describes a non-fatal issue encountered during parsing.
// Parsing succeeded but the result may be imperfect; callers can inspect
// warnings to decide whether the output is trustworthy enough.
type Warning struct {
	// Code identifies the issue category.
	Code WarningCode

	// Message is a human-readable description.
	Message string

	// Page is the 1-based page number, or 0 when the issue is not tied
	// to a page.
	Page int

	// Line is the global line number, or 0 when the issue is not tied
	// to a line.
	Line int
}

// String returns a formatted representation of the warning.
func (w Warning) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", w.Code, w.Message)
	if w.Page > 0 {
		fmt.Fprintf(&b, " (page %d", w.Page)
		if w.Line > 0 {
			fmt.Fprintf(&b, ", line %d", w.Line)
		}
		b.WriteString(")")
	} else if w.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", w.Line)
	}
	return b.String()
}

// FormatWarnings formats a slice of warnings as a multi-line string
// suitable for logging. Returns an empty string if there are no warnings.
//
// Example:
//
//	result, warnings, err := desglose.Open("presupuesto.pdf").Parse()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:\n" + desglose.FormatWarnings(warnings))
//	}
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = "  - " + w.String()
	}
	return strings.Join(lines, "\n")
}

// InputError reports input that could not be parsed at all: the file is
// missing or malformed, or it contains no extractable text. It is the
// only fatal error class; everything else degrades to warnings.
//
// Use errors.As to detect it:
//
//	_, _, err := desglose.Open("scan.pdf").Parse()
//	var inputErr *desglose.InputError
//	if errors.As(err, &inputErr) {
//	    // input itself is unusable
//	}
type InputError struct {
	// Path is the input file, empty for caller-supplied pages.
	Path string

	// Reason describes what made the input unusable.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	src := e.Path
	if src == "" {
		src = "input"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", src, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", src, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *InputError) Unwrap() error {
	return e.Err
}
