package model

// Line is one visual row of text in final reading order. Number is the
// global 1-based position within the post-filter line stream and is the
// coordinate system used for range-based attribution; Page is the 1-based
// source page.
type Line struct {
	Number int
	Text   string
	Page   int
}

// LineRange is the span of global line numbers during which a budget node
// was the currently open section. End == 0 marks an open-ended range (the
// last section of the document).
type LineRange struct {
	Code  string
	Start int
	End   int
}

// Contains reports whether the global line number falls inside the range.
// Open-ended ranges contain every line from Start onward.
func (r LineRange) Contains(line int) bool {
	if line < r.Start {
		return false
	}
	return r.End == 0 || line <= r.End
}
