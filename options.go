package desglose

import (
	"github.com/desglose/desglose/classify"
	"github.com/desglose/desglose/layout"
	"github.com/desglose/desglose/structure"
)

// ParseOptions holds configuration for the parsing pipeline.
type ParseOptions struct {
	// Page selection (1-indexed in API, stored as-is)
	pages []int

	// Layout
	band       layout.BandConfig
	decoration layout.DecorationConfig

	// Keep repeated page headers, footers, and title rows in the line
	// stream instead of filtering them out
	keepDecorations bool

	// Classification and tree building
	classifier classify.ClassifierConfig
	builder    structure.BuilderConfig
}

// defaultOptions returns the default parse options.
func defaultOptions() ParseOptions {
	return ParseOptions{
		pages:           nil, // nil means all pages
		band:            layout.DefaultBandConfig(),
		decoration:      layout.DefaultDecorationConfig(),
		keepDecorations: false,
		classifier:      classify.DefaultClassifierConfig(),
		builder:         structure.DefaultBuilderConfig(),
	}
}

// clone creates a deep copy of ParseOptions.
func (o ParseOptions) clone() ParseOptions {
	newOpts := ParseOptions{
		band:            o.band,
		decoration:      o.decoration,
		keepDecorations: o.keepDecorations,
		classifier:      o.classifier,
		builder:         o.builder,
	}

	// Deep copy pages slice
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}

	// DecorationConfig and ClassifierConfig carry slices; keep the
	// copies independent
	if o.decoration.KnownHeaders != nil {
		newOpts.decoration.KnownHeaders = make([]string, len(o.decoration.KnownHeaders))
		copy(newOpts.decoration.KnownHeaders, o.decoration.KnownHeaders)
	}
	if o.classifier.ExtraUnits != nil {
		newOpts.classifier.ExtraUnits = make([]string, len(o.classifier.ExtraUnits))
		copy(newOpts.classifier.ExtraUnits, o.classifier.ExtraUnits)
	}

	return newOpts
}
