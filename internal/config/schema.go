package config

import (
	"github.com/desglose/desglose/classify"
	"github.com/desglose/desglose/layout"
	"github.com/desglose/desglose/pdfwords"
	"github.com/desglose/desglose/structure"
)

// Config holds desglose CLI configuration.
// Read from ./config.yaml or ~/.desglose/config.yaml
type Config struct {
	Output          string        `mapstructure:"output" yaml:"output"`   // "yaml" or "json"
	Verbose         bool          `mapstructure:"verbose" yaml:"verbose"` // Debug logging
	KeepDecorations bool          `mapstructure:"keep_decorations" yaml:"keep_decorations"`
	Extract         ExtractCfg    `mapstructure:"extract" yaml:"extract"`
	Layout          LayoutCfg     `mapstructure:"layout" yaml:"layout"`
	Decoration      DecorationCfg `mapstructure:"decoration" yaml:"decoration"`
	Classifier      ClassifierCfg `mapstructure:"classifier" yaml:"classifier"`
	Builder         BuilderCfg    `mapstructure:"builder" yaml:"builder"`
}

// ExtractCfg configures word assembly during PDF extraction.
type ExtractCfg struct {
	WordGapFactor float64 `mapstructure:"word_gap_factor" yaml:"word_gap_factor"` // Fraction of font size
	RowTolerance  float64 `mapstructure:"row_tolerance" yaml:"row_tolerance"`     // Points
}

// LayoutCfg configures column band detection.
type LayoutCfg struct {
	BinWidth          float64 `mapstructure:"bin_width" yaml:"bin_width"`
	GapThreshold      float64 `mapstructure:"gap_threshold" yaml:"gap_threshold"`
	MinGapWidth       float64 `mapstructure:"min_gap_width" yaml:"min_gap_width"`
	MinBandWidth      float64 `mapstructure:"min_band_width" yaml:"min_band_width"`
	MinGapHeightRatio float64 `mapstructure:"min_gap_height_ratio" yaml:"min_gap_height_ratio"`
	YTolerance        float64 `mapstructure:"y_tolerance" yaml:"y_tolerance"`
	MaxBands          int     `mapstructure:"max_bands" yaml:"max_bands"`
}

// DecorationCfg configures the page decoration filter.
type DecorationCfg struct {
	HeaderZoneRows       int      `mapstructure:"header_zone_rows" yaml:"header_zone_rows"`
	MinTitleLength       int      `mapstructure:"min_title_length" yaml:"min_title_length"`
	ContainmentMinLength int      `mapstructure:"containment_min_length" yaml:"containment_min_length"`
	KnownHeaders         []string `mapstructure:"known_headers" yaml:"known_headers"`
}

// ClassifierCfg configures line classification thresholds.
type ClassifierCfg struct {
	MinCodeLength         int      `mapstructure:"min_code_length" yaml:"min_code_length"`
	MinSummaryWords       int      `mapstructure:"min_summary_words" yaml:"min_summary_words"`
	GluedCodeMinLength    int      `mapstructure:"glued_code_min_length" yaml:"glued_code_min_length"`
	GluedCodeMaxLength    int      `mapstructure:"glued_code_max_length" yaml:"glued_code_max_length"`
	ContinuationMaxLength int      `mapstructure:"continuation_max_length" yaml:"continuation_max_length"`
	TableHeaderMinMatches int      `mapstructure:"table_header_min_matches" yaml:"table_header_min_matches"`
	ExtraUnits            []string `mapstructure:"extra_units" yaml:"extra_units"`
}

// BuilderCfg configures tree building and totals validation tolerances.
type BuilderCfg struct {
	AbsTolerance   float64 `mapstructure:"abs_tolerance" yaml:"abs_tolerance"`
	RelTolerance   float64 `mapstructure:"rel_tolerance" yaml:"rel_tolerance"`
	ArithTolerance float64 `mapstructure:"arith_tolerance" yaml:"arith_tolerance"`
}

// DefaultConfig returns configuration matching the library defaults.
func DefaultConfig() *Config {
	extract := pdfwords.DefaultConfig()
	band := layout.DefaultBandConfig()
	deco := layout.DefaultDecorationConfig()
	cls := classify.DefaultClassifierConfig()
	bld := structure.DefaultBuilderConfig()

	return &Config{
		Output:          "yaml",
		Verbose:         false,
		KeepDecorations: false,
		Extract: ExtractCfg{
			WordGapFactor: extract.WordGapFactor,
			RowTolerance:  extract.RowTolerance,
		},
		Layout: LayoutCfg{
			BinWidth:          band.BinWidth,
			GapThreshold:      band.GapThreshold,
			MinGapWidth:       band.MinGapWidth,
			MinBandWidth:      band.MinBandWidth,
			MinGapHeightRatio: band.MinGapHeightRatio,
			YTolerance:        band.YTolerance,
			MaxBands:          band.MaxBands,
		},
		Decoration: DecorationCfg{
			HeaderZoneRows:       deco.HeaderZoneRows,
			MinTitleLength:       deco.MinTitleLength,
			ContainmentMinLength: deco.ContainmentMinLength,
			KnownHeaders:         deco.KnownHeaders,
		},
		Classifier: ClassifierCfg{
			MinCodeLength:         cls.MinCodeLength,
			MinSummaryWords:       cls.MinSummaryWords,
			GluedCodeMinLength:    cls.GluedCodeMinLength,
			GluedCodeMaxLength:    cls.GluedCodeMaxLength,
			ContinuationMaxLength: cls.ContinuationMaxLength,
			TableHeaderMinMatches: cls.TableHeaderMinMatches,
			ExtraUnits:            cls.ExtraUnits,
		},
		Builder: BuilderCfg{
			AbsTolerance:   bld.AbsTolerance,
			RelTolerance:   bld.RelTolerance,
			ArithTolerance: bld.ArithTolerance,
		},
	}
}

// ExtractorConfig converts the extract section to pdfwords form.
func (c *Config) ExtractorConfig() pdfwords.Config {
	return pdfwords.Config{
		WordGapFactor: c.Extract.WordGapFactor,
		RowTolerance:  c.Extract.RowTolerance,
	}
}

// BandConfig converts the layout section to layout form.
func (c *Config) BandConfig() layout.BandConfig {
	return layout.BandConfig{
		BinWidth:          c.Layout.BinWidth,
		GapThreshold:      c.Layout.GapThreshold,
		MinGapWidth:       c.Layout.MinGapWidth,
		MinBandWidth:      c.Layout.MinBandWidth,
		MinGapHeightRatio: c.Layout.MinGapHeightRatio,
		YTolerance:        c.Layout.YTolerance,
		MaxBands:          c.Layout.MaxBands,
	}
}

// DecorationConfig converts the decoration section to layout form.
func (c *Config) DecorationConfig() layout.DecorationConfig {
	return layout.DecorationConfig{
		HeaderZoneRows:       c.Decoration.HeaderZoneRows,
		MinTitleLength:       c.Decoration.MinTitleLength,
		ContainmentMinLength: c.Decoration.ContainmentMinLength,
		KnownHeaders:         c.Decoration.KnownHeaders,
	}
}

// ClassifierConfig converts the classifier section to classify form.
func (c *Config) ClassifierConfig() classify.ClassifierConfig {
	return classify.ClassifierConfig{
		MinCodeLength:         c.Classifier.MinCodeLength,
		MinSummaryWords:       c.Classifier.MinSummaryWords,
		GluedCodeMinLength:    c.Classifier.GluedCodeMinLength,
		GluedCodeMaxLength:    c.Classifier.GluedCodeMaxLength,
		ContinuationMaxLength: c.Classifier.ContinuationMaxLength,
		TableHeaderMinMatches: c.Classifier.TableHeaderMinMatches,
		ExtraUnits:            c.Classifier.ExtraUnits,
	}
}

// BuilderConfig converts the builder section to structure form.
func (c *Config) BuilderConfig() structure.BuilderConfig {
	return structure.BuilderConfig{
		AbsTolerance:   c.Builder.AbsTolerance,
		RelTolerance:   c.Builder.RelTolerance,
		ArithTolerance: c.Builder.ArithTolerance,
	}
}
