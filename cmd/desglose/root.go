package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/desglose/desglose"
	"github.com/desglose/desglose/internal/config"
	"github.com/desglose/desglose/model"
	"github.com/desglose/desglose/pdfwords"
	"github.com/desglose/desglose/version"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "desglose",
	Short: "Parse Spanish construction budget PDFs into a validated hierarchy",
	Long: `Desglose reconstructs the chapter/subchapter/partida hierarchy of a
construction budget (presupuesto de obra) from its PDF rendition.

The pipeline includes:
  - Positioned word extraction with column band detection
  - Reading-order line reconstruction and page decoration filtering
  - Line classification (chapters, subchapters, partidas, totals)
  - Hierarchy building with declared-versus-computed totals validation`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.desglose/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads file/env configuration and applies explicit CLI flag
// overrides on top.
func loadConfig() (*config.Config, error) {
	cm, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg := cm.Get()
	applyFlagOverrides(cfg)
	return cfg, nil
}

// applyFlagOverrides lets explicitly set CLI flags win over the config
// file and environment.
func applyFlagOverrides(cfg *config.Config) {
	if rootCmd.PersistentFlags().Changed("output") {
		cfg.Output = outputFormat
	}
	if rootCmd.PersistentFlags().Changed("verbose") {
		cfg.Verbose = verbose
	}
}

// newLogger builds the CLI logger. Logs go to stderr so stdout stays
// clean for the result document.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// runParse executes the full pipeline on path with cfg applied.
func runParse(cfg *config.Config, path string) (*model.ParseResult, []desglose.Warning, error) {
	extractor := pdfwords.NewExtractorWithConfig(cfg.ExtractorConfig())
	pages, err := extractor.Extract(path)
	if err != nil {
		return nil, nil, fmt.Errorf("extract %s: %w", path, err)
	}

	p := desglose.FromPages(pages).
		WithBandConfig(cfg.BandConfig()).
		WithDecorationConfig(cfg.DecorationConfig()).
		WithClassifierConfig(cfg.ClassifierConfig()).
		WithBuilderConfig(cfg.BuilderConfig())
	if cfg.KeepDecorations {
		p = p.KeepPageDecorations()
	}
	return p.Parse()
}
