package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/desglose/desglose/internal/schema"
)

var parseOutFile string

var parseCmd = &cobra.Command{
	Use:   "parse <pdf>",
	Short: "Parse a budget PDF and emit the hierarchy as YAML or JSON",
	Long: `Parse a budget PDF into its chapter/subchapter/partida hierarchy
with validated totals, and emit the result document on stdout.

Warnings (unrecognized lines, total mismatches, dropped items) go to
stderr; the exit code stays zero as long as the input itself is usable.

Examples:
  desglose parse presupuesto.pdf                 # YAML on stdout
  desglose parse presupuesto.pdf -o json         # JSON on stdout
  desglose parse presupuesto.pdf --out res.json -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger := newLogger(cfg.Verbose).With(
			"run_id", uuid.New().String(),
			"file", args[0],
		)

		res, warnings, err := runParse(cfg, args[0])
		if err != nil {
			return err
		}

		logger.Info("parse complete",
			"pages", res.Stats.Pages,
			"lines", res.Stats.Lines,
			"chapters", res.Stats.Chapters,
			"partidas", res.Stats.Partidas,
			"valid", res.Validation.Valid,
		)
		for _, w := range warnings {
			logger.Warn(w.Message, "code", string(w.Code), "page", w.Page, "line", w.Line)
		}

		// Contract check; a failure here is a bug report, not a reason
		// to withhold the result
		if raw, err := json.Marshal(res); err == nil {
			if err := schema.ValidateResult(raw); err != nil {
				logger.Warn("result does not match contract schema", "error", err)
			}
		}

		out := os.Stdout
		if parseOutFile != "" {
			f, err := os.Create(parseOutFile)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return writeResult(out, OutputFormat(cfg.Output), res)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseOutFile, "out", "", "write the result to a file instead of stdout")

	rootCmd.AddCommand(parseCmd)
}
