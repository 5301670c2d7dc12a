package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/desglose/desglose"
	"github.com/desglose/desglose/model"
	"github.com/desglose/desglose/numeral"
)

var (
	// chapterStyle for top-level section names
	chapterStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// codeStyle for section and partida codes
	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	// amountStyle for computed totals
	amountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	// okStyle for sections whose declared total checks out
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	// badStyle for total mismatches
	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// partidaStyle for leaf line items
	partidaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	// synthStyle marks levels synthesized from deeper codes
	synthStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("240"))
)

var treeCmd = &cobra.Command{
	Use:   "tree <pdf>",
	Short: "Print the parsed budget hierarchy as a styled tree",
	Long: `Parse a budget PDF and print its chapter/subchapter/partida
hierarchy as an indented tree with per-section computed totals.

Sections are marked with a check when their declared total matches the
computed sum and a cross when it does not. Synthesized levels (created
from a deeper code with no heading of their own) render dimmed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		res, warnings, err := runParse(cfg, args[0])
		if err != nil {
			return err
		}

		renderTree(os.Stdout, res)

		if len(warnings) > 0 {
			fmt.Fprintf(os.Stderr, "\n%d warnings:\n%s\n",
				len(warnings), desglose.FormatWarnings(warnings))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

// renderTree writes the chapter forest with a one-line summary.
func renderTree(w io.Writer, res *model.ParseResult) {
	bad := make(map[string]bool, len(res.Validation.Inconsistencies))
	for _, inc := range res.Validation.Inconsistencies {
		bad[inc.Code] = true
	}

	for _, ch := range res.Chapters {
		renderNode(w, ch, 0, bad)
	}

	status := okStyle.Render("totals consistent")
	if !res.Validation.Valid {
		status = badStyle.Render(fmt.Sprintf("%d total mismatches", len(res.Validation.Inconsistencies)))
	}
	fmt.Fprintf(w, "\n%d chapters, %d sections, %d partidas (%s)\n",
		res.Stats.Chapters, res.Stats.Chapters+res.Stats.Subchapters, res.Stats.Partidas, status)
}

// renderNode writes one section with its partidas, then recurses.
func renderNode(w io.Writer, n *model.BudgetNode, depth int, bad map[string]bool) {
	indent := strings.Repeat("  ", depth)

	name := n.Name
	switch {
	case n.Synthesized:
		name = synthStyle.Render(name)
	case depth == 0:
		name = chapterStyle.Render(name)
	}

	marker := ""
	if bad[n.Code] {
		marker = " " + badStyle.Render("✗")
	} else if n.TotalDeclared != nil {
		marker = " " + okStyle.Render("✓")
	}

	fmt.Fprintf(w, "%s%s %s  %s%s\n",
		indent, codeStyle.Render(n.Code), name,
		amountStyle.Render(numeral.Format(n.TotalComputed, 2)), marker)

	for _, pt := range n.Partidas {
		fmt.Fprintf(w, "%s  %s\n", indent,
			partidaStyle.Render(fmt.Sprintf("%s %s %s  %s",
				pt.Code, pt.Unit, pt.Summary, numeral.Format(pt.Amount, 2))))
	}
	for _, c := range n.Children {
		renderNode(w, c, depth+1, bad)
	}
}
