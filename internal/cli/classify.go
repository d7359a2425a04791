package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/classify"
)

// categoryStyles colors categories the same way diagrams do.
var categoryStyles = map[classify.Category]lipgloss.Style{
	classify.Trigger: lipgloss.NewStyle().Foreground(colorYellow),
	classify.Agent:   lipgloss.NewStyle().Foreground(colorCyan),
	classify.Tool:    lipgloss.NewStyle().Foreground(colorBlue),
	classify.Default: lipgloss.NewStyle().Foreground(colorGray),
}

// classifyCommand creates the classify command.
func (c *CLI) classifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [type...]",
		Short: "Show the category of node types",
		Long: `Show the visual category assigned to each node type.

Without arguments the classification rules are listed in the order they are
tried. Matching is a case-insensitive substring test; the first rule wins.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cls := classify.New(nil)
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), rulesTable(cls.Rules()))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), classifyTable(cls, args))
			return nil
		},
	}
}

// classifyTable renders one row per type id.
func classifyTable(cls *classify.Classifier, types []string) string {
	cats := make([]classify.Category, len(types))
	rows := make([][]string, len(types))
	for i, t := range types {
		cats[i] = cls.Classify(t)
		rows[i] = []string{t, string(cats[i])}
	}
	return newTable("Type", "Category").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return tableHeaderStyle
			}
			if col == 1 {
				return categoryStyles[cats[row]]
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// rulesTable renders the classification rules.
func rulesTable(rules []classify.Rule) string {
	rows := make([][]string, len(rules))
	for i, r := range rules {
		rows[i] = []string{fmt.Sprint(i + 1), string(r.Category), strings.Join(r.Keywords, ", ")}
	}
	return newTable("#", "Category", "Keywords").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return tableHeaderStyle
			}
			if col == 1 {
				return categoryStyles[rules[row].Category]
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// headerRow is the row index lipgloss tables pass for the header.
const headerRow = -1

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}
