package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/pipeline"
	"github.com/matzehuels/flowcanvas/pkg/store"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// inspectCommand creates the interactive node browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse the nodes of a workflow or graph",
		Long: `Browse the nodes of a workflow or graph interactively.

Moving the cursor selects a node and shows its payload. Nodes can be removed
(x) and the graph re-laid out (L for left to right, T for top to bottom).
When the graph was changed and -o is given, the edited workflow is written on
exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0], output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the edited workflow here on exit")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, input, output string, noCache bool) error {
	ctx := cmd.Context()
	data, err := readInput(input)
	if err != nil {
		return err
	}
	runner, ch := c.newRunner(ctx, noCache)
	defer ch.Close()

	st, _, err := runner.Load(ctx, data, pipeline.Options{Direction: c.cfg.Direction()})
	if err != nil {
		return err
	}

	prog := tea.NewProgram(newInspectModel(ctx, st), tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))
	if _, err := prog.Run(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "inspect")
	}

	out := newPrinter(cmd.OutOrStdout())
	if !st.Dirty() {
		out.info("No changes")
		return nil
	}
	if output == "" {
		out.warning("Graph was changed; pass -o to save the workflow")
		return nil
	}
	if err := workflow.ExportFile(st.ExportWorkflow(), output); err != nil {
		return err
	}
	out.success("Saved workflow")
	out.file(output)
	return nil
}

// =============================================================================
// inspectModel - Interactive node browser
// =============================================================================

// inspectModel is the bubbletea model over one store. The node list is
// re-read from the store after every mutation.
type inspectModel struct {
	ctx    context.Context
	store  *store.Store
	nodes  []graph.Node
	cursor int
	offset int
	height int
	status string
}

func newInspectModel(ctx context.Context, st *store.Store) inspectModel {
	m := inspectModel{ctx: ctx, store: st, height: 15}
	m.refresh()
	if len(m.nodes) > 0 {
		st.SetSelection(m.nodes[0].ID)
	}
	return m
}

// refresh reloads the node list and clamps the cursor.
func (m *inspectModel) refresh() {
	m.nodes = m.store.Snapshot().Nodes
	m.cursor = min(m.cursor, max(len(m.nodes)-1, 0))
	m.offset = min(m.offset, m.cursor)
}

func (m *inspectModel) move(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.nodes) {
		return
	}
	m.cursor = next
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	m.store.SetSelection(m.nodes[m.cursor].ID)
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "x", "delete":
			if len(m.nodes) == 0 {
				return m, nil
			}
			n := m.nodes[m.cursor]
			m.store.RemoveNode(n.ID)
			m.refresh()
			m.status = fmt.Sprintf("removed %s", n.Payload.Label)
			if len(m.nodes) > 0 {
				m.store.SetSelection(m.nodes[m.cursor].ID)
			}
		case "L":
			m.relayout(layout.LeftToRight)
		case "T":
			m.relayout(layout.TopToBottom)
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m *inspectModel) relayout(dir layout.Direction) {
	m.store.RunLayout(m.ctx, dir)
	m.refresh()
	m.status = "laid out " + string(dir)
}

func (m inspectModel) View() string {
	var b strings.Builder

	title := m.store.Name()
	if m.store.Dirty() {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  x remove  L/T layout  q quit"))
	b.WriteString("\n\n")

	if len(m.nodes) == 0 {
		b.WriteString(listDimStyle.Render("  (no nodes)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.offset+m.height, len(m.nodes))
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]
		line := fmt.Sprintf("%-28s %-8s %6.0f,%-6.0f", truncate(n.Payload.Label, 28), n.Category, n.Position.X, n.Position.Y)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(detailBoxStyle.Render(nodeDetail(m.nodes[m.cursor])))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes))))
	if m.status != "" {
		b.WriteString(listDimStyle.Render("  " + m.status))
	}
	return b.String()
}

// nodeDetail renders the payload of n.
func nodeDetail(n graph.Node) string {
	lines := []string{
		StyleHighlight.Render(n.Payload.Label),
		detailLine("id", n.ID),
		detailLine("type", fmt.Sprintf("%s v%g", n.Payload.Type, n.Payload.TypeVersion)),
	}
	if len(n.Payload.Parameters) > 0 {
		keys := make([]string, 0, len(n.Payload.Parameters))
		for k := range n.Payload.Parameters {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		lines = append(lines, detailLine("params", strings.Join(keys, ", ")))
	}
	if len(n.Payload.Credentials) > 0 {
		kinds := make([]string, 0, len(n.Payload.Credentials))
		for kind, ref := range n.Payload.Credentials {
			kinds = append(kinds, kind+"="+ref.Name)
		}
		slices.Sort(kinds)
		lines = append(lines, detailLine("creds", strings.Join(kinds, ", ")))
	}
	return strings.Join(lines, "\n")
}

func detailLine(key, value string) string {
	return listDimStyle.Width(8).Render(key) + StyleValue.Render(value)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
