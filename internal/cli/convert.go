package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/pipeline"
)

// stdoutPath selects standard output for -o.
const stdoutPath = "-"

// importCommand creates the import command: workflow JSON → graph JSON.
func (c *CLI) importCommand() *cobra.Command {
	var (
		output    string
		direction string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "import [workflow.json]",
		Short: "Convert a workflow into a laid-out graph",
		Long: `Convert a workflow document into a flat node/edge graph.

Nodes are classified by type, connections become edges and the graph is laid
out left to right (or top to bottom with --direction TB). The graph keeps each
node's original record so that 'export' reproduces untouched nodes exactly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.direction(direction)
			if err != nil {
				return err
			}
			opts := pipeline.Options{Direction: dir, Formats: []string{pipeline.FormatGraph}}
			return c.runConvert(cmd, args[0], output, noCache, opts, pipeline.KindWorkflow)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.graph.json)")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "layout direction: LR or TB (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// exportCommand creates the export command: graph JSON → workflow JSON.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [graph.json]",
		Short: "Convert a graph back into a workflow",
		Long: `Convert an edited graph back into a workflow document.

Positions are copied as they are and connections are rebuilt from edges in
edge order. Edges whose endpoints no longer exist are kept; the workflow
tool ignores them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Formats: []string{pipeline.FormatWorkflow}}
			return c.runConvert(cmd, args[0], output, true, opts, pipeline.KindGraph)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.workflow.json)")

	return cmd
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		direction string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Recompute node positions",
		Long: `Recompute the positions of a graph or workflow.

The input may be a saved graph or a workflow document; the output is always a
graph. Layouts are cached by graph content and options.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.direction(direction)
			if err != nil {
				return err
			}
			opts := pipeline.Options{Direction: dir, Relayout: true, Formats: []string{pipeline.FormatGraph}}
			return c.runConvert(cmd, args[0], output, noCache, opts, -1)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.graph.json)")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "layout direction: LR or TB (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runConvert runs a single-artifact pipeline. want restricts the accepted
// input kind; a negative value accepts either.
func (c *CLI) runConvert(cmd *cobra.Command, input, output string, noCache bool, opts pipeline.Options, want pipeline.InputKind) error {
	ctx := cmd.Context()
	data, err := readInput(input)
	if err != nil {
		return err
	}
	if want >= 0 {
		kind, err := pipeline.Detect(data)
		if err != nil {
			return err
		}
		if kind != want {
			return errors.New(errors.ErrCodeInvalidInput, "%s is a %s, expected a %s", input, kind, want)
		}
	}

	result, err := c.execute(ctx, data, opts, noCache)
	if err != nil {
		return err
	}

	format := opts.Formats[0]
	if output == "" {
		output = defaultOutput(input, format)
	}
	if err := writeOutput(cmd.OutOrStdout(), output, result.Artifacts[format]); err != nil {
		return err
	}
	if output == stdoutPath {
		return nil
	}

	out := newPrinter(cmd.OutOrStdout())
	out.success("Wrote %s", format)
	out.file(output)
	out.stats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.DanglingEdge)
	if format == pipeline.FormatGraph {
		out.nextStep("Render", appName, "render", output)
	}
	return nil
}

// execute runs the pipeline with a runner built from config.
func (c *CLI) execute(ctx context.Context, data []byte, opts pipeline.Options, noCache bool) (*pipeline.Result, error) {
	runner, ch := c.newRunner(ctx, noCache)
	defer ch.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Processed %d nodes", result.Stats.NodeCount))
	return result, nil
}

// readInput reads a whole input file.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == stdoutPath {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}

// defaultOutput derives an output path next to input. Known double
// extensions are stripped first so "x.graph.json" exports to
// "x.workflow.json".
func defaultOutput(input, format string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	base = strings.TrimSuffix(base, ".graph")
	base = strings.TrimSuffix(base, ".workflow")
	if format == pipeline.FormatWorkflow {
		return base + ".workflow.json"
	}
	return base + pipeline.Extension(format)
}
