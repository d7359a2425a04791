package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/pipeline"
)

// renderCommand creates the render command for diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output    string
		formats   string
		direction string
		free      bool
		relayout  bool
		noCache   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a graph or workflow as DOT or SVG",
		Long: `Render a graph or workflow as a Graphviz diagram.

Computed positions are pinned so the diagram matches the editor canvas. Pass
--free to let Graphviz place the nodes itself. SVG output is produced by the
embedded Graphviz runtime and needs no external binaries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.direction(direction)
			if err != nil {
				return err
			}
			opts.Direction = dir
			opts.Relayout = relayout
			opts.Pinned = !free
			opts.Formats = pipeline.ParseFormats(formats)
			if slices.ContainsFunc(opts.Formats, isDataFormat) {
				return errors.New(errors.ErrCodeInvalidInput, "render produces dot or svg; use import or export for JSON")
			}
			if output != "" && len(opts.Formats) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "-o needs a single format, got %d", len(opts.Formats))
			}
			return c.runRender(cmd, args[0], output, noCache, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.<format>)")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "output formats, comma-separated: dot, svg")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "layout direction: LR or TB (default from config)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show node types and connection ports")
	cmd.Flags().BoolVar(&free, "free", false, "let Graphviz choose positions")
	cmd.Flags().BoolVar(&relayout, "relayout", false, "recompute positions of a saved graph first")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func isDataFormat(f string) bool {
	return f == pipeline.FormatGraph || f == pipeline.FormatWorkflow
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(cmd *cobra.Command, input, output string, noCache bool, opts pipeline.Options) error {
	ctx := cmd.Context()
	data, err := readInput(input)
	if err != nil {
		return err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering %d format(s)...", len(opts.Formats)))
	spinner.Start()
	result, err := c.execute(ctx, data, opts, noCache)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var written []string
	for _, f := range opts.Formats {
		path := output
		if path == "" {
			path = defaultOutput(input, f)
		}
		if err := writeOutput(cmd.OutOrStdout(), path, result.Artifacts[f]); err != nil {
			return err
		}
		if path != stdoutPath {
			written = append(written, path)
		}
	}
	if len(written) == 0 {
		return nil
	}

	out := newPrinter(cmd.OutOrStdout())
	out.success("Rendered %s", result.Input)
	for _, p := range written {
		out.file(p)
	}
	out.stats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.DanglingEdge)
	return nil
}
