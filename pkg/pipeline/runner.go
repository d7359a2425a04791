package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/classify"
	"github.com/matzehuels/flowcanvas/pkg/convert"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/render/nodelink"
	"github.com/matzehuels/flowcanvas/pkg/store"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// Runner executes the pipeline. It holds no per-run state, so one Runner
// may serve concurrent runs.
type Runner struct {
	Engine     layout.Layouter
	Classifier *classify.Classifier
	Logger     *log.Logger
}

// NewRunner creates a runner. A nil engine uses the default layout engine;
// a nil classifier uses the default rules.
func NewRunner(engine layout.Layouter, cls *classify.Classifier, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if engine == nil {
		engine = layout.New(layout.DefaultOptions(), logger)
	}
	if cls == nil {
		cls = classify.New(nil)
	}
	return &Runner{Engine: engine, Classifier: cls, Logger: logger}
}

// Load decodes data into a store. Workflows are imported and laid out
// left to right, then re-laid out when opts asks for another direction.
// Saved graphs are installed as-is unless opts.Relayout is set.
func (r *Runner) Load(ctx context.Context, data []byte, opts Options) (*store.Store, InputKind, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, KindWorkflow, err
	}
	kind, err := Detect(data)
	if err != nil {
		return nil, kind, err
	}

	st := store.New(r.Engine, r.Logger, store.WithClassifier(r.Classifier))
	switch kind {
	case KindGraph:
		g, err := graph.ReadGraph(bytes.NewReader(data))
		if err != nil {
			return nil, kind, err
		}
		st.ReplaceAll(g)
		if opts.Relayout {
			st.RunLayout(ctx, opts.Direction)
		}
	default:
		wf, err := workflow.Parse(data)
		if err != nil {
			return nil, kind, err
		}
		if err := st.ImportWorkflow(ctx, wf); err != nil {
			return nil, kind, err
		}
		if opts.Direction != layout.LeftToRight {
			st.RunLayout(ctx, opts.Direction)
		}
	}
	return st, kind, nil
}

// Execute loads data and emits every format in opts.Formats.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	st, kind, err := r.Load(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	g := st.Snapshot()

	result := &Result{
		Input:     kind,
		Graph:     g,
		Artifacts: make(map[string][]byte, len(opts.Formats)),
	}
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)
	result.Stats.DanglingEdge = len(g.DanglingEdges())

	r.Logger.Debug("loaded input",
		"kind", kind,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.LayoutTime)
	if n := result.Stats.DanglingEdge; n > 0 {
		r.Logger.Warn("graph has edges with missing endpoints", "count", n)
	}

	renderStart := time.Now()
	for _, format := range opts.Formats {
		data, err := r.emit(ctx, g, format, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data
	}
	result.Stats.RenderTime = time.Since(renderStart)
	return result, nil
}

func (r *Runner) emit(ctx context.Context, g graph.Graph, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatGraph:
		return graph.Marshal(g)
	case FormatWorkflow:
		var buf bytes.Buffer
		if err := workflow.WriteJSON(convert.Export(g), &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(g, r.diagramOptions(opts))), nil
	case FormatSVG:
		svg, err := nodelink.Render(ctx, g, r.diagramOptions(opts))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		return svg, nil
	}
	return nil, ValidateFormat(format)
}

func (r *Runner) diagramOptions(opts Options) nodelink.Options {
	return nodelink.Options{
		Direction: opts.Direction,
		Pinned:    opts.Pinned,
		Detailed:  opts.Detailed,
	}
}
