package layout

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/dag"
	"github.com/matzehuels/flowcanvas/pkg/dag/transform"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/observability"
)

// Layouter computes positions for a node set.
//
// Layout returns a copy of nodes in the same order with only Position
// rewritten. It never fails: a node that cannot be placed keeps the
// position it came in with.
type Layouter interface {
	Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, dir Direction) []graph.Node
}

// Engine is the layered layout engine.
type Engine struct {
	opts   Options
	logger *log.Logger
}

// New creates an engine. Unusable option values fall back to defaults; a
// nil logger uses log.Default().
func New(opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{opts: opts.normalized(), logger: logger}
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Layout implements [Layouter].
func (e *Engine) Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, dir Direction) []graph.Node {
	out, _ := e.Run(ctx, nodes, edges, dir)
	return out
}

// Run is Layout that also reports what happened. An unknown direction is
// treated as [LeftToRight]. Cancelling ctx stops crossing reduction early;
// every node is still placed.
func (e *Engine) Run(ctx context.Context, nodes []graph.Node, edges []graph.Edge, dir Direction) ([]graph.Node, observability.LayoutStats) {
	start := time.Now()
	if !dir.Valid() {
		dir = LeftToRight
	}
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, string(dir), len(nodes), len(edges))

	p := e.plan(ctx, nodes, edges)
	centers := p.place(e.opts, dir)

	out := slices.Clone(nodes)
	for i := range out {
		c, ok := centers[out[i].ID]
		if !ok || !p.placed[i] {
			p.stats.Degraded++
			continue
		}
		size := e.opts.boxSize(out[i])
		pos := graph.Position{X: c.x - size.Width/2, Y: c.y - size.Height/2}
		if !finite(pos.X) || !finite(pos.Y) {
			p.stats.Degraded++
			continue
		}
		out[i].Position = pos
	}

	took := time.Since(start)
	if p.stats.Degraded > 0 {
		e.logger.Warn("layout kept prior positions", "nodes", p.stats.Degraded)
	}
	e.logger.Debug("layout complete",
		"direction", dir,
		"nodes", len(nodes),
		"edges", len(edges),
		"ranks", p.stats.Ranks,
		"crossings", p.stats.Crossings,
		"took", took)
	hooks.OnLayoutComplete(ctx, string(dir), p.stats, took)
	return out, p.stats
}

// plan is the layered graph with its final within-rank order.
type plan struct {
	g      *dag.DAG
	orders map[int][]string
	sizes  map[string]graph.Size // box of every placeable workflow node
	placed []bool                // by input index
	stats  observability.LayoutStats
}

func (e *Engine) plan(ctx context.Context, nodes []graph.Node, edges []graph.Edge) *plan {
	p := &plan{
		g:      dag.New(),
		sizes:  make(map[string]graph.Size, len(nodes)),
		placed: make([]bool, len(nodes)),
	}

	for i, n := range nodes {
		// Empty and duplicate IDs are rejected here and keep their position.
		if err := p.g.AddNode(dag.Node{ID: n.ID}); err != nil {
			continue
		}
		p.placed[i] = true
		p.sizes[n.ID] = e.opts.boxSize(n)
	}

	for _, ed := range edges {
		if ed.Source == ed.Target {
			p.stats.Skipped++
			continue
		}
		if err := p.g.AddEdge(dag.Edge{From: ed.Source, To: ed.Target}); err != nil {
			p.stats.Skipped++
		}
	}

	ts := transform.Prepare(p.g)
	p.stats.Reversed = ts.Reversed
	p.stats.Subdividers = ts.Subdividers

	p.orders = orderRows(ctx, p.g, e.opts.Passes)
	p.stats.Ranks = p.g.RowCount()
	p.stats.Crossings = dag.CountCrossings(p.g, p.orders)
	return p
}
