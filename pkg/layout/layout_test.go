package layout

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/observability"
)

func nodes(ids ...string) []graph.Node {
	out := make([]graph.Node, len(ids))
	for i, id := range ids {
		out[i] = graph.Node{ID: id}
	}
	return out
}

func edges(pairs ...string) []graph.Edge {
	var out []graph.Edge
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, graph.Edge{
			ID:           graph.EdgeID(len(out)),
			Source:       pairs[i],
			Target:       pairs[i+1],
			SourceHandle: "main",
			TargetHandle: "main",
		})
	}
	return out
}

func byID(ns []graph.Node) map[string]graph.Position {
	m := make(map[string]graph.Position, len(ns))
	for _, n := range ns {
		m[n.ID] = n.Position
	}
	return m
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"LR", LeftToRight, false},
		{"lr", LeftToRight, false},
		{"", LeftToRight, false},
		{"left-to-right", LeftToRight, false},
		{"TB", TopToBottom, false},
		{" tb ", TopToBottom, false},
		{"top-to-bottom", TopToBottom, false},
		{"RL", "", true},
		{"diagonal", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDirection(%q) error = %v", tt.in, err)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidDirection) {
				t.Errorf("error code = %s", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ParseDirection(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOptionsNormalized(t *testing.T) {
	o := Options{RankGap: -1, NodeGap: math.NaN(), Margin: 0, DefaultWidth: 0, DefaultHeight: math.Inf(1), Passes: -3}.normalized()
	d := DefaultOptions()
	if o.RankGap != d.RankGap || o.NodeGap != d.NodeGap {
		t.Errorf("gaps = %v, %v", o.RankGap, o.NodeGap)
	}
	if o.Margin != 0 {
		t.Errorf("zero margin should be kept, got %v", o.Margin)
	}
	if o.DefaultWidth != graph.DefaultNodeWidth || o.DefaultHeight != graph.DefaultNodeHeight {
		t.Errorf("box = %vx%v", o.DefaultWidth, o.DefaultHeight)
	}
	if o.Passes != 0 {
		t.Errorf("Passes = %d, want 0", o.Passes)
	}
}

func TestLayout_Scenario(t *testing.T) {
	e := New(DefaultOptions(), nil)
	out := e.Layout(context.Background(), nodes("A", "B"), edges("A", "B"), LeftToRight)

	pos := byID(out)
	if pos["A"] != (graph.Position{X: 20, Y: 20}) {
		t.Errorf("A = %+v, want {20 20}", pos["A"])
	}
	if pos["B"] != (graph.Position{X: 320, Y: 20}) {
		t.Errorf("B = %+v, want {320 20}", pos["B"])
	}
}

func TestLayout_TopToBottom(t *testing.T) {
	e := New(DefaultOptions(), nil)
	pos := byID(e.Layout(context.Background(), nodes("A", "B"), edges("A", "B"), TopToBottom))

	if pos["A"].Y >= pos["B"].Y {
		t.Errorf("A.y = %v should be above B.y = %v", pos["A"].Y, pos["B"].Y)
	}
	if pos["A"].X != pos["B"].X {
		t.Errorf("single chain should share x: %v vs %v", pos["A"].X, pos["B"].X)
	}
	if pos["B"].Y != 20+90+80 {
		t.Errorf("B.y = %v, want %v", pos["B"].Y, 20+90+80)
	}
}

func TestLayout_UnknownDirectionFallsBack(t *testing.T) {
	e := New(DefaultOptions(), nil)
	got := e.Layout(context.Background(), nodes("A", "B"), edges("A", "B"), Direction("RL"))
	want := e.Layout(context.Background(), nodes("A", "B"), edges("A", "B"), LeftToRight)
	if !reflect.DeepEqual(got, want) {
		t.Error("unknown direction should behave like LR")
	}
}

func TestLayout_IsolatedNodes(t *testing.T) {
	e := New(DefaultOptions(), nil)
	out := e.Layout(context.Background(), nodes("a", "b", "c"), nil, LeftToRight)

	wantY := []float64{20, 150, 280}
	for i, n := range out {
		if n.Position.X != 20 || n.Position.Y != wantY[i] {
			t.Errorf("%s = %+v, want {20 %v}", n.ID, n.Position, wantY[i])
		}
	}
}

func TestLayout_Empty(t *testing.T) {
	e := New(DefaultOptions(), nil)
	if out := e.Layout(context.Background(), nil, nil, LeftToRight); len(out) != 0 {
		t.Errorf("Layout(nil) = %v", out)
	}
}

func TestLayout_DoesNotMutateInput(t *testing.T) {
	in := nodes("A", "B")
	in[0].Position = graph.Position{X: -5, Y: -5}
	e := New(DefaultOptions(), nil)
	_ = e.Layout(context.Background(), in, edges("A", "B"), LeftToRight)
	if in[0].Position != (graph.Position{X: -5, Y: -5}) {
		t.Error("input slice should be untouched")
	}
}

func TestLayout_KeepsOrderAndPayload(t *testing.T) {
	in := nodes("c", "a", "b")
	in[1].Payload.Label = "Alpha"
	e := New(DefaultOptions(), nil)
	out := e.Layout(context.Background(), in, edges("a", "b", "b", "c"), LeftToRight)

	for i := range in {
		if out[i].ID != in[i].ID {
			t.Fatalf("order changed at %d: %s vs %s", i, out[i].ID, in[i].ID)
		}
	}
	if out[1].Payload.Label != "Alpha" {
		t.Error("payload should be carried through")
	}
}

func TestLayout_CycleTolerated(t *testing.T) {
	e := New(DefaultOptions(), nil)
	ns := nodes("trigger", "fetch", "check")
	out, stats := e.Run(context.Background(), ns,
		edges("trigger", "fetch", "fetch", "check", "check", "fetch"), LeftToRight)

	if stats.Reversed != 1 || stats.Degraded != 0 {
		t.Errorf("stats = %+v", stats)
	}
	pos := byID(out)
	if !(pos["trigger"].X < pos["fetch"].X && pos["fetch"].X < pos["check"].X) {
		t.Errorf("positions = %+v", pos)
	}
}

func TestLayout_DanglingAndSelfLoops(t *testing.T) {
	e := New(DefaultOptions(), nil)
	out, stats := e.Run(context.Background(), nodes("A", "B"),
		edges("A", "ghost", "ghost", "B", "A", "A", "A", "B"), LeftToRight)

	if stats.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", stats.Skipped)
	}
	pos := byID(out)
	if pos["A"].X >= pos["B"].X {
		t.Errorf("A should precede B: %+v", pos)
	}
}

func TestLayout_DuplicateIDKeepsPriorPosition(t *testing.T) {
	in := nodes("A", "A", "")
	in[1].Position = graph.Position{X: 7, Y: 8}
	in[2].Position = graph.Position{X: 1, Y: 2}

	e := New(DefaultOptions(), nil)
	out, stats := e.Run(context.Background(), in, nil, LeftToRight)

	if stats.Degraded != 2 {
		t.Errorf("Degraded = %d, want 2", stats.Degraded)
	}
	if out[1].Position != in[1].Position || out[2].Position != in[2].Position {
		t.Errorf("unplaceable nodes moved: %+v %+v", out[1].Position, out[2].Position)
	}
	if out[0].Position != (graph.Position{X: 20, Y: 20}) {
		t.Errorf("first A = %+v", out[0].Position)
	}
}

func TestLayout_MeasuredSizes(t *testing.T) {
	in := nodes("big", "small", "next")
	in[0].Size = graph.Size{Width: 300, Height: 100}
	in[1].Size = graph.Size{Width: 100, Height: 40}

	e := New(DefaultOptions(), nil)
	pos := byID(e.Layout(context.Background(), in, edges("big", "next", "small", "next"), LeftToRight))

	// Rank 0 is as deep as its widest box; the small node is centered in it.
	if pos["big"].X != 20 || pos["small"].X != 120 {
		t.Errorf("rank 0 x = %v, %v", pos["big"].X, pos["small"].X)
	}
	if pos["next"].X != 20+300+80 {
		t.Errorf("next.x = %v, want %v", pos["next"].X, 20+300+80)
	}
}

func TestLayout_ReducesCrossings(t *testing.T) {
	e := New(DefaultOptions(), nil)
	out, stats := e.Run(context.Background(), nodes("a", "b", "x", "y"),
		edges("a", "y", "b", "x"), LeftToRight)

	if stats.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", stats.Crossings)
	}
	pos := byID(out)
	if pos["y"].Y >= pos["x"].Y {
		t.Errorf("y should sit above x: %+v", pos)
	}
}

func TestLayout_NoOverlapWithinRank(t *testing.T) {
	e := New(DefaultOptions(), nil)
	ids := []string{"root", "a", "b", "c", "d", "e"}
	out := e.Layout(context.Background(), nodes(ids...),
		edges("root", "a", "root", "b", "root", "c", "root", "d", "root", "e"), LeftToRight)

	for i := 1; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			dy := math.Abs(out[i].Position.Y - out[j].Position.Y)
			if dy < graph.DefaultNodeHeight+DefaultNodeGap-1e-9 {
				t.Errorf("%s and %s overlap: dy=%v", out[i].ID, out[j].ID, dy)
			}
		}
	}
}

func TestLayout_LongEdgeDoesNotCollapseRank(t *testing.T) {
	e := New(DefaultOptions(), nil)
	pos := byID(e.Layout(context.Background(), nodes("a", "b", "c"),
		edges("a", "b", "b", "c", "a", "c"), LeftToRight))

	if !(pos["a"].X < pos["b"].X && pos["b"].X < pos["c"].X) {
		t.Errorf("positions = %+v", pos)
	}
}

func TestLayout_CancelledContextStillPlaces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(DefaultOptions(), nil)
	out, stats := e.Run(ctx, nodes("a", "b", "x", "y"), edges("a", "y", "b", "x"), LeftToRight)
	if stats.Degraded != 0 {
		t.Errorf("Degraded = %d", stats.Degraded)
	}
	for _, n := range out {
		if !finite(n.Position.X) || !finite(n.Position.Y) {
			t.Errorf("%s not placed: %+v", n.ID, n.Position)
		}
	}
}

func TestLayout_Deterministic(t *testing.T) {
	var ids []string
	for i := range 30 {
		ids = append(ids, fmt.Sprintf("n%02d", i))
	}
	var pairs []string
	for i := range 30 {
		for _, d := range []int{1, 3, 7} {
			if j := i + d; j < 30 && (i*d)%4 != 1 {
				pairs = append(pairs, ids[i], ids[j])
			}
		}
	}

	e := New(DefaultOptions(), nil)
	first := e.Layout(context.Background(), nodes(ids...), edges(pairs...), LeftToRight)
	for range 5 {
		again := New(DefaultOptions(), nil).Layout(context.Background(), nodes(ids...), edges(pairs...), LeftToRight)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("layout is not deterministic")
		}
	}
}

type recordingHooks struct {
	observability.NoopLayoutHooks
	started   int
	completed []observability.LayoutStats
}

func (h *recordingHooks) OnLayoutStart(context.Context, string, int, int) { h.started++ }
func (h *recordingHooks) OnLayoutComplete(_ context.Context, _ string, s observability.LayoutStats, _ time.Duration) {
	h.completed = append(h.completed, s)
}

func TestLayout_ReportsHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetLayoutHooks(h)
	defer observability.Reset()

	e := New(DefaultOptions(), nil)
	e.Layout(context.Background(), nodes("A", "B", "C"), edges("A", "B", "A", "C", "B", "C"), LeftToRight)

	if h.started != 1 || len(h.completed) != 1 {
		t.Fatalf("hooks: started=%d completed=%d", h.started, len(h.completed))
	}
	s := h.completed[0]
	if s.Ranks != 3 || s.Subdividers != 1 {
		t.Errorf("stats = %+v, want 3 ranks and 1 subdivider", s)
	}
}
