package transform

import (
	"slices"
	"testing"

	"github.com/matzehuels/flowcanvas/pkg/dag"
)

func newGraph(ids []string, edges ...[2]string) *dag.DAG {
	g := dag.New()
	for _, id := range ids {
		g.AddNode(dag.Node{ID: id})
	}
	for _, e := range edges {
		g.AddEdge(dag.Edge{From: e[0], To: e[1]})
	}
	return g
}

func TestBreakCycles_NoCycles(t *testing.T) {
	g := newGraph([]string{"a", "b", "c"}, [2]string{"a", "b"}, [2]string{"b", "c"})

	if changed := BreakCycles(g); changed != 0 {
		t.Errorf("BreakCycles() changed %d edges, want 0", changed)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestBreakCycles_SimpleCycleReversed(t *testing.T) {
	g := newGraph([]string{"a", "b"}, [2]string{"a", "b"}, [2]string{"b", "a"})

	if changed := BreakCycles(g); changed != 1 {
		t.Errorf("BreakCycles() changed %d edges, want 1", changed)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2 (reversed, not removed)", g.EdgeCount())
	}
	if g.OutDegree("a") != 2 {
		t.Errorf("OutDegree(a) = %d, want 2", g.OutDegree("a"))
	}
	if err := g.Validate(); err != nil && err != dag.ErrNonConsecutiveRows {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBreakCycles_TriangleCycle(t *testing.T) {
	g := newGraph([]string{"a", "b", "c"},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})

	if changed := BreakCycles(g); changed != 1 {
		t.Errorf("BreakCycles() changed %d edges, want 1", changed)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	if BreakCycles(g) != 0 {
		t.Error("graph still cyclic after BreakCycles()")
	}
}

func TestBreakCycles_SelfLoopRemoved(t *testing.T) {
	g := newGraph([]string{"a"}, [2]string{"a", "a"})

	if changed := BreakCycles(g); changed != 1 {
		t.Errorf("BreakCycles() changed %d edges, want 1", changed)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestBreakCycles_LoopBackIntoChain(t *testing.T) {
	// trigger → fetch → check → wait → fetch (retry loop)
	g := newGraph([]string{"trigger", "fetch", "check", "wait"},
		[2]string{"trigger", "fetch"}, [2]string{"fetch", "check"},
		[2]string{"check", "wait"}, [2]string{"wait", "fetch"})

	BreakCycles(g)
	AssignLayers(g)

	want := map[string]int{"trigger": 0, "fetch": 1, "check": 2, "wait": 3}
	for id, row := range want {
		n, _ := g.Node(id)
		if n.Row != row {
			t.Errorf("row(%s) = %d, want %d", id, n.Row, row)
		}
	}
}

func TestBreakCycles_EmptyGraph(t *testing.T) {
	if changed := BreakCycles(dag.New()); changed != 0 {
		t.Errorf("BreakCycles() changed %d edges, want 0", changed)
	}
}

func TestAssignLayers_LongestPath(t *testing.T) {
	// a → b → c, a → c: c must sit below b
	g := newGraph([]string{"a", "b", "c", "solo"},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "c"})

	AssignLayers(g)

	tests := []struct {
		id  string
		row int
	}{
		{"a", 0}, {"b", 1}, {"c", 2}, {"solo", 0},
	}
	for _, tt := range tests {
		n, _ := g.Node(tt.id)
		if n.Row != tt.row {
			t.Errorf("row(%s) = %d, want %d", tt.id, n.Row, tt.row)
		}
	}
}

func TestAssignLayers_Overwrites(t *testing.T) {
	g := dag.New()
	g.AddNode(dag.Node{ID: "a", Row: 7})
	AssignLayers(g)
	if n, _ := g.Node("a"); n.Row != 0 {
		t.Errorf("row = %d, want 0", n.Row)
	}
}

func TestSubdivide_LongEdge(t *testing.T) {
	g := newGraph([]string{"a", "b", "c", "d"},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"}, [2]string{"a", "d"})
	AssignLayers(g)

	added := Subdivide(g)
	if added != 2 {
		t.Fatalf("Subdivide() added %d nodes, want 2", added)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	sub, ok := g.Node("a_sub_1")
	if !ok || !sub.IsSubdivider() || sub.EffectiveID() != "a" {
		t.Errorf("a_sub_1 = %+v", sub)
	}
	if got := g.Parents("d"); !slices.Contains(got, "a_sub_2") {
		t.Errorf("Parents(d) = %v, want a_sub_2 among them", got)
	}
}

func TestSubdivide_ParallelLongEdges(t *testing.T) {
	g := newGraph([]string{"a", "b", "c"},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "c"}, [2]string{"a", "c"})
	AssignLayers(g)

	if added := Subdivide(g); added != 2 {
		t.Fatalf("Subdivide() added %d nodes, want 2", added)
	}
	if _, ok := g.Node("a_sub_1__1"); !ok {
		t.Error("second chain should get a suffixed id")
	}
	if g.InDegree("c") != 3 {
		t.Errorf("InDegree(c) = %d, want 3", g.InDegree("c"))
	}
}

func TestPrepare(t *testing.T) {
	g := newGraph([]string{"a", "b", "c", "d"},
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"},
		[2]string{"a", "d"}, [2]string{"d", "d"})

	stats := Prepare(g)

	if stats.Reversed != 2 {
		t.Errorf("Reversed = %d, want 2", stats.Reversed)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestPrepare_Deterministic(t *testing.T) {
	run := func() []string {
		g := newGraph([]string{"x", "y", "z", "w"},
			[2]string{"x", "z"}, [2]string{"y", "z"}, [2]string{"z", "w"}, [2]string{"x", "w"})
		Prepare(g)
		var out []string
		for _, n := range g.Nodes() {
			out = append(out, n.ID)
		}
		return out
	}
	first := run()
	for range 10 {
		if got := run(); !slices.Equal(got, first) {
			t.Fatalf("Prepare() not deterministic: %v vs %v", got, first)
		}
	}
}
