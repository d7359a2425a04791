package store

import (
	"context"
	"sync"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/flowcanvas/pkg/classify"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/observability"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

const scenario = `{"name":"T","nodes":[
 {"id":"A","name":"A","type":"n8n-nodes-base.manualTrigger","typeVersion":1,"position":[0,0],"parameters":{}},
 {"id":"B","name":"B","type":"n8n-nodes-base.httpRequest","typeVersion":1,"position":[0,0],"parameters":{}}],
 "connections":{"A":{"main":[[{"node":"B","type":"main","index":0}]]}},"active":false}`

func mustParse(t *testing.T, s string) *workflow.Workflow {
	t.Helper()
	wf, err := workflow.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return wf
}

func imported(t *testing.T) *Store {
	t.Helper()
	s := New(nil, nil)
	if err := s.ImportWorkflow(context.Background(), mustParse(t, scenario)); err != nil {
		t.Fatalf("ImportWorkflow() error: %v", err)
	}
	return s
}

func edge(id, src, dst string) graph.Edge {
	return graph.Edge{ID: id, Source: src, Target: dst, SourceHandle: "main", TargetHandle: "main"}
}

type recorder struct {
	mu      sync.Mutex
	ops     []string
	rejects int
}

func (r *recorder) OnMutation(op string, _, _ int, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *recorder) OnImportError(error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejects++
}

func TestNew_Empty(t *testing.T) {
	s := New(nil, nil)
	g := s.Snapshot()
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("new store has %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
	if s.Name() != graph.DefaultName {
		t.Errorf("Name() = %q, want %q", s.Name(), graph.DefaultName)
	}
	if s.Dirty() {
		t.Error("new store is dirty")
	}
}

func TestImportWorkflow_Scenario(t *testing.T) {
	s := imported(t)
	g := s.Snapshot()

	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
	if g.Nodes[0].Category != classify.Trigger || g.Nodes[1].Category != classify.Default {
		t.Errorf("categories = %s,%s", g.Nodes[0].Category, g.Nodes[1].Category)
	}
	if e := g.Edges[0]; e.Source != "A" || e.Target != "B" {
		t.Errorf("edge = %s->%s", e.Source, e.Target)
	}
	if g.Name != "T" || s.Dirty() || s.SelectedID() != "" {
		t.Errorf("name=%q dirty=%v selected=%q", g.Name, s.Dirty(), s.SelectedID())
	}
	if !(g.Nodes[0].Position.X < g.Nodes[1].Position.X) {
		t.Errorf("import layout: A.x=%v B.x=%v", g.Nodes[0].Position.X, g.Nodes[1].Position.X)
	}

	s.RunLayout(context.Background(), layout.LeftToRight)
	a, _ := s.Node("A")
	b, _ := s.Node("B")
	if !(a.Position.X < b.Position.X) {
		t.Errorf("A.x=%v, B.x=%v; want A left of B", a.Position.X, b.Position.X)
	}
	if !s.Dirty() {
		t.Error("RunLayout did not mark dirty")
	}
}

func TestImportWorkflow_Rejected(t *testing.T) {
	rec := &recorder{}
	observability.SetStoreHooks(rec)
	t.Cleanup(observability.Reset)

	s := imported(t)
	s.SetName("edited")
	before := s.Snapshot()

	tests := []struct {
		name string
		wf   *workflow.Workflow
	}{
		{"nil", nil},
		{"missing nodes", mustParse(t, `{"name":"x","connections":{}}`)},
		{"nodes not a list", mustParse(t, `{"name":"x","nodes":{"a":1}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ImportWorkflow(context.Background(), tt.wf)
			if !errors.Is(err, errors.ErrCodeInvalidWorkflow) {
				t.Fatalf("ImportWorkflow() error = %v, want %s", err, errors.ErrCodeInvalidWorkflow)
			}
			after := s.Snapshot()
			if after.Name != before.Name || len(after.Nodes) != len(before.Nodes) || !s.Dirty() {
				t.Errorf("store changed after rejected import")
			}
		})
	}
	if rec.rejects != len(tests) {
		t.Errorf("OnImportError called %d times, want %d", rec.rejects, len(tests))
	}
}

func TestClear(t *testing.T) {
	s := imported(t)
	s.SetSelection("A")
	s.SetName("renamed")
	s.Clear()

	g := s.Snapshot()
	if len(g.Nodes) != 0 || len(g.Edges) != 0 || g.Name != graph.DefaultName || g.SelectedID != "" {
		t.Errorf("Clear() left %+v", g)
	}
	if s.Dirty() {
		t.Error("Clear() left store dirty")
	}
}

func TestReplaceAll(t *testing.T) {
	s := New(nil, nil)
	s.SetName("dirty now")

	g := graph.Graph{
		Nodes:      []graph.Node{{ID: "x"}},
		Name:       "replaced",
		SelectedID: "missing",
	}
	s.ReplaceAll(g)
	g.Nodes[0].ID = "mutated"

	if n, ok := s.Node("x"); !ok || n.ID != "x" {
		t.Error("ReplaceAll() did not copy its input")
	}
	if s.Dirty() || s.SelectedID() != "" || s.Name() != "replaced" {
		t.Errorf("dirty=%v selected=%q name=%q", s.Dirty(), s.SelectedID(), s.Name())
	}
}

func TestRemoveNode(t *testing.T) {
	s := New(nil, nil)
	s.ReplaceAll(graph.Graph{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []graph.Edge{
			edge("edge-0", "a", "b"),
			edge("edge-1", "b", "c"),
			edge("edge-2", "c", "b"),
			edge("edge-3", "a", "c"),
			edge("edge-4", "b", "b"),
		},
	})
	s.SetSelection("b")

	if !s.RemoveNode("b") {
		t.Fatal("RemoveNode(b) = false")
	}
	g := s.Snapshot()
	if len(g.Nodes) != 2 || len(g.Edges) != 1 || g.Edges[0].ID != "edge-3" {
		t.Errorf("after remove: %d nodes, edges %v", len(g.Nodes), g.Edges)
	}
	if s.SelectedID() != "" {
		t.Errorf("selection = %q, want cleared", s.SelectedID())
	}
	if !s.Dirty() {
		t.Error("RemoveNode did not mark dirty")
	}

	s.ReplaceAll(g)
	if s.RemoveNode("b") {
		t.Error("second RemoveNode(b) = true")
	}
	if s.Dirty() {
		t.Error("no-op RemoveNode marked dirty")
	}
}

func TestRemoveNode_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		ids := make([]string, n)
		nodes := make([]graph.Node, n)
		for i := range ids {
			ids[i] = string(rune('a' + i))
			nodes[i] = graph.Node{ID: ids[i]}
		}
		m := rapid.IntRange(0, 16).Draw(t, "m")
		edges := make([]graph.Edge, m)
		for i := range edges {
			src := rapid.SampledFrom(ids).Draw(t, "src")
			dst := rapid.SampledFrom(ids).Draw(t, "dst")
			edges[i] = edge(graph.EdgeID(i), src, dst)
		}
		target := rapid.SampledFrom(ids).Draw(t, "target")

		k := 0
		for _, e := range edges {
			if e.Touches(target) {
				k++
			}
		}

		s := New(nil, nil)
		s.ReplaceAll(graph.Graph{Nodes: nodes, Edges: edges})
		s.RemoveNode(target)
		g := s.Snapshot()
		if len(g.Nodes) != n-1 || len(g.Edges) != m-k {
			t.Fatalf("got %d nodes %d edges, want %d and %d", len(g.Nodes), len(g.Edges), n-1, m-k)
		}
		s.RemoveNode(target)
		again := s.Snapshot()
		if len(again.Nodes) != n-1 || len(again.Edges) != m-k {
			t.Fatal("second RemoveNode changed the graph")
		}
	})
}

func TestAddNode(t *testing.T) {
	s := imported(t)

	id := s.AddNode(graph.Node{Payload: graph.Payload{
		Label:       "Agent",
		Type:        "@n8n/n8n-nodes-langchain.agent",
		TypeVersion: 1.7,
	}})
	n, ok := s.Node(id)
	if !ok {
		t.Fatalf("Node(%q) not found", id)
	}
	if n.Category != classify.Agent {
		t.Errorf("Category = %s, want agent", n.Category)
	}
	orig := n.Payload.OriginalNode
	if orig.ID != id || orig.Name != "Agent" || orig.Type != "@n8n/n8n-nodes-langchain.agent" || orig.TypeVersion != 1.7 {
		t.Errorf("OriginalNode = %+v", orig)
	}
	if !s.Dirty() {
		t.Error("AddNode did not mark dirty")
	}

	dup := s.AddNode(graph.Node{ID: "A", Category: classify.Tool})
	if dup == "A" || dup == "" {
		t.Errorf("colliding id kept: %q", dup)
	}
	if n, _ := s.Node(dup); n.Category != classify.Tool {
		t.Errorf("explicit category overwritten: %s", n.Category)
	}
	if got := len(s.Snapshot().Nodes); got != 4 {
		t.Errorf("len(Nodes) = %d, want 4", got)
	}
}

func TestUpdateNodePayload(t *testing.T) {
	s := imported(t)
	before, _ := s.Node("B")

	label := "Fetch"
	typ := "n8n-nodes-base.webhook"
	s.UpdateNodePayload("B", PayloadPatch{
		Label:      &label,
		Type:       &typ,
		Parameters: map[string]any{"url": "https://example.com"},
	})

	after, _ := s.Node("B")
	if after.Payload.Label != "Fetch" || after.Payload.Parameters["url"] != "https://example.com" {
		t.Errorf("payload = %+v", after.Payload)
	}
	if after.Category != classify.Trigger {
		t.Errorf("Category = %s, want trigger after type change", after.Category)
	}
	if after.Position != before.Position {
		t.Errorf("position moved: %v -> %v", before.Position, after.Position)
	}
	if after.Payload.TypeVersion != before.Payload.TypeVersion {
		t.Error("unset TypeVersion was overwritten")
	}

	s.ReplaceAll(s.Snapshot())
	s.UpdateNodePayload("missing", PayloadPatch{Label: &label})
	if !s.Dirty() {
		t.Error("UpdateNodePayload on missing id did not mark dirty")
	}
}

func TestApplyCredential(t *testing.T) {
	s := imported(t)
	s.UpdateNodePayload("B", PayloadPatch{Credentials: map[string]workflow.CredentialRef{
		"httpBasicAuth": {ID: "1", Name: "basic"},
	}})
	s.ApplyCredential("B", "oAuth2Api", workflow.CredentialRef{ID: "7", Name: "google"})

	n, _ := s.Node("B")
	if len(n.Payload.Credentials) != 2 {
		t.Fatalf("credentials = %v", n.Payload.Credentials)
	}
	if got := n.Payload.Credentials["oAuth2Api"]; got.ID != "7" {
		t.Errorf("oAuth2Api = %+v", got)
	}

	exported := s.ExportWorkflow()
	if got := exported.Nodes[1].Credentials["oAuth2Api"]; got.Name != "google" {
		t.Errorf("exported credential = %+v", got)
	}
}

func TestSetSelection(t *testing.T) {
	s := imported(t)

	tests := []struct {
		id   string
		want string
	}{
		{"A", "A"},
		{"B", "B"},
		{"nope", ""},
		{"A", "A"},
		{"", ""},
	}
	for _, tt := range tests {
		s.SetSelection(tt.id)
		if got := s.SelectedID(); got != tt.want {
			t.Errorf("SetSelection(%q): SelectedID() = %q, want %q", tt.id, got, tt.want)
		}
	}
	if s.Dirty() {
		t.Error("selection changes marked dirty")
	}
}

func TestApplyEdgeAdd(t *testing.T) {
	s := imported(t)

	id := s.ApplyEdgeAdd(graph.Edge{Source: "B", Target: "B"})
	if id != "edge-1" {
		t.Errorf("id = %q, want edge-1", id)
	}
	dangling := s.ApplyEdgeAdd(graph.Edge{ID: "edge-0", Source: "B", Target: "ghost"})
	if dangling != "edge-2" {
		t.Errorf("colliding id = %q, want edge-2", dangling)
	}
	keep := s.ApplyEdgeAdd(graph.Edge{ID: "custom", Source: "A", Target: "B", SourceHandle: "ai_tool", TargetHandle: "ai_tool"})
	if keep != "custom" {
		t.Errorf("id = %q, want custom", keep)
	}

	g := s.Snapshot()
	if len(g.Edges) != 4 {
		t.Fatalf("len(Edges) = %d, want 4", len(g.Edges))
	}
	if e := g.Edges[1]; e.SourceHandle != "main" || e.TargetHandle != "main" {
		t.Errorf("handles = %q/%q, want main/main", e.SourceHandle, e.TargetHandle)
	}
	if !s.Dirty() {
		t.Error("ApplyEdgeAdd did not mark dirty")
	}

	if !s.RemoveEdge("custom") || s.RemoveEdge("custom") {
		t.Error("RemoveEdge(custom) should succeed exactly once")
	}
}

func TestExportWorkflow_ReadOnly(t *testing.T) {
	s := imported(t)
	wf := s.ExportWorkflow()
	if s.Dirty() {
		t.Error("ExportWorkflow marked dirty")
	}
	if wf.Name != "T" || len(wf.Nodes) != 2 || wf.Connections.Count() != 1 {
		t.Errorf("exported %q with %d nodes, %d connections", wf.Name, len(wf.Nodes), wf.Connections.Count())
	}
}

func TestSnapshot_Isolated(t *testing.T) {
	s := imported(t)
	g := s.Snapshot()
	g.Nodes[0].Payload.Parameters["injected"] = true
	g.Nodes[0].Payload.Label = "changed"
	g.Edges[0].Target = "ghost"

	n, _ := s.Node("A")
	if _, ok := n.Payload.Parameters["injected"]; ok || n.Payload.Label != "A" {
		t.Error("snapshot shares node state with the store")
	}
	if s.Snapshot().Edges[0].Target != "B" {
		t.Error("snapshot shares edge state with the store")
	}
}

func TestHooks(t *testing.T) {
	rec := &recorder{}
	observability.SetStoreHooks(rec)
	t.Cleanup(observability.Reset)

	s := imported(t)
	s.SetSelection("A")
	s.RemoveNode("missing")
	s.RemoveNode("B")

	want := []string{OpImport, OpSelect, OpRemoveNode}
	if len(rec.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", rec.ops, want)
	}
	for i := range want {
		if rec.ops[i] != want[i] {
			t.Errorf("ops[%d] = %s, want %s", i, rec.ops[i], want[i])
		}
	}
}

func TestConcurrentMutations(t *testing.T) {
	s := New(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				id := s.AddNode(graph.Node{Payload: graph.Payload{Type: "n8n-nodes-base.set"}})
				s.ApplyEdgeAdd(graph.Edge{Source: id, Target: id})
				s.RunLayout(context.Background(), layout.TopToBottom)
				_ = s.Snapshot()
			}
		}()
	}
	wg.Wait()

	g := s.Snapshot()
	if len(g.Nodes) != 80 || len(g.Edges) != 80 {
		t.Errorf("got %d nodes, %d edges; want 80, 80", len(g.Nodes), len(g.Edges))
	}
	seen := map[string]bool{}
	for _, e := range g.Edges {
		if seen[e.ID] {
			t.Fatalf("duplicate edge id %s", e.ID)
		}
		seen[e.ID] = true
	}
}
