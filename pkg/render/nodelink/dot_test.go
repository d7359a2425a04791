package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowcanvas/pkg/classify"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

func sample() graph.Graph {
	return graph.Graph{
		Name: "demo",
		Nodes: []graph.Node{
			{ID: "t", Category: classify.Trigger, Position: graph.Position{X: 20, Y: 20}, Payload: graph.Payload{Label: "Start", Type: "n8n-nodes-base.manualTrigger"}},
			{ID: "a", Category: classify.Agent, Position: graph.Position{X: 320, Y: 20}, Payload: graph.Payload{Label: "Agent"}},
			{ID: "m", Category: classify.Tool, Position: graph.Position{X: 320, Y: 150}, Size: graph.Size{Width: 100, Height: 50}},
		},
		Edges: []graph.Edge{
			{ID: "edge-0", Source: "t", Target: "a", SourceHandle: "main", TargetHandle: "main"},
			{ID: "edge-1", Source: "m", Target: "a", SourceHandle: "ai_languageModel", TargetHandle: "ai_languageModel"},
			{ID: "edge-2", Source: "a", Target: "ghost", SourceHandle: "main", TargetHandle: "main"},
		},
		SelectedID: "a",
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{Direction: layout.TopToBottom, Detailed: true})

	for _, want := range []string{
		`digraph "demo" {`,
		"rankdir=TB;",
		`"t" [label="Start\nn8n-nodes-base.manualTrigger", shape=cds`,
		`"m" [label="m", shape=ellipse`,
		"penwidth=3",
		`"t" -> "a";`,
		`"m" -> "a" [style=dashed, label="ai_languageModel", fontsize=10];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "ghost") {
		t.Error("ToDOT() emitted a dangling edge")
	}
	if strings.Contains(dot, "pos=") {
		t.Error("unpinned DOT carries positions")
	}
}

func TestToDOT_Pinned(t *testing.T) {
	dot := ToDOT(sample(), Options{Pinned: true})

	for _, want := range []string{
		"rankdir=LR;",
		"inputscale=72;",
		`pos="130,-65!"`,
		`pos="370,-175!"`,
		"fixedsize=true",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "label=\"ai_languageModel\"") {
		t.Error("port label emitted without Detailed")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() = %s, want %s", out, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("normalizeViewBox() changed an svg without viewBox")
	}
}
