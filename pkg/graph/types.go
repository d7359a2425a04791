package graph

import (
	"maps"
	"slices"

	"github.com/matzehuels/flowcanvas/pkg/classify"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// =============================================================================
// Constants
// =============================================================================

// DefaultName is the name of a freshly created or cleared graph.
const DefaultName = "My workflow"

// Default node box used when a node carries no measured size.
const (
	DefaultNodeWidth  = 220.0
	DefaultNodeHeight = 90.0
)

// =============================================================================
// Graph - Editor Representation
// =============================================================================

// Graph is the flat editor representation of a workflow: node records plus
// an edge list. Node ids are unique; edges normally reference existing
// nodes, but a dangling edge must be tolerated by every reader.
type Graph struct {
	Nodes      []Node `json:"nodes"`
	Edges      []Edge `json:"edges"`
	Name       string `json:"name"`
	SelectedID string `json:"selectedId,omitempty"`
}

// Empty returns the canonical empty graph.
func Empty() Graph {
	return Graph{Nodes: []Node{}, Edges: []Edge{}, Name: DefaultName}
}

// =============================================================================
// Node
// =============================================================================

// Position is a top-left canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a node's measured bounding box. The zero value means "unmeasured".
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// OrDefault returns s, or the default box when s is unmeasured.
func (s Size) OrDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return Size{Width: DefaultNodeWidth, Height: DefaultNodeHeight}
	}
	return s
}

// Payload carries the workflow-level data of a node. OriginalNode is the
// serialized node the record was imported from (or synthesized for nodes
// created in the editor); its ID always equals the owning node's ID.
type Payload struct {
	Label        string                            `json:"label"`
	Type         string                            `json:"type"`
	TypeVersion  float64                           `json:"typeVersion"`
	Parameters   map[string]any                    `json:"parameters"`
	Credentials  map[string]workflow.CredentialRef `json:"credentials,omitempty"`
	OriginalNode workflow.Node                     `json:"originalNode"`
}

// Node is a positioned, classified graph vertex.
type Node struct {
	ID       string            `json:"id"`
	Category classify.Category `json:"category"`
	Position Position          `json:"position"`
	Size     Size              `json:"size,omitzero"`
	Payload  Payload           `json:"data"`
}

// Clone returns a deep copy of n. Parameter values are copied one level
// deep; nested values are treated as immutable.
func (n Node) Clone() Node {
	n.Payload.Parameters = maps.Clone(n.Payload.Parameters)
	n.Payload.Credentials = maps.Clone(n.Payload.Credentials)
	n.Payload.OriginalNode.Parameters = maps.Clone(n.Payload.OriginalNode.Parameters)
	n.Payload.OriginalNode.Credentials = maps.Clone(n.Payload.OriginalNode.Credentials)
	n.Payload.OriginalNode.Extra = slices.Clone(n.Payload.OriginalNode.Extra)
	return n
}

// =============================================================================
// Edge
// =============================================================================

// Edge connects an output port of Source to an input port of Target.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// Touches reports whether the edge has id as either endpoint.
func (e Edge) Touches(id string) bool { return e.Source == id || e.Target == id }

// =============================================================================
// Graph helpers
// =============================================================================

// Clone returns a deep copy of g.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes:      make([]Node, len(g.Nodes)),
		Edges:      slices.Clone(g.Edges),
		Name:       g.Name,
		SelectedID: g.SelectedID,
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	return out
}

// NodeIndex returns the index of the node with id, or -1.
func (g Graph) NodeIndex(id string) int {
	return slices.IndexFunc(g.Nodes, func(n Node) bool { return n.ID == id })
}

// EdgeIndex returns the index of the edge with id, or -1.
func (g Graph) EdgeIndex(id string) int {
	return slices.IndexFunc(g.Edges, func(e Edge) bool { return e.ID == id })
}

// HasNode reports whether a node with id exists.
func (g Graph) HasNode(id string) bool { return g.NodeIndex(id) >= 0 }

// DanglingEdges returns the edges whose source or target is not a node of g.
func (g Graph) DanglingEdges() []Edge {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}
	var out []Edge
	for _, e := range g.Edges {
		_, okS := ids[e.Source]
		_, okT := ids[e.Target]
		if !okS || !okT {
			out = append(out, e)
		}
	}
	return out
}
