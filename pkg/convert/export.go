package convert

import (
	"maps"
	"slices"

	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// Export converts g back into the serialized workflow shape. It never
// fails; dangling edges are written out unchanged.
func Export(g graph.Graph) *workflow.Workflow {
	wf := &workflow.Workflow{
		Name:   g.Name,
		Nodes:  make([]workflow.Node, len(g.Nodes)),
		Active: false,
	}

	for i, n := range g.Nodes {
		wf.Nodes[i] = exportNode(n)
	}

	for _, e := range g.Edges {
		wf.Connections.Append(e.Source, e.SourceHandle, 0, workflow.Connection{
			Node:  e.Target,
			Type:  e.TargetHandle,
			Index: 0,
		})
	}

	return wf
}

func exportNode(n graph.Node) workflow.Node {
	return workflow.Node{
		ID:          n.ID,
		Name:        n.Payload.Label,
		Type:        n.Payload.Type,
		TypeVersion: n.Payload.TypeVersion,
		Position:    workflow.Point{n.Position.X, n.Position.Y},
		Parameters:  maps.Clone(n.Payload.Parameters),
		Credentials: maps.Clone(n.Payload.Credentials),
		Extra:       slices.Clone(n.Payload.OriginalNode.Extra),
	}
}
