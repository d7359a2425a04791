package convert

import (
	"maps"

	"github.com/matzehuels/flowcanvas/pkg/classify"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// Importer converts serialized workflows into graphs.
type Importer struct {
	// Classifier assigns rendering categories; nil uses the default rules.
	Classifier *classify.Classifier
}

// Import converts wf with the default classifier.
func Import(wf *workflow.Workflow) (graph.Graph, error) {
	return Importer{}.Import(wf)
}

// Import converts wf into a graph.
//
// It fails with [errors.ErrCodeInvalidWorkflow] when wf is nil or carries
// no node array. Nothing else is validated: connections may reference
// unknown node ids, and such edges are emitted as-is.
func (im Importer) Import(wf *workflow.Workflow) (graph.Graph, error) {
	if wf == nil || !wf.HasNodeList() {
		return graph.Graph{}, errors.New(errors.ErrCodeInvalidWorkflow, "workflow is missing a node list")
	}
	cls := im.Classifier
	if cls == nil {
		cls = classify.New(nil)
	}

	g := graph.Graph{
		Nodes: make([]graph.Node, len(wf.Nodes)),
		Edges: make([]graph.Edge, 0, wf.Connections.Count()),
		Name:  wf.Name,
	}

	for i, n := range wf.Nodes {
		g.Nodes[i] = importNode(n, cls)
	}

	wf.Connections.Each(func(source, port string, _ int, conn workflow.Connection) {
		g.Edges = append(g.Edges, graph.Edge{
			ID:           graph.EdgeID(len(g.Edges)),
			Source:       source,
			Target:       conn.Node,
			SourceHandle: port,
			TargetHandle: conn.Type,
		})
	})

	return g, nil
}

func importNode(n workflow.Node, cls *classify.Classifier) graph.Node {
	orig := n
	orig.Parameters = maps.Clone(n.Parameters)
	orig.Credentials = maps.Clone(n.Credentials)

	return graph.Node{
		ID:       n.ID,
		Category: cls.Classify(n.Type),
		Position: graph.Position{X: n.Position[0], Y: n.Position[1]},
		Payload: graph.Payload{
			Label:        n.Name,
			Type:         n.Type,
			TypeVersion:  n.TypeVersion,
			Parameters:   maps.Clone(n.Parameters),
			Credentials:  maps.Clone(n.Credentials),
			OriginalNode: orig,
		},
	}
}
