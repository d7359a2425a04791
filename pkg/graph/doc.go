// Package graph defines the editor's flat graph representation of a
// workflow: an ordered node list, an ordered edge list, a workflow name and
// the current selection.
//
// # Nodes
//
// A [Node] keeps the identity of the serialized node it came from (its ID is
// never regenerated), a rendering [classify.Category], a top-left
// [Position], an optional measured [Size] and a [Payload] with the workflow
// data (label, type, type version, parameters, credentials, and the
// original serialized node).
//
// # Edges
//
// An [Edge] links Source to Target and records the output port
// (SourceHandle) and input port (TargetHandle). The output slot number of
// the serialized format is not represented.
//
// # JSON
//
// [WriteGraph] and [ReadGraph] store a graph as JSON for the CLI and the
// HTTP API:
//
//	{
//	  "nodes": [{"id": "A", "category": "trigger", "position": {"x": 20, "y": 20},
//	             "data": {"label": "A", "type": "n8n-nodes-base.manualTrigger", ...}}],
//	  "edges": [{"id": "edge-0", "source": "A", "target": "B",
//	             "sourceHandle": "main", "targetHandle": "main"}],
//	  "name": "T"
//	}
//
// # Ownership
//
// Graph values are plain data. The editor state is owned by the store
// package, which hands out copies made with [Graph.Clone].
package graph
