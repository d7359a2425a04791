// Package dag provides the layered graph structure behind workflow layout.
//
// # Overview
//
// The layout engine places workflow nodes in ranks along a primary axis.
// This package holds the intermediate representation it works on: nodes
// carry a row (rank), and after preparation every edge joins two
// consecutive rows. Nodes, sources, sinks and row members are always
// returned in insertion order, which the layout relies on for
// reproducible results.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "trigger", Row: 0})
//	g.AddNode(dag.Node{ID: "fetch", Row: 1})
//	g.AddEdge(dag.Edge{From: "trigger", To: "fetch"})
//
// Query the structure with [DAG.Children], [DAG.Parents] and
// [DAG.NodesInRow]. [DAG.Validate] checks the consecutive-row and
// acyclicity constraints.
//
// # Node Types
//
//   - [NodeKindRegular]: nodes taken from the workflow graph
//   - [NodeKindSubdivider]: synthetic nodes that split long edges
//
// Subdividers occupy a slot in each rank they cross so the crossing
// reduction sees the edge, but they are never emitted as positioned nodes.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count inversions with a
// Fenwick tree in O(E log V). [CountPairCrossings] evaluates a single
// adjacent swap for transpose passes.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Read-only crossing counts
// on a graph that is no longer being mutated may run in parallel.
//
// The [transform] subpackage prepares a graph for ordering: cycle
// breaking, longest-path layering and long-edge subdivision.
//
// [transform]: github.com/matzehuels/flowcanvas/pkg/dag/transform
package dag
