// Package transform prepares a [dag.DAG] for layered layout.
//
// # Overview
//
// Workflow graphs arrive with loops, edges that skip ranks and no rank
// assignment at all. The functions here bring them into the form the
// crossing reduction expects:
//
//   - The graph is acyclic ([BreakCycles])
//   - Every node has a rank from longest-path layering ([AssignLayers])
//   - Every edge joins consecutive ranks ([Subdivide])
//
// [Prepare] applies all three in order.
//
// # Cycle Breaking
//
// [BreakCycles] reverses the back edges of a depth-first search started
// from sources in insertion order. The caller's edges are untouched; only
// the working DAG changes.
//
// # Layer Assignment
//
// [AssignLayers] puts each node one rank after its deepest parent, so
// sources sit in rank 0 and isolated nodes stay there too.
//
// # Edge Subdivision
//
// [Subdivide] splits long edges into chains of subdivider nodes:
//
//	Before: trigger (row 0) → notify (row 3)
//	After:  trigger → trigger_sub_1 → trigger_sub_2 → notify
//
// # Usage
//
//	stats := transform.Prepare(g) // modifies g in place
//
// or step by step:
//
//	transform.BreakCycles(g)
//	transform.AssignLayers(g)
//	transform.Subdivide(g)
//
// [dag.DAG]: github.com/matzehuels/flowcanvas/pkg/dag
package transform
