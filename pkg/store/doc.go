// Package store owns the graph being edited.
//
// A [Store] holds one [graph.Graph] together with the selection, the
// workflow name and a dirty flag, and exposes the only operations allowed
// to change them. Every operation runs under a single mutex and installs a
// freshly built graph, so readers never observe a half-applied change and
// compound operations (remove a node, then re-run layout) never interleave
// with another writer.
//
// Readers get deep copies: [Store.Snapshot] and [Store.Node] return values
// the caller may modify freely.
//
// Only [Store.ImportWorkflow] can fail. Operations naming a missing node
// or edge are no-ops.
//
// [graph.Graph]: github.com/matzehuels/flowcanvas/pkg/graph
package store
