// Package convert translates between the serialized workflow format and the
// editor's flat graph.
//
// [Import] turns a [workflow.Workflow] into a [graph.Graph]: one node per
// serialized node (identity preserved, category from the classifier,
// position copied verbatim) and one edge per connection-map entry, with ids
// "edge-0", "edge-1", ... assigned in traversal order (source ids in document
// order, then output ports, then buckets, then entries).
//
// [Export] is the inverse. Edges are grouped by (source, output port) and
// each group becomes a single bucket in slot 0 with every target index set
// to 0. Because the importer drops the output slot number, a workflow that
// fans out from non-zero slots comes back with all targets in slot 0: the
// adjacency and port names survive, the slot layout does not. Export always
// writes "active": false and drops workflow settings and tags.
package convert
