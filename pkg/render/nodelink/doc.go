// Package nodelink renders workflow graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Pinned: true})
//	svg, err := nodelink.RenderSVG(ctx, dot, true)
//
// # Pinned vs. free layout
//
// With Pinned set, every node is fixed at the position computed by the
// layout package and Graphviz only routes edges (neato honors pos="x,y!").
// Without it, Graphviz's dot engine places the nodes, using Direction as
// rankdir.
//
// # Styling
//
// Shape and colors follow the node category: triggers, agents, tools and
// everything else are drawn differently. The selected node gets a thicker
// border. Edges between non-main ports are dashed.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz binary is required.
package nodelink
