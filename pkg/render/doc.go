// Package render turns workflow graphs into diagrams.
//
// The [nodelink] subpackage emits Graphviz DOT for a graph and renders it
// to SVG, either pinning nodes at the positions computed by the layout
// package or letting Graphviz place them.
package render
