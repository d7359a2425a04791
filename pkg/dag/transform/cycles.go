package transform

import "github.com/matzehuels/flowcanvas/pkg/dag"

// BreakCycles makes g acyclic by reversing its back edges and returns the
// number of edges changed.
//
// Workflows may loop (a retry branch feeding back into an earlier node).
// A reversed edge still links its endpoints for ordering purposes.
// Self-loops are removed.
//
// # Algorithm
//
// A depth-first search starts from every source node in insertion order,
// then from any node left unvisited (nodes that only sit on cycles). An
// edge to a node still on the DFS stack is a back edge. Reversing every
// back edge of one DFS forest yields an acyclic graph.
//
// The result depends only on node and edge insertion order.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	changed := 0
	for _, e := range backEdges {
		if e[0] == e[1] {
			before := g.EdgeCount()
			g.RemoveEdge(e[0], e[1])
			changed += before - g.EdgeCount()
			continue
		}
		changed += g.ReverseEdge(e[0], e[1])
	}
	return changed
}
