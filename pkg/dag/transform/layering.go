package transform

import "github.com/matzehuels/flowcanvas/pkg/dag"

// AssignLayers places every node in the row given by the longest path from
// any source, so each edge points strictly forward.
//
// Sources land in row 0; every other node sits one row past its deepest
// parent. Existing row assignments are overwritten.
//
// # Algorithm
//
// Kahn's topological traversal:
//  1. Queue all nodes with in-degree 0 (in insertion order)
//  2. Pop a node and push each child to max(child row, node row + 1)
//  3. Decrement the child's in-degree and queue it once it reaches 0
//
// AssignLayers assumes g is acyclic. Nodes on a cycle never reach in-degree
// 0 and keep row 0; run [BreakCycles] first.
//
// Time complexity is O(V + E).
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		rows[n.ID] = 0
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRows(rows)
}
