package layout

import (
	"cmp"
	"context"
	"slices"

	"github.com/matzehuels/flowcanvas/pkg/dag"
)

// maxTransposeRounds bounds the adjacent-swap refinement per pass.
const maxTransposeRounds = 16

// orderRows returns the left-to-right (or top-to-bottom) order of every
// rank. It starts from insertion order and alternates downward and upward
// barycenter sweeps, each followed by a transpose pass, keeping the
// ordering with the fewest crossings seen. Ties always resolve to the
// earlier position, so the result depends only on the input order.
func orderRows(ctx context.Context, g *dag.DAG, passes int) map[int][]string {
	rows := g.RowIDs()
	orders := make(map[int][]string, len(rows))
	for _, r := range rows {
		orders[r] = dag.NodeIDs(g.NodesInRow(r))
	}

	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	for pass := 0; pass < passes && bestCrossings > 0; pass++ {
		if ctx.Err() != nil {
			break
		}
		sweep(g, orders, rows, pass%2 == 0)
		transpose(g, orders, rows)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best, bestCrossings = cloneOrders(orders), c
		}
	}
	return best
}

func sweep(g *dag.DAG, orders map[int][]string, rows []int, down bool) {
	if down {
		for i := 1; i < len(rows); i++ {
			reorder(g, orders[rows[i]], orders[rows[i-1]], true)
		}
		return
	}
	for i := len(rows) - 2; i >= 0; i-- {
		reorder(g, orders[rows[i]], orders[rows[i+1]], false)
	}
}

// reorder sorts ids in place by the barycenter of their neighbours in adj.
// A node without neighbours there keys on its current index.
func reorder(g *dag.DAG, ids, adj []string, useParents bool) {
	pos := dag.PosMap(adj)
	keys := make(map[string]float64, len(ids))
	for i, id := range ids {
		nbrs := g.Children(id)
		if useParents {
			nbrs = g.Parents(id)
		}
		sum, n := 0.0, 0
		for _, nb := range nbrs {
			if p, ok := pos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			keys[id] = float64(i)
		} else {
			keys[id] = sum / float64(n)
		}
	}
	slices.SortStableFunc(ids, func(a, b string) int { return cmp.Compare(keys[a], keys[b]) })
}

// transpose swaps adjacent nodes while doing so strictly reduces the
// crossings on both sides of their rank.
func transpose(g *dag.DAG, orders map[int][]string, rows []int) {
	for round, improved := 0, true; improved && round < maxTransposeRounds; round++ {
		improved = false
		for _, r := range rows {
			ids := orders[r]
			var above, below map[string]int
			if prev, ok := orders[r-1]; ok {
				above = dag.PosMap(prev)
			}
			if next, ok := orders[r+1]; ok {
				below = dag.PosMap(next)
			}
			for j := 0; j+1 < len(ids); j++ {
				a, b := ids[j], ids[j+1]
				if pairCrossings(g, b, a, above, below) < pairCrossings(g, a, b, above, below) {
					ids[j], ids[j+1] = b, a
					improved = true
				}
			}
		}
	}
}

func pairCrossings(g *dag.DAG, left, right string, above, below map[string]int) int {
	c := 0
	if above != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, above, true)
	}
	if below != nil {
		c += dag.CountPairCrossingsWithPos(g, left, right, below, false)
	}
	return c
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}
