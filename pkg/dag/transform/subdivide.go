package transform

import (
	"fmt"

	"github.com/matzehuels/flowcanvas/pkg/dag"
)

// Subdivide replaces every edge spanning more than one row with a chain of
// single-row edges through synthetic [dag.NodeKindSubdivider] nodes:
//
//	Before: trigger (row 0) → notify (row 3)
//	After:  trigger → trigger_sub_1 → trigger_sub_2 → notify
//
// Each subdivider's MasterID names the edge source. Subdivider IDs have the
// form "source_sub_row"; a numeric suffix is appended on collision
// ("trigger_sub_1__2"), so parallel long edges get separate chains.
//
// Subdivide expects rows from [AssignLayers]; edges pointing backwards or
// within a row are left alone. It returns the number of subdividers added.
func Subdivide(g *dag.DAG) int {
	gen := newIDGen(g.Nodes())
	added := 0

	var long []dag.Edge
	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}
		long = append(long, e)
	}

	for _, e := range long {
		g.RemoveEdge(e.From, e.To)
	}

	for _, e := range long {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		prevID := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			prevID = addSubdivider(g, gen, prevID, src.ID, row)
			added++
		}
		if err := g.AddEdge(dag.Edge{From: prevID, To: dst.ID}); err != nil {
			panic(err)
		}
	}
	return added
}

func addSubdivider(g *dag.DAG, gen *idGen, from, master string, row int) string {
	id := gen.next(master, row)
	if err := g.AddNode(dag.Node{
		ID:       id,
		Row:      row,
		Kind:     dag.NodeKindSubdivider,
		MasterID: master,
	}); err != nil {
		panic(err)
	}
	if err := g.AddEdge(dag.Edge{From: from, To: id}); err != nil {
		panic(err)
	}
	return id
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, row int) string {
	prefix := fmt.Sprintf("%s_sub_%d", base, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
