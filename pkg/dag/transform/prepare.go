package transform

import "github.com/matzehuels/flowcanvas/pkg/dag"

// Stats reports what [Prepare] changed.
type Stats struct {
	Reversed    int // back edges reversed or self-loops dropped
	Subdividers int // synthetic nodes added for long edges
}

// Prepare runs the full pipeline that turns an arbitrary directed graph
// into a properly layered one: [BreakCycles], [AssignLayers], [Subdivide].
// After Prepare, g.Validate() returns nil.
func Prepare(g *dag.DAG) Stats {
	var s Stats
	s.Reversed = BreakCycles(g)
	AssignLayers(g)
	s.Subdividers = Subdivide(g)
	return s
}
