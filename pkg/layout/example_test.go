package layout_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

func ExampleEngine_Layout() {
	nodes := []graph.Node{{ID: "trigger"}, {ID: "fetch"}, {ID: "notify"}}
	edges := []graph.Edge{
		{ID: "edge-0", Source: "trigger", Target: "fetch"},
		{ID: "edge-1", Source: "fetch", Target: "notify"},
	}

	engine := layout.New(layout.DefaultOptions(), nil)
	for _, n := range engine.Layout(context.Background(), nodes, edges, layout.LeftToRight) {
		fmt.Printf("%s: (%.0f, %.0f)\n", n.ID, n.Position.X, n.Position.Y)
	}
	// Output:
	// trigger: (20, 20)
	// fetch: (320, 20)
	// notify: (620, 20)
}

func ExampleParseDirection() {
	dir, err := layout.ParseDirection("tb")
	fmt.Println(dir, err)

	_, err = layout.ParseDirection("sideways")
	fmt.Println(err != nil)
	// Output:
	// TB <nil>
	// true
}
