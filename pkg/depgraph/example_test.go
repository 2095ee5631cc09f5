package depgraph_test

import (
	"fmt"

	"github.com/matzehuels/sourcepath/pkg/depgraph"
)

func ExampleGraph() {
	g := depgraph.New()
	for _, id := range []string{"app.Main", "app.Helper", "lib.Util"} {
		_ = g.AddNode(depgraph.Node{ID: id})
	}
	_ = g.AddEdge(depgraph.Edge{From: "app.Main", To: "app.Helper"})
	_ = g.AddEdge(depgraph.Edge{From: "app.Helper", To: "app.Main"})
	_ = g.AddEdge(depgraph.Edge{From: "app.Helper", To: "lib.Util"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Children of app.Helper:", g.Children("app.Helper"))
	fmt.Println("Cycles:", g.Cycles())
	// Output:
	// Nodes: 3
	// Children of app.Helper: [app.Main lib.Util]
	// Cycles: [[app.Helper app.Main]]
}
