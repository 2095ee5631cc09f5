package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/sourcepath/pkg/depgraph"
)

type graphJSON struct {
	Nodes  []nodeJSON `json:"nodes"`
	Edges  []edgeJSON `json:"edges"`
	Cycles [][]string `json:"cycles,omitempty"`
}

type nodeJSON struct {
	ID   string            `json:"id"`
	Meta depgraph.Metadata `json:"meta,omitempty"`
}

type edgeJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes g as indented JSON and writes it to w.
// Nodes and edges are sorted by ID so that two builds of the same sources
// produce identical files.
func WriteJSON(g *depgraph.Graph, w io.Writer) error {
	ids, edges := g.Sorted(), g.SortedEdges()
	out := graphJSON{
		Nodes:  make([]nodeJSON, len(ids)),
		Edges:  make([]edgeJSON, len(edges)),
		Cycles: g.Cycles(),
	}
	for i, id := range ids {
		n, _ := g.Node(id)
		out.Nodes[i] = nodeJSON{ID: n.ID, Meta: n.Meta}
	}
	for i, e := range edges {
		out.Edges[i] = edgeJSON{From: e.From, To: e.To}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *depgraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
