// Package depgraph records which units reference which during a build.
//
// Unlike a layered DAG, a unit graph may contain cycles: two units in the
// same namespace routinely refer to each other. The graph keeps insertion
// order for nodes and edges, which follows discovery order. [Graph.Sorted]
// and [Graph.SortedEdges] give an order that depends only on the graph's
// contents.
package depgraph

import (
	"errors"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Metadata stores arbitrary key-value pairs attached to nodes.
// Metadata maps are never nil once a node is in a graph.
type Metadata map[string]any

// Node is a unit in the graph.
type Node struct {
	ID   string   // Fully-qualified unit name
	Meta Metadata // e.g. "root", "kind", "entry"
}

// Edge is a reference From one unit To another.
type Edge struct {
	From string
	To   string
}

// Graph is a directed graph of units. The zero value is not usable; use New.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	edgeSet  map[Edge]bool
	outgoing map[string][]string
	incoming map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edgeSet:  make(map[Edge]bool),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node. Its Meta is initialized if nil.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// EnsureNode returns the node with id, adding an empty one if needed.
func (g *Graph) EnsureNode(id string) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	_ = g.AddNode(Node{ID: id})
	return g.nodes[id]
}

// AddEdge adds a directed edge between two existing nodes. Adding an edge
// that already exists is a no-op.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if g.edgeSet[e] {
		return nil
	}
	g.edgeSet[e] = true
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// IDs returns all node IDs in insertion order.
func (g *Graph) IDs() []string { return slices.Clone(g.order) }

// Sorted returns all node IDs in lexical order. Unlike [Graph.IDs] the
// result does not depend on the order in which discovery reached each unit.
func (g *Graph) Sorted() []string {
	ids := slices.Clone(g.order)
	slices.Sort(ids)
	return ids
}

// SortedEdges returns all edges ordered by From, then To.
func (g *Graph) SortedEdges() []Edge {
	edges := slices.Clone(g.edges)
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})
	return edges
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the IDs this node references. Read-only view.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs that reference this node. Read-only view.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// Sources returns nodes nothing references, in insertion order.
func (g *Graph) Sources() []*Node {
	var out []*Node
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			out = append(out, g.nodes[id])
		}
	}
	return out
}

// Sinks returns nodes that reference nothing, in insertion order.
func (g *Graph) Sinks() []*Node {
	var out []*Node
	for _, id := range g.order {
		if len(g.outgoing[id]) == 0 {
			out = append(out, g.nodes[id])
		}
	}
	return out
}
