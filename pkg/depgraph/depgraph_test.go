package depgraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func build(t *testing.T, ids []string, edges [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, id := range ids {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%v): %v", e, err)
		}
	}
	return g
}

func TestAddNodeErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); err != ErrInvalidNodeID {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddNode(Node{ID: "a"}); err != ErrDuplicateNodeID {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
	if n, _ := g.Node("a"); n.Meta == nil {
		t.Error("Meta should be initialized")
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := build(t, []string{"a"}, nil)
	if err := g.AddEdge(Edge{From: "x", To: "a"}); err != ErrUnknownSourceNode {
		t.Errorf("AddEdge unknown from = %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); err != ErrUnknownTargetNode {
		t.Errorf("AddEdge unknown to = %v", err)
	}
}

func TestAddEdgeDeduplicates(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "b"}})
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if diff := cmp.Diff([]string{"b"}, g.Children("a")); diff != "" {
		t.Errorf("Children mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureNode(t *testing.T) {
	g := New()
	n1 := g.EnsureNode("a")
	n1.Meta["k"] = "v"
	n2 := g.EnsureNode("a")
	if n2.Meta["k"] != "v" || g.NodeCount() != 1 {
		t.Error("EnsureNode should return the existing node")
	}
}

func TestSourcesSinks(t *testing.T) {
	g := build(t, []string{"app", "lib", "core"}, [][2]string{{"app", "lib"}, {"lib", "core"}})

	var sources, sinks []string
	for _, n := range g.Sources() {
		sources = append(sources, n.ID)
	}
	for _, n := range g.Sinks() {
		sinks = append(sinks, n.ID)
	}
	if diff := cmp.Diff([]string{"app"}, sources); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"core"}, sinks); diff != "" {
		t.Errorf("Sinks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"app"}, g.Parents("lib")); diff != "" {
		t.Errorf("Parents mismatch (-want +got):\n%s", diff)
	}
}

func TestCycles(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  [][]string
	}{
		{
			name:  "acyclic",
			ids:   []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  nil,
		},
		{
			name:  "mutual reference",
			ids:   []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "a"}, {"b", "c"}},
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "self reference",
			ids:   []string{"a"},
			edges: [][2]string{{"a", "a"}},
			want:  [][]string{{"a"}},
		},
		{
			name:  "two cycles",
			ids:   []string{"x", "y", "a", "b", "c"},
			edges: [][2]string{{"x", "y"}, {"y", "x"}, {"a", "b"}, {"b", "c"}, {"c", "a"}},
			want:  [][]string{{"a", "b", "c"}, {"x", "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.ids, tt.edges)
			if diff := cmp.Diff(tt.want, g.Cycles()); diff != "" {
				t.Errorf("Cycles mismatch (-want +got):\n%s", diff)
			}
			if g.HasCycle() != (tt.want != nil) {
				t.Errorf("HasCycle = %v", g.HasCycle())
			}
		})
	}
}

func TestSorted(t *testing.T) {
	g := build(t, []string{"b.Main", "a.Util", "b.Helper"}, [][2]string{
		{"b.Main", "b.Helper"},
		{"b.Main", "a.Util"},
		{"a.Util", "b.Helper"},
	})

	if diff := cmp.Diff([]string{"a.Util", "b.Helper", "b.Main"}, g.Sorted()); diff != "" {
		t.Errorf("Sorted mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b.Main", "a.Util", "b.Helper"}, g.IDs()); diff != "" {
		t.Errorf("IDs should keep insertion order (-want +got):\n%s", diff)
	}
	want := []Edge{
		{From: "a.Util", To: "b.Helper"},
		{From: "b.Main", To: "a.Util"},
		{From: "b.Main", To: "b.Helper"},
	}
	if diff := cmp.Diff(want, g.SortedEdges()); diff != "" {
		t.Errorf("SortedEdges mismatch (-want +got):\n%s", diff)
	}
}
