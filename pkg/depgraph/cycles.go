package depgraph

import (
	"slices"
	"strings"
)

// Cycles returns the strongly connected components that form cycles:
// components with more than one node, or a single node referencing itself.
// Each component's IDs are sorted; components are ordered by their first ID.
func (g *Graph) Cycles() [][]string {
	t := &tarjan{
		g:       g,
		index:   make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
	}
	for _, id := range g.order {
		if _, seen := t.index[id]; !seen {
			t.connect(id)
		}
	}

	var cycles [][]string
	for _, scc := range t.sccs {
		if len(scc) > 1 || slices.Contains(g.outgoing[scc[0]], scc[0]) {
			slices.Sort(scc)
			cycles = append(cycles, scc)
		}
	}
	slices.SortFunc(cycles, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})
	return cycles
}

// HasCycle reports whether any unit transitively references itself.
func (g *Graph) HasCycle() bool { return len(g.Cycles()) > 0 }

type tarjan struct {
	g       *Graph
	next    int
	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	sccs    [][]string
}

func (t *tarjan) connect(v string) {
	t.index[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.outgoing[v] {
		if _, seen := t.index[w]; !seen {
			t.connect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []string
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
