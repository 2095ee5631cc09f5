package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sourcepath/pkg/depgraph"
)

// Options configures DOT output.
type Options struct {
	// Detailed includes node metadata in labels.
	// When false, only the unit name is shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format.
// Nodes and edges are written in insertion order, so output is stable for a
// given discovery order.
func ToDOT(g *depgraph.Graph, opts Options) string {
	cyclic := cycleMembers(g)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [color=\"#555555\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(*n, fmtLabel(*n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if inSameCycle(cyclic, e.From, e.To) {
			fmt.Fprintf(&buf, "  %q -> %q [color=red];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// cycleMembers maps each node in a cycle to the index of its cycle.
func cycleMembers(g *depgraph.Graph) map[string]int {
	m := make(map[string]int)
	for i, c := range g.Cycles() {
		for _, id := range c {
			m[id] = i
		}
	}
	return m
}

func inSameCycle(cyclic map[string]int, a, b string) bool {
	ca, okA := cyclic[a]
	cb, okB := cyclic[b]
	return okA && okB && ca == cb
}

func fmtLabel(n depgraph.Node, detailed bool) string {
	if !detailed || len(n.Meta) == 0 {
		return n.ID
	}
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n depgraph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if pre, _ := n.Meta["precompiled"].(bool); pre {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
