// Package render exports a discovered dependency graph for inspection.
//
// # Formats
//
//   - DOT: [ToDOT] writes Graphviz source. Precompiled units are drawn with
//     dashed grey boxes and edges inside reference cycles are drawn in red.
//   - SVG: [RenderSVG] lays out DOT source with the embedded Graphviz
//     (go-graphviz), so no external binary is needed.
//   - JSON: [WriteJSON] writes nodes with metadata and edges.
//
// # Usage
//
//	plan, err := driver.Discover(ctx, entries...)
//	dot := render.ToDOT(plan.Graph, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
package render
