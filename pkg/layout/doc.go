// Package layout computes layered placements for behaviour graphs.
//
// Auto layout treats a canvas as a directed graph from emitting nodes to
// receiving ones and places it in columns:
//
//  1. [BreakCycles] removes DFS back edges, since behaviour graphs may loop
//  2. [AssignLayers] puts every node one column right of its deepest parent
//  3. [Order] sorts each column by barycenter sweeps, keeping the ordering
//     with the fewest crossings as measured by [CountCrossings]
//
// The package knows nothing about canvases; nodes are plain string ids.
//
// # Usage
//
//	g := layout.New()
//	g.AddNode("a")
//	g.AddNode("b")
//	g.AddEdge("a", "b")
//	layout.BreakCycles(g)
//	cols := layout.Order(g, layout.AssignLayers(g), 4)
package layout
