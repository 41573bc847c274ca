// Package render draws a canvas as a Graphviz diagram for inspection.
//
// # Overview
//
// Nodes become record-shaped boxes with their receiving portals (inputs,
// parameters) on the left and emitting portals (outputs, products) on the
// right. Links connect the portal cells they were drawn between:
//
//   - Output -> Input links are solid; a frame delay other than the default
//     is shown as the edge label
//   - Product -> Parameter links are dashed
//
// Portal proxies are drawn as ellipses named after the portal they expose,
// comments as notes, and shortcuts as dotted boxes tied to their target with
// a dotted, unconstrained edge.
//
// # Usage
//
//	dot := render.ToDOT(cv, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: portal cells include the portal's data type
//   - Pinned: nodes keep their canvas positions instead of being laid out
//     by Graphviz
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package render
