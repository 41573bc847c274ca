// Package canvas implements the live behaviour graph of one container.
//
// A [Canvas] holds nodes and the links between their portals. Every node is
// one of a closed set of variants:
//
//   - [Generic]: a node instantiated from a behaviour template
//   - [AssetRef]: a node referencing one asset
//   - [ScriptRef]: a node backed by a server-stored script
//   - [Instance]: a call into another container's graph
//   - [PortalProxy]: a container-level portal seen from inside the canvas
//   - [Comment]: free text, no portals
//   - [Shortcut]: an alias that shows another node's portals
//
// # Portals and links
//
// A [Portal] is Parameter, Product, Input or Output. Outputs and products
// emit; inputs and parameters receive. Output to Input links carry control
// flow with a frame delay; Product to Parameter links carry values and need
// matching data types, an Object target, or a registered converter
// (see [CanLink]).
//
// Links are drawn with an explicit two step protocol:
//
//	h, _ := c.BeginLink(canvas.PortalRef{Node: x, Name: "Exit"})
//	id, err := c.CompleteLink(h, canvas.PortalRef{Node: y, Name: "Enter"})
//
// or directly with [Canvas.Connect]. Editing a portal so that an attached
// link becomes illegal disconnects that link; the removed ids are returned.
//
// # Identity
//
// Nodes and links are addressed by generation-stamped ids ([NodeID],
// [LinkID]). Ids of removed nodes stop resolving and report STALE_HANDLE
// instead of reaching a recycled slot.
//
// # Serialization
//
// [Canvas.Build] produces a [token.CanvasToken]; [Canvas.Open] rebuilds a
// canvas from one. Items that cannot be rebuilt are skipped and reported as
// [Diagnostic]s, never as errors, so a damaged token still loads as much as
// it can.
//
// # Capabilities
//
// A canvas reaches assets, groups, converters, other containers and the
// script store only through the [Env] it was created with.
package canvas
