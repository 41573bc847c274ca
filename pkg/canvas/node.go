package canvas

import (
	"slices"

	"github.com/matzehuels/behave/pkg/token"
	"github.com/matzehuels/behave/pkg/value"
)

// Variant is the closed set of node kinds. Every variant is a plain value
// type defined in this package; code that needs variant-specific behavior
// switches on the concrete type.
type Variant interface {
	// Type returns the token type tag of the variant.
	Type() string
	variant()
}

// Generic is a node instantiated from a behaviour template.
type Generic struct {
	Template string
}

// AssetRef is a node that references one asset by shallow id.
type AssetRef struct {
	AssetID int
}

// ScriptRef is a node backed by a server-stored script body. A zero
// ShallowID means the script record has not been provisioned yet.
type ScriptRef struct {
	ShallowID int
}

// Instance is a sub-graph call into another container. Its portals mirror
// the proxies of the referenced container.
type Instance struct {
	ContainerID string
}

// PortalProxy exposes one container-level portal. Exposed is the kind seen
// from outside the container; inside the canvas the proxy owns a single
// portal of the mirrored kind named after the node.
type PortalProxy struct {
	Exposed  PortalKind
	DataType value.DataType
}

// Comment is a free text annotation. Comments own no portals and take no
// part in layout.
type Comment struct {
	Text string
}

// Shortcut is a visual alias of another node. It owns no portals; links
// drawn on a shortcut attach to the target's portals.
type Shortcut struct {
	Target NodeID
}

func (Generic) Type() string     { return token.TypeBehaviour }
func (AssetRef) Type() string    { return token.TypeAsset }
func (ScriptRef) Type() string   { return token.TypeScript }
func (Instance) Type() string    { return token.TypeInstance }
func (PortalProxy) Type() string { return token.TypePortal }
func (Comment) Type() string     { return token.TypeComment }
func (Shortcut) Type() string    { return token.TypeShortcut }

func (Generic) variant()     {}
func (AssetRef) variant()    {}
func (ScriptRef) variant()   {}
func (Instance) variant()    {}
func (PortalProxy) variant() {}
func (Comment) variant()     {}
func (Shortcut) variant()    {}

// NodeState tracks how far a node has been built.
type NodeState int

const (
	// Constructed nodes have an identity but no portals yet.
	Constructed NodeState = iota
	// PortalsBuilt nodes have their portals but stale dimensions.
	PortalsBuilt
	// Dimensioned nodes have dimensions matching their portals.
	Dimensioned
)

func (s NodeState) String() string {
	switch s {
	case Constructed:
		return "constructed"
	case PortalsBuilt:
		return "portals-built"
	case Dimensioned:
		return "dimensioned"
	default:
		return "unknown"
	}
}

// Node is one behaviour on a canvas. Nodes are owned by their canvas and are
// only mutated through it.
type Node struct {
	id      NodeID
	uid     string
	variant Variant

	name  string
	alias string

	left, top float64
	zIndex    int

	portals []*Portal

	width, height float64
	state         NodeState
}

func (n *Node) ID() NodeID                   { return n.id }
func (n *Node) Variant() Variant             { return n.variant }
func (n *Node) Name() string                 { return n.name }
func (n *Node) Alias() string                { return n.alias }
func (n *Node) ZIndex() int                  { return n.zIndex }
func (n *Node) State() NodeState             { return n.state }
func (n *Node) Position() (float64, float64) { return n.left, n.top }
func (n *Node) Size() (float64, float64)     { return n.width, n.height }

// UID is the node's session id. It is regenerated every time a canvas is
// opened and is used as the item id when the canvas is serialized.
func (n *Node) UID() string { return n.uid }

// Dirty reports whether the node's dimensions are stale.
func (n *Node) Dirty() bool { return n.state != Dimensioned }

// Portals returns the node's own portals in order. Shortcuts and comments
// have none; use [Canvas.PortalsOf] to see a shortcut's target portals.
func (n *Node) Portals() []*Portal { return slices.Clone(n.portals) }

// Portal returns the node's portal with the given name.
func (n *Node) Portal(name string) (*Portal, bool) {
	i := n.portalIndex(name)
	if i < 0 {
		return nil, false
	}
	return n.portals[i], true
}

// PortalsOfKind returns the node's portals of kind k in order.
func (n *Node) PortalsOfKind(k PortalKind) []*Portal {
	var out []*Portal
	for _, p := range n.portals {
		if p.kind == k {
			out = append(out, p)
		}
	}
	return out
}

func (n *Node) portalIndex(name string) int {
	return slices.IndexFunc(n.portals, func(p *Portal) bool { return p.name == name })
}

// ownsPortals reports whether users may add and remove portals on the node.
func (n *Node) ownsPortals() bool {
	switch n.variant.(type) {
	case Generic, AssetRef, ScriptRef:
		return true
	default:
		return false
	}
}

func (n *Node) markDirty() {
	if _, ok := n.variant.(Comment); ok {
		return
	}
	if n.state > PortalsBuilt {
		n.state = PortalsBuilt
	}
}

func (n *Node) isShortcut() bool {
	_, ok := n.variant.(Shortcut)
	return ok
}

func (n *Node) isComment() bool {
	_, ok := n.variant.(Comment)
	return ok
}
