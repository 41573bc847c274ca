package canvas

import (
	"context"
	"maps"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/value"
)

var (
	// ErrUnknownNode is returned when a NodeID does not resolve, either
	// because it was never issued by this canvas or because the node has
	// been removed since.
	ErrUnknownNode = errors.New(errors.ErrCodeStaleHandle, "unknown node")

	// ErrUnknownLink is returned when a LinkID does not resolve.
	ErrUnknownLink = errors.New(errors.ErrCodeStaleHandle, "unknown link")

	// ErrUnknownPortal is returned when a node has no portal of the given name.
	ErrUnknownPortal = errors.New(errors.ErrCodeNotFound, "unknown portal")

	// ErrDuplicatePortal is returned when a portal name is already used on
	// the same node.
	ErrDuplicatePortal = errors.New(errors.ErrCodeDuplicatePortal, "duplicate portal name")

	// ErrDuplicateProxy is returned when a portal proxy exposes a name that
	// another proxy on the same canvas already exposes.
	ErrDuplicateProxy = errors.New(errors.ErrCodeDuplicateProxy, "duplicate portal proxy")

	// ErrIncompatibleLink is returned when two portals cannot be linked.
	ErrIncompatibleLink = errors.New(errors.ErrCodeIncompatibleLink, "incompatible portals")

	// ErrCyclicInstance is returned when an instance node would make its
	// container contain itself.
	ErrCyclicInstance = errors.New(errors.ErrCodeCyclicDependency, "cyclic instance")

	// ErrBusy is returned by every mutation while the canvas is being saved.
	ErrBusy = errors.New(errors.ErrCodeContainerBusy, "canvas is being saved")

	// ErrReadOnly is returned when a mutation targets something the node's
	// variant does not allow to change, such as the portals of a shortcut.
	ErrReadOnly = errors.New(errors.ErrCodeInvalidInput, "read-only")
)

// NodeSpec describes a node to add.
type NodeSpec struct {
	Variant Variant
	Name    string
	Alias   string
	Left    float64
	Top     float64

	// Portals are the template portals of Generic, AssetRef and ScriptRef
	// nodes. For Instance nodes they only carry values to keep for portals
	// the referenced container still exposes.
	Portals []PortalSpec

	// Value is the initial value of a PortalProxy.
	Value any
}

// References is the set of assets and groups reachable from a canvas,
// each sorted ascending.
type References struct {
	Assets []int
	Groups []int
}

// Canvas is the live graph of one container: its nodes, the links between
// their portals, and the derived set of referenced assets and groups.
//
// Nodes and links live in generation-stamped arenas. Portals record the ids
// of their links, so removing a node never leaves a dangling pointer: ids of
// removed nodes and links simply stop resolving.
//
// A Canvas is not safe for concurrent use. While the owning container is
// being saved, [Canvas.SetBusy] rejects every mutation with ErrBusy.
type Canvas struct {
	containerID string
	env         Env
	logger      *log.Logger

	nodes arena[Node]
	links arena[Link]

	pending    *pendingLink
	pendingSeq uint64

	refs    References
	plugins map[string]any
	busy    bool
	topZ    int
}

// New creates an empty canvas for the container with the given id.
func New(containerID string, env Env) *Canvas {
	logger := env.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Canvas{
		containerID: containerID,
		env:         env,
		logger:      logger.With("container", containerID),
		plugins:     map[string]any{},
	}
}

// ContainerID returns the id of the owning container.
func (c *Canvas) ContainerID() string { return c.containerID }

// SetBusy freezes or thaws the canvas. A busy canvas rejects mutations.
func (c *Canvas) SetBusy(busy bool) { c.busy = busy }

// Busy reports whether the canvas is frozen for a save.
func (c *Canvas) Busy() bool { return c.busy }

func (c *Canvas) mutable() error {
	if c.busy {
		return ErrBusy
	}
	return nil
}

// Plugins returns a copy of the plugin data carried by the canvas.
func (c *Canvas) Plugins() map[string]any { return maps.Clone(c.plugins) }

// SetPlugin stores plugin data under key. A nil value removes the key.
func (c *Canvas) SetPlugin(key string, v any) error {
	if err := c.mutable(); err != nil {
		return err
	}
	if v == nil {
		delete(c.plugins, key)
		return nil
	}
	c.plugins[key] = v
	return nil
}

// =============================================================================
// Lookup
// =============================================================================

func (c *Canvas) node(id NodeID) (*Node, error) {
	n, ok := c.nodes.get(id.index, id.gen)
	if !ok {
		return nil, errors.Wrap(errors.ErrCodeStaleHandle, ErrUnknownNode, "node %s", id)
	}
	return n, nil
}

// Node returns the node with the given id.
func (c *Canvas) Node(id NodeID) (*Node, error) { return c.node(id) }

// NodeByUID returns the node with the given session id.
func (c *Canvas) NodeByUID(uid string) (*Node, bool) {
	var found *Node
	c.nodes.each(func(_, _ uint32, n *Node) {
		if found == nil && n.uid == uid {
			found = n
		}
	})
	return found, found != nil
}

// Nodes returns every node in creation-slot order.
func (c *Canvas) Nodes() []*Node {
	out := make([]*Node, 0, c.nodes.len())
	c.nodes.each(func(_, _ uint32, n *Node) { out = append(out, n) })
	return out
}

// Len returns the number of nodes.
func (c *Canvas) Len() int { return c.nodes.len() }

// owner returns the node that owns the portals visible on id: the node
// itself, or the target of a shortcut.
func (c *Canvas) owner(id NodeID) (*Node, error) {
	n, err := c.node(id)
	if err != nil {
		return nil, err
	}
	if sc, ok := n.variant.(Shortcut); ok {
		return c.node(sc.Target)
	}
	return n, nil
}

// resolve returns the owning node and portal a reference points at.
func (c *Canvas) resolve(ref PortalRef) (*Node, *Portal, error) {
	n, err := c.owner(ref.Node)
	if err != nil {
		return nil, nil, err
	}
	p, ok := n.Portal(ref.Name)
	if !ok {
		return nil, nil, errors.Wrap(errors.ErrCodeNotFound, ErrUnknownPortal, "portal %s", ref)
	}
	return n, p, nil
}

// PortalsOf returns the portals visible on a node. For a shortcut these are
// the target's portals.
func (c *Canvas) PortalsOf(id NodeID) ([]*Portal, error) {
	n, err := c.owner(id)
	if err != nil {
		return nil, err
	}
	return n.Portals(), nil
}

// Portal returns the portal a reference points at.
func (c *Canvas) Portal(ref PortalRef) (*Portal, error) {
	_, p, err := c.resolve(ref)
	return p, err
}

// shortcutsOf returns the shortcuts that target id.
func (c *Canvas) shortcutsOf(id NodeID) []NodeID {
	var out []NodeID
	c.nodes.each(func(_, _ uint32, n *Node) {
		if sc, ok := n.variant.(Shortcut); ok && sc.Target == id {
			out = append(out, n.id)
		}
	})
	return out
}

// DisplayName returns the label the editor shows for a node. An alias
// always wins; otherwise instances show the referenced container's current
// name, asset nodes the asset's name and shortcuts their target's label.
func (c *Canvas) DisplayName(id NodeID) string {
	n, err := c.node(id)
	if err != nil {
		return ""
	}
	if n.alias != "" {
		return n.alias
	}
	switch v := n.variant.(type) {
	case Instance:
		if c.env.Containers != nil {
			if name, ok := c.env.Containers.ContainerName(v.ContainerID); ok {
				return name
			}
		}
		return v.ContainerID
	case AssetRef:
		if c.env.Assets != nil {
			if a, ok := c.env.Assets.Asset(v.AssetID); ok && a.Name != "" {
				return a.Name
			}
		}
	case Shortcut:
		return c.DisplayName(v.Target)
	case Generic:
		if n.name == "" {
			return v.Template
		}
	}
	return n.name
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode validates spec and adds the node. Validation is complete before
// anything is inserted, so a refused node leaves the canvas unchanged.
//
// Instance nodes are refused with a CYCLIC_DEPENDENCY error when the
// referenced container already contains, directly or transitively, the
// container owning this canvas.
func (c *Canvas) AddNode(spec NodeSpec) (NodeID, error) {
	if err := c.mutable(); err != nil {
		return NodeID{}, err
	}
	if a, ok := spec.Variant.(AssetRef); ok && c.env.Assets != nil {
		if _, found := c.env.Assets.Asset(a.AssetID); !found {
			return NodeID{}, errors.New(errors.ErrCodeNotFound, "asset %d not found", a.AssetID)
		}
	}
	n, err := c.addNode(spec)
	if err != nil {
		return NodeID{}, err
	}
	c.recomputeRefs()
	c.logger.Debug("node added", "node", n.id, "type", n.variant.Type())
	return n.id, nil
}

// addNode builds and inserts a node without recomputing references.
func (c *Canvas) addNode(spec NodeSpec) (*Node, error) {
	n := &Node{
		variant: spec.Variant,
		name:    spec.Name,
		alias:   spec.Alias,
		left:    spec.Left,
		top:     spec.Top,
		state:   Constructed,
	}
	var err error
	switch v := spec.Variant.(type) {
	case Generic, AssetRef, ScriptRef:
		n.portals, err = buildPortals(spec.Portals)
	case Instance:
		n.portals, err = c.instancePortals(v.ContainerID, spec.Portals)
	case PortalProxy:
		n.portals, err = c.proxyPortals(spec.Name, v, spec.Value, NodeID{})
	case Comment:
		n.width, n.height = commentWidth, commentHeight
		n.state = Dimensioned
	case Shortcut:
		err = c.checkShortcutTarget(v.Target)
	case nil:
		err = errors.New(errors.ErrCodeInvalidInput, "node has no variant")
	default:
		err = errors.New(errors.ErrCodeUnsupported, "unsupported variant %T", v)
	}
	if err != nil {
		return nil, err
	}
	if n.state == Constructed {
		n.state = PortalsBuilt
	}
	c.topZ++
	n.zIndex = c.topZ
	n.uid = uuid.NewString()
	idx, gen := c.nodes.insert(n)
	n.id = NodeID{index: idx, gen: gen}
	return n, nil
}

func buildPortals(specs []PortalSpec) ([]*Portal, error) {
	out := make([]*Portal, 0, len(specs))
	for _, s := range specs {
		if err := errors.ValidatePortalName(s.Name); err != nil {
			return nil, err
		}
		if slices.ContainsFunc(out, func(p *Portal) bool { return p.name == s.Name }) {
			return nil, errors.Wrap(errors.ErrCodeDuplicatePortal, ErrDuplicatePortal, "portal %q", s.Name)
		}
		p, err := NewPortal(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "portal %q", s.Name)
		}
		out = append(out, p)
	}
	return out, nil
}

// instancePortals builds the portals of an instance of container id. Saved
// values are kept for portals whose name and data type still match.
func (c *Canvas) instancePortals(id string, saved []PortalSpec) ([]*Portal, error) {
	if id == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "instance has no container")
	}
	if err := c.env.checkInstance(c.containerID, id); err != nil {
		return nil, err
	}
	if c.env.Containers == nil {
		return buildPortals(saved)
	}
	specs, ok := c.env.Containers.ContainerInterface(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "container %s not found", id)
	}
	specs = slices.Clone(specs)
	for i := range specs {
		specs[i].Custom = false
		for _, s := range saved {
			if s.Name == specs[i].Name && s.DataType == specs[i].DataType && s.Value != nil {
				specs[i].Value = s.Value
			}
		}
	}
	return buildPortals(specs)
}

// proxyPortals builds the single internal portal of a proxy. self is the
// proxy being edited, if any, and is skipped by the uniqueness check.
func (c *Canvas) proxyPortals(name string, v PortalProxy, initial any, self NodeID) ([]*Portal, error) {
	if err := errors.ValidatePortalName(name); err != nil {
		return nil, err
	}
	if _, err := ParsePortalKind(string(v.Exposed)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "portal proxy %q", name)
	}
	if c.proxyNamed(name, self) {
		return nil, errors.Wrap(errors.ErrCodeDuplicateProxy, ErrDuplicateProxy, "portal proxy %q", name)
	}
	p, err := NewPortal(PortalSpec{Name: name, Kind: v.Exposed.Mirror(), DataType: v.DataType, Value: initial})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "portal proxy %q", name)
	}
	return []*Portal{p}, nil
}

func (c *Canvas) proxyNamed(name string, except NodeID) bool {
	found := false
	c.nodes.each(func(_, _ uint32, n *Node) {
		if _, ok := n.variant.(PortalProxy); ok && n.name == name && n.id != except {
			found = true
		}
	})
	return found
}

func (c *Canvas) checkShortcutTarget(id NodeID) error {
	t, err := c.node(id)
	if err != nil {
		return err
	}
	switch t.variant.(type) {
	case Shortcut, Comment:
		return errors.New(errors.ErrCodeInvalidInput, "shortcut target %s is a %s", id, t.variant.Type())
	}
	return nil
}

// RemoveNode removes a node. Every shortcut pointing at it is removed
// first, then every link attached to its portals. A pending link started
// on the node is cancelled. Removing a provisioned script node also deletes
// its script record; a failure there is logged and does not stop the
// removal.
func (c *Canvas) RemoveNode(ctx context.Context, id NodeID) error {
	if err := c.mutable(); err != nil {
		return err
	}
	if err := c.removeNode(ctx, id); err != nil {
		return err
	}
	c.recomputeRefs()
	return nil
}

func (c *Canvas) removeNode(ctx context.Context, id NodeID) error {
	n, err := c.node(id)
	if err != nil {
		return err
	}
	c.dropNode(n)
	if s, ok := n.variant.(ScriptRef); ok && s.ShallowID != 0 && c.env.Scripts != nil {
		if err := c.env.Scripts.DeleteScript(ctx, s.ShallowID); err != nil {
			c.logger.Warn("delete script record", "node", id, "script", s.ShallowID, "err", err)
		}
	}
	return nil
}

// dropNode takes n out of the canvas together with its shortcuts, its links
// and a pending link started on it. Script records are left alone.
func (c *Canvas) dropNode(n *Node) {
	for _, sc := range c.shortcutsOf(n.id) {
		if s, err := c.node(sc); err == nil {
			c.dropNode(s)
		}
	}
	for _, l := range c.linksOf(n) {
		c.disconnect(l)
	}
	if c.pending != nil && c.pending.from.Node == n.id {
		c.pending = nil
	}
	n.portals = nil
	c.nodes.remove(n.id.index, n.id.gen)
	c.logger.Debug("node removed", "node", n.id, "type", n.variant.Type())
}

// linksOf returns the links attached to a node's own portals and the links
// drawn on the node when it is a shortcut.
func (c *Canvas) linksOf(n *Node) []LinkID {
	var ids []LinkID
	for _, p := range n.portals {
		ids = append(ids, p.links...)
	}
	c.links.each(func(idx, gen uint32, l *Link) {
		id := LinkID{index: idx, gen: gen}
		if (l.start.Node == n.id || l.end.Node == n.id) && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	})
	return ids
}

// MoveNode sets a node's position.
func (c *Canvas) MoveNode(id NodeID, left, top float64) error {
	if err := c.mutable(); err != nil {
		return err
	}
	n, err := c.node(id)
	if err != nil {
		return err
	}
	n.left, n.top = left, top
	return nil
}

// SetAlias sets the label shown instead of the node's own name.
func (c *Canvas) SetAlias(id NodeID, alias string) error {
	if err := c.mutable(); err != nil {
		return err
	}
	n, err := c.node(id)
	if err != nil {
		return err
	}
	n.alias = alias
	n.markDirty()
	c.markShortcutsDirty(id)
	return nil
}

// SetText replaces the text of a comment.
func (c *Canvas) SetText(id NodeID, text string) error {
	if err := c.mutable(); err != nil {
		return err
	}
	n, err := c.node(id)
	if err != nil {
		return err
	}
	if !n.isComment() {
		return errors.Wrap(errors.ErrCodeInvalidInput, ErrReadOnly, "node %s is not a comment", id)
	}
	n.variant = Comment{Text: text}
	return nil
}

func (c *Canvas) markShortcutsDirty(id NodeID) {
	for _, sc := range c.shortcutsOf(id) {
		if n, err := c.node(sc); err == nil {
			n.markDirty()
		}
	}
}

// InstanceTargets returns the container ids referenced by instance nodes,
// in slot order and without duplicates.
func (c *Canvas) InstanceTargets() []string {
	var ids []string
	c.nodes.each(func(_, _ uint32, n *Node) {
		if in, ok := n.variant.(Instance); ok && !slices.Contains(ids, in.ContainerID) {
			ids = append(ids, in.ContainerID)
		}
	})
	return ids
}

// Interface returns the portals an instance of this canvas's container
// exposes: one per portal proxy, with the proxy's exposed kind.
func (c *Canvas) Interface() []PortalSpec {
	var out []PortalSpec
	c.nodes.each(func(_, _ uint32, n *Node) {
		v, ok := n.variant.(PortalProxy)
		if !ok || len(n.portals) == 0 {
			return
		}
		out = append(out, PortalSpec{
			Name:     n.name,
			Kind:     v.Exposed,
			DataType: v.DataType,
			Value:    n.portals[0].Value(),
		})
	})
	return out
}

// References returns the assets and groups reachable from the canvas.
func (c *Canvas) References() References {
	return References{Assets: slices.Clone(c.refs.Assets), Groups: slices.Clone(c.refs.Groups)}
}

// recomputeRefs rebuilds the reference cache from every asset node and
// every reference-typed portal value.
func (c *Canvas) recomputeRefs() {
	var assets, groups []int
	c.nodes.each(func(_, _ uint32, n *Node) {
		if a, ok := n.variant.(AssetRef); ok && a.AssetID != 0 {
			assets = append(assets, a.AssetID)
		}
		for _, p := range n.portals {
			assets = append(assets, value.AssetRefs(p.dataType, p.value)...)
			groups = append(groups, value.GroupRefs(p.dataType, p.value)...)
		}
	})
	c.refs.Assets, c.refs.Groups = ResolveReferences(assets, groups, c.env.Assets, c.env.Groups)
}
