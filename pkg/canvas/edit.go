package canvas

import (
	"slices"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/value"
)

// AddPortal adds a portal to a Generic, AssetRef or ScriptRef node and
// marks the node dirty.
func (c *Canvas) AddPortal(id NodeID, spec PortalSpec) error {
	if err := c.mutable(); err != nil {
		return err
	}
	n, err := c.node(id)
	if err != nil {
		return err
	}
	if !n.ownsPortals() {
		return errors.Wrap(errors.ErrCodeInvalidInput, ErrReadOnly, "%s nodes have fixed portals", n.variant.Type())
	}
	if err := errors.ValidatePortalName(spec.Name); err != nil {
		return err
	}
	if n.portalIndex(spec.Name) >= 0 {
		return errors.Wrap(errors.ErrCodeDuplicatePortal, ErrDuplicatePortal, "portal %q on %s", spec.Name, id)
	}
	p, err := NewPortal(spec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "add portal to %s", id)
	}
	n.portals = append(n.portals, p)
	c.touched(n)
	return nil
}

// RemovePortal removes a portal and every link attached to it, and marks
// the node dirty. It returns the removed links.
func (c *Canvas) RemovePortal(ref PortalRef) ([]LinkID, error) {
	if err := c.mutable(); err != nil {
		return nil, err
	}
	n, p, err := c.ownPortal(ref)
	if err != nil {
		return nil, err
	}
	if !n.ownsPortals() {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, ErrReadOnly, "%s nodes have fixed portals", n.variant.Type())
	}
	removed := p.Links()
	for _, l := range removed {
		c.disconnect(l)
	}
	i := n.portalIndex(p.name)
	n.portals = slices.Delete(n.portals, i, i+1)
	c.touched(n)
	return removed, nil
}

// EditPortal replaces a portal's name, kind, data type and value in place.
// Renaming keeps attached links. Every attached link that is no longer a
// legal pair after the edit is disconnected; the removed links are
// returned.
func (c *Canvas) EditPortal(ref PortalRef, spec PortalSpec) ([]LinkID, error) {
	if err := c.mutable(); err != nil {
		return nil, err
	}
	n, p, err := c.ownPortal(ref)
	if err != nil {
		return nil, err
	}
	if !n.ownsPortals() {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, ErrReadOnly, "%s nodes have fixed portals", n.variant.Type())
	}
	if err := errors.ValidatePortalName(spec.Name); err != nil {
		return nil, err
	}
	if spec.Name != p.name && n.portalIndex(spec.Name) >= 0 {
		return nil, errors.Wrap(errors.ErrCodeDuplicatePortal, ErrDuplicatePortal, "portal %q on %s", spec.Name, n.id)
	}
	next, err := NewPortal(spec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edit portal %s", ref)
	}
	c.renamePortal(n, p, spec.Name)
	p.kind, p.dataType, p.value, p.custom = next.kind, next.dataType, next.value, next.custom
	removed := c.revalidate(p)
	c.touched(n)
	return removed, nil
}

// SetPortalValue replaces the value of a portal on any node that owns
// portals, including instances and proxies.
func (c *Canvas) SetPortalValue(ref PortalRef, v any) error {
	if err := c.mutable(); err != nil {
		return err
	}
	_, p, err := c.ownPortal(ref)
	if err != nil {
		return err
	}
	nv, err := value.Normalize(p.dataType, v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "portal %s", ref)
	}
	p.value = nv
	c.recomputeRefs()
	return nil
}

// EditProxy renames a portal proxy or changes the kind and data type it
// exposes. The exposed name must stay unique among the canvas's proxies.
// Links that become illegal are disconnected and returned.
func (c *Canvas) EditProxy(id NodeID, name string, exposed PortalKind, dt value.DataType) ([]LinkID, error) {
	if err := c.mutable(); err != nil {
		return nil, err
	}
	n, err := c.node(id)
	if err != nil {
		return nil, err
	}
	if _, ok := n.variant.(PortalProxy); !ok || len(n.portals) != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node %s is not a portal proxy", id)
	}
	p := n.portals[0]
	v := PortalProxy{Exposed: exposed, DataType: dt}
	initial := p.Value()
	if dt != p.dataType {
		initial = nil
	}
	next, err := c.proxyPortals(name, v, initial, id)
	if err != nil {
		return nil, err
	}
	c.renamePortal(n, p, name)
	n.name = name
	n.variant = v
	p.kind, p.dataType, p.value = next[0].kind, next[0].dataType, next[0].value
	removed := c.revalidate(p)
	c.touched(n)
	return removed, nil
}

// RefreshInstance rebuilds an instance's portals from the referenced
// container's current interface. Values and links survive for portals whose
// name is still exposed; links that no longer fit are disconnected and
// returned.
func (c *Canvas) RefreshInstance(id NodeID) ([]LinkID, error) {
	if err := c.mutable(); err != nil {
		return nil, err
	}
	n, err := c.node(id)
	if err != nil {
		return nil, err
	}
	in, ok := n.variant.(Instance)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node %s is not an instance", id)
	}
	if c.env.Containers == nil {
		return nil, nil
	}
	saved := make([]PortalSpec, len(n.portals))
	for i, p := range n.portals {
		saved[i] = p.Spec()
	}
	next, err := c.instancePortals(in.ContainerID, saved)
	if err != nil {
		return nil, err
	}
	var removed []LinkID
	for _, old := range n.portals {
		i := -1
		for j, p := range next {
			if p.name == old.name {
				i = j
			}
		}
		if i < 0 {
			for _, l := range old.links {
				c.disconnect(l)
				removed = append(removed, l)
			}
			continue
		}
		next[i].links = old.links
	}
	n.portals = next
	for _, p := range next {
		removed = append(removed, c.revalidate(p)...)
	}
	c.touched(n)
	return removed, nil
}

// RecomputeDimensions sizes a node from its portals and marks it clean.
func (c *Canvas) RecomputeDimensions(id NodeID) error {
	n, err := c.node(id)
	if err != nil {
		return err
	}
	c.measure(n)
	return nil
}

// RecomputeAll sizes every dirty node.
func (c *Canvas) RecomputeAll() {
	c.nodes.each(func(_, _ uint32, n *Node) {
		if n.Dirty() {
			c.measure(n)
		}
	})
}

// ownPortal resolves a reference on a node that owns the portal itself.
// Portals seen through a shortcut are read-only.
func (c *Canvas) ownPortal(ref PortalRef) (*Node, *Portal, error) {
	n, err := c.node(ref.Node)
	if err != nil {
		return nil, nil, err
	}
	if n.isShortcut() {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, ErrReadOnly, "portals of shortcut %s", ref.Node)
	}
	p, ok := n.Portal(ref.Name)
	if !ok {
		return nil, nil, errors.Wrap(errors.ErrCodeNotFound, ErrUnknownPortal, "portal %s", ref)
	}
	return n, p, nil
}

// renamePortal renames p and rewrites the endpoints of its links, including
// those drawn on shortcuts of n.
func (c *Canvas) renamePortal(n *Node, p *Portal, name string) {
	if p.name == name {
		return
	}
	for _, id := range p.links {
		l, ok := c.links.get(id.index, id.gen)
		if !ok {
			continue
		}
		for _, ref := range []*PortalRef{&l.start, &l.end} {
			if ref.Name != p.name {
				continue
			}
			if o, err := c.owner(ref.Node); err == nil && o == n {
				ref.Name = name
			}
		}
	}
	p.name = name
}

// touched marks a node and its shortcuts dirty after a portal change and
// refreshes the reference cache.
func (c *Canvas) touched(n *Node) {
	n.markDirty()
	c.markShortcutsDirty(n.id)
	c.recomputeRefs()
}
