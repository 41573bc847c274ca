package canvas

import (
	"context"
	"maps"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/token"
)

// Build serializes the canvas. With a subset, only those nodes and the
// links between them are emitted.
//
// Script nodes without a provisioned record are provisioned first. A node
// whose provisioning fails stays on the canvas but is left out of the token
// together with its links, and is reported as a diagnostic; the next Build
// tries again.
//
// The returned token carries the container id, items and plugin data; name
// and properties belong to the container and are filled in by its owner.
func (c *Canvas) Build(ctx context.Context, subset ...NodeID) (*token.CanvasToken, []Diagnostic) {
	var diags []Diagnostic
	include := func(*Node) bool { return true }
	if len(subset) > 0 {
		want := make(map[NodeID]bool, len(subset))
		for _, id := range subset {
			want[id] = true
		}
		include = func(n *Node) bool { return want[n.id] }
	}

	emitted := map[NodeID]bool{}
	items := []token.Item{}
	c.nodes.each(func(_, _ uint32, n *Node) {
		if !include(n) {
			return
		}
		if s, ok := n.variant.(ScriptRef); ok && s.ShallowID == 0 {
			id, err := c.env.provisionScript(ctx)
			if err != nil {
				c.diag(&diags, errors.GetCode(err), n.uid, "script not provisioned: %v", err)
				return
			}
			n.variant = ScriptRef{ShallowID: id}
			c.logger.Debug("script provisioned", "node", n.id, "script", id)
		}
		items = append(items, c.nodeItem(n))
		emitted[n.id] = true
	})

	c.links.each(func(_, _ uint32, l *Link) {
		start, okS := c.endpoint(l.start, emitted)
		end, okE := c.endpoint(l.end, emitted)
		if !okS || !okE {
			return
		}
		it := token.Item{
			ID:                   l.uid,
			Type:                 token.TypeLink,
			StartPortal:          l.start.Name,
			EndPortal:            l.end.Name,
			StartBehaviour:       start.direct,
			EndBehaviour:         end.direct,
			TargetStartBehaviour: start.target,
			TargetEndBehaviour:   end.target,
		}
		if _, p, err := c.resolve(l.start); err == nil && p.kind == Output {
			d := l.frameDelay
			it.FrameDelay = &d
		}
		items = append(items, it)
	})

	return &token.CanvasToken{
		ContainerID: c.containerID,
		Items:       items,
		Plugins:     maps.Clone(c.plugins),
	}, diags
}

type endpointIDs struct {
	direct string
	target string
}

// endpoint returns the item ids a link endpoint serializes to. An endpoint
// on a shortcut also records the shortcut's target. It reports false when
// neither the node nor its target is emitted.
func (c *Canvas) endpoint(ref PortalRef, emitted map[NodeID]bool) (endpointIDs, bool) {
	n, err := c.node(ref.Node)
	if err != nil {
		return endpointIDs{}, false
	}
	var ids endpointIDs
	ok := emitted[n.id]
	if ok {
		ids.direct = n.uid
	}
	if sc, isSC := n.variant.(Shortcut); isSC {
		if t, err := c.node(sc.Target); err == nil && emitted[t.id] {
			ids.target = t.uid
			ok = true
		}
	}
	return ids, ok
}

func (c *Canvas) nodeItem(n *Node) token.Item {
	it := token.Item{
		ID:       n.uid,
		Type:     n.variant.Type(),
		Left:     n.left,
		Top:      n.top,
		ZIndex:   n.zIndex,
		Position: "absolute",
		Name:     n.name,
		Alias:    n.alias,
	}
	switch v := n.variant.(type) {
	case Generic:
		it.Template = v.Template
	case AssetRef:
		it.AssetID = v.AssetID
	case ScriptRef:
		it.ShallowID = v.ShallowID
	case Instance:
		it.ContainerID = v.ContainerID
	case PortalProxy:
		it.PortalType = string(v.Exposed)
		it.DataType = v.DataType
		if len(n.portals) > 0 {
			it.Value = n.portals[0].Value()
		}
		return it
	case Comment:
		it.Text = v.Text
		return it
	case Shortcut:
		if t, err := c.node(v.Target); err == nil {
			it.BehaviourID = t.uid
		}
		return it
	}
	for _, p := range n.portals {
		it.Portals = append(it.Portals, token.Portal{
			Name:     p.name,
			Type:     string(p.kind),
			DataType: p.dataType,
			Value:    p.Value(),
			Custom:   p.custom,
		})
	}
	return it
}
