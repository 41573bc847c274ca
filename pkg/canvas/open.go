package canvas

import (
	"context"
	"maps"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/token"
	"github.com/matzehuels/behave/pkg/value"
)

// OpenOptions controls how a token is loaded into a canvas.
type OpenOptions struct {
	// Clear removes every existing node before loading.
	Clear bool
	// Merge imports the token's items only. Plugin data already on the
	// canvas is kept and the token's is ignored.
	Merge bool
	// Offset is added to every imported node position.
	OffsetX, OffsetY float64
}

// OpenResult lists what an Open call created and what it skipped.
type OpenResult struct {
	Nodes       []NodeID
	Links       []LinkID
	Diagnostics []Diagnostic
}

// importContext maps item ids of one token to the nodes created for them.
// It lives for a single Open call.
type importContext map[string]NodeID

// Open rebuilds nodes and links from a token.
//
// Items are processed in three passes: nodes first, then shortcuts (whose
// targets may appear anywhere in the token), then links. Items that cannot
// be rebuilt are skipped with a diagnostic and the rest of the token still
// loads: unknown type tags, a second portal proxy exposing a name already
// in use, instances of missing or cyclic containers, shortcuts whose target
// is gone, and links whose endpoint node or portal does not resolve.
//
// Node session ids are regenerated; item ids only correlate items within
// the token.
func (c *Canvas) Open(ctx context.Context, tok *token.CanvasToken, opts OpenOptions) (OpenResult, error) {
	var res OpenResult
	if err := c.mutable(); err != nil {
		return res, err
	}
	if tok == nil {
		return res, errors.New(errors.ErrCodeInvalidInput, "nil token")
	}
	if opts.Clear {
		// The token being opened may still reference the cleared scripts.
		for _, n := range c.Nodes() {
			// Shortcuts go with their targets.
			if _, err := c.node(n.id); err != nil {
				continue
			}
			c.dropNode(n)
		}
	}
	if !opts.Merge && tok.Plugins != nil {
		c.plugins = maps.Clone(tok.Plugins)
	}

	ic := importContext{}
	var shortcuts, links []token.Item
	for _, it := range tok.Items {
		switch it.Type {
		case token.TypeLink:
			links = append(links, it)
		case token.TypeShortcut:
			shortcuts = append(shortcuts, it)
		default:
			c.openNode(it, opts, ic, &res)
		}
	}
	for _, it := range shortcuts {
		target, ok := ic[it.BehaviourID]
		if !ok {
			c.diag(&res.Diagnostics, errors.ErrCodeUnresolvedReference, it.ID, "shortcut target %q not found", it.BehaviourID)
			continue
		}
		spec := c.baseSpec(it, opts)
		spec.Variant = Shortcut{Target: target}
		c.insertOpened(it, spec, ic, &res)
	}
	for _, it := range links {
		c.openLink(it, ic, &res)
	}

	for _, id := range res.Nodes {
		if n, err := c.node(id); err == nil {
			c.measure(n)
		}
	}
	c.recomputeRefs()
	c.logger.Debug("canvas opened", "nodes", len(res.Nodes), "links", len(res.Links), "skipped", len(res.Diagnostics))
	return res, nil
}

func (c *Canvas) baseSpec(it token.Item, opts OpenOptions) NodeSpec {
	return NodeSpec{
		Name:  it.Name,
		Alias: it.Alias,
		Left:  it.Left + opts.OffsetX,
		Top:   it.Top + opts.OffsetY,
	}
}

func (c *Canvas) openNode(it token.Item, opts OpenOptions, ic importContext, res *OpenResult) {
	if dt, ok := unknownDataType(it); ok {
		c.diag(&res.Diagnostics, errors.ErrCodeInvalidFormat, it.ID, "unknown data type %q", dt)
		return
	}
	spec := c.baseSpec(it, opts)
	switch it.Type {
	case token.TypeBehaviour:
		spec.Variant = Generic{Template: it.Template}
	case token.TypeAsset:
		spec.Variant = AssetRef{AssetID: it.AssetID}
		if c.env.Assets != nil {
			if _, ok := c.env.Assets.Asset(it.AssetID); !ok {
				c.diag(&res.Diagnostics, errors.ErrCodeUnresolvedReference, it.ID, "asset %d not found, node kept", it.AssetID)
			}
		}
	case token.TypeScript:
		spec.Variant = ScriptRef{ShallowID: it.ShallowID}
	case token.TypeInstance:
		spec.Variant = Instance{ContainerID: it.ContainerID}
	case token.TypePortal:
		kind, err := ParsePortalKind(it.PortalType)
		if err != nil {
			c.diag(&res.Diagnostics, errors.ErrCodeInvalidFormat, it.ID, "%v", err)
			return
		}
		if c.proxyNamed(it.Name, NodeID{}) {
			c.logger.Error("duplicate portal proxy", "item", it.ID, "name", it.Name)
			c.diag(&res.Diagnostics, errors.ErrCodeDuplicateProxy, it.ID, "portal proxy %q already exists", it.Name)
			return
		}
		spec.Variant = PortalProxy{Exposed: kind, DataType: it.DataType}
		spec.Value = openValue(it.DataType, it.Value)
	case token.TypeComment:
		spec.Variant = Comment{Text: it.Text}
	default:
		c.diag(&res.Diagnostics, errors.ErrCodeUnsupported, it.ID, "unknown item type %q", it.Type)
		return
	}
	for _, p := range it.Portals {
		spec.Portals = append(spec.Portals, PortalSpec{
			Name:     p.Name,
			Kind:     PortalKind(p.Type),
			DataType: p.DataType,
			Value:    openValue(p.DataType, p.Value),
			Custom:   p.Custom,
		})
	}
	c.insertOpened(it, spec, ic, res)
}

func (c *Canvas) insertOpened(it token.Item, spec NodeSpec, ic importContext, res *OpenResult) {
	n, err := c.addNode(spec)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInvalidFormat
		}
		c.diag(&res.Diagnostics, code, it.ID, "%s skipped: %v", it.Type, err)
		return
	}
	if it.ZIndex != 0 {
		n.zIndex = it.ZIndex
		c.topZ = max(c.topZ, it.ZIndex)
	}
	if it.ID != "" {
		ic[it.ID] = n.id
	}
	res.Nodes = append(res.Nodes, n.id)
}

// endpointRef resolves one end of a link item, preferring the node the
// link was drawn on and falling back to a shortcut's target.
func (c *Canvas) endpointRef(ic importContext, direct, target, portal string) (PortalRef, bool) {
	for _, id := range []string{direct, target} {
		if id == "" {
			continue
		}
		nid, ok := ic[id]
		if !ok {
			continue
		}
		ref := PortalRef{Node: nid, Name: portal}
		if _, _, err := c.resolve(ref); err == nil {
			return ref, true
		}
	}
	return PortalRef{}, false
}

func (c *Canvas) openLink(it token.Item, ic importContext, res *OpenResult) {
	start, okS := c.endpointRef(ic, it.StartBehaviour, it.TargetStartBehaviour, it.StartPortal)
	end, okE := c.endpointRef(ic, it.EndBehaviour, it.TargetEndBehaviour, it.EndPortal)
	if !okS || !okE {
		c.diag(&res.Diagnostics, errors.ErrCodeUnresolvedReference, it.ID,
			"link %s.%s -> %s.%s does not resolve", it.StartBehaviour, it.StartPortal, it.EndBehaviour, it.EndPortal)
		return
	}
	start, end, delay, err := c.orient(start, end)
	if err != nil {
		c.diag(&res.Diagnostics, errors.ErrCodeIncompatibleLink, it.ID, "%v", err)
		return
	}
	// Only Output to Input links have a non-zero default and keep a stored delay.
	if it.FrameDelay != nil && delay == DefaultFrameDelay && *it.FrameDelay >= 0 {
		delay = *it.FrameDelay
	}
	res.Links = append(res.Links, c.attach(start, end, delay))
}

// openValue normalizes a value read from a token, falling back to the
// type's default when the stored value has the wrong shape.
// unknownDataType returns the first data type of the item or its portals
// that is not a known type.
func unknownDataType(it token.Item) (value.DataType, bool) {
	if it.Type == token.TypePortal && !it.DataType.Valid() {
		return it.DataType, true
	}
	for _, p := range it.Portals {
		if !p.DataType.Valid() {
			return p.DataType, true
		}
	}
	return "", false
}

func openValue(dt value.DataType, raw any) any {
	v, err := value.Normalize(dt, raw)
	if err != nil {
		return value.Default(dt)
	}
	return v
}
