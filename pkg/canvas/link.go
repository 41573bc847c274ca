package canvas

import (
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/value"
)

// DefaultFrameDelay is the frame delay of a new Output to Input link.
const DefaultFrameDelay = 1

// Link is a directed edge from an emitting portal (Output or Product) to a
// receiving one (Input or Parameter). Endpoints are recorded as drawn: an
// endpoint on a shortcut names the shortcut node, while the link itself is
// registered on the target's portal.
type Link struct {
	id         LinkID
	uid        string
	start      PortalRef
	end        PortalRef
	frameDelay int
}

func (l *Link) ID() LinkID       { return l.id }
func (l *Link) UID() string      { return l.uid }
func (l *Link) Start() PortalRef { return l.start }
func (l *Link) End() PortalRef   { return l.end }

// FrameDelay returns the number of frames the runtime delays an
// Output to Input link. It is always zero for Product to Parameter links.
func (l *Link) FrameDelay() int { return l.frameDelay }

// CanLink reports whether a portal of kind from and type fromType may be
// linked to a portal of kind to and type toType. Output to Input links carry
// control flow and accept any data types. Product to Parameter links carry
// values: the types must match, the target must be Object, or conv must
// know a conversion.
func CanLink(from PortalKind, fromType value.DataType, to PortalKind, toType value.DataType, conv ConverterRegistry) bool {
	switch {
	case from == Output && to == Input:
		return true
	case from == Product && to == Parameter:
		return fromType == toType || toType == value.Object || (conv != nil && conv.CanConvert(fromType, toType))
	default:
		return false
	}
}

func (c *Canvas) canLink(from, to *Portal) bool {
	return CanLink(from.kind, from.dataType, to.kind, to.dataType, c.env.Converters)
}

// CheckPortalLink reports whether a and b could be linked. The pair is
// tried in both directions, matching how a link may be dragged from either
// end.
func (c *Canvas) CheckPortalLink(a, b PortalRef) bool {
	_, _, _, err := c.orient(a, b)
	return err == nil
}

// orient resolves both references and orders them emitting side first.
func (c *Canvas) orient(a, b PortalRef) (PortalRef, PortalRef, int, error) {
	_, pa, err := c.resolve(a)
	if err != nil {
		return PortalRef{}, PortalRef{}, 0, err
	}
	_, pb, err := c.resolve(b)
	if err != nil {
		return PortalRef{}, PortalRef{}, 0, err
	}
	if !pa.kind.Emits() {
		a, b, pa, pb = b, a, pb, pa
	}
	if !c.canLink(pa, pb) {
		return PortalRef{}, PortalRef{}, 0, errors.Wrap(errors.ErrCodeIncompatibleLink, ErrIncompatibleLink,
			"%s (%s %s) -> %s (%s %s)", a, pa.kind, pa.dataType, b, pb.kind, pb.dataType)
	}
	delay := 0
	if pa.kind == Output {
		delay = DefaultFrameDelay
	}
	return a, b, delay, nil
}

// Connect links two portals, in whichever order they are given. Parallel
// links between the same pair of portals are allowed.
func (c *Canvas) Connect(a, b PortalRef) (LinkID, error) {
	if err := c.mutable(); err != nil {
		return LinkID{}, err
	}
	start, end, delay, err := c.orient(a, b)
	if err != nil {
		return LinkID{}, err
	}
	return c.attach(start, end, delay), nil
}

// attach inserts a link between already validated endpoints.
func (c *Canvas) attach(start, end PortalRef, delay int) LinkID {
	l := &Link{uid: uuid.NewString(), start: start, end: end, frameDelay: delay}
	idx, gen := c.links.insert(l)
	l.id = LinkID{index: idx, gen: gen}
	_, ps, _ := c.resolve(start)
	_, pe, _ := c.resolve(end)
	ps.addLink(l.id)
	pe.addLink(l.id)
	c.logger.Debug("link attached", "link", l.id, "start", start, "end", end)
	return l.id
}

// Disconnect removes a link.
func (c *Canvas) Disconnect(id LinkID) error {
	if err := c.mutable(); err != nil {
		return err
	}
	if _, err := c.link(id); err != nil {
		return err
	}
	c.disconnect(id)
	return nil
}

// disconnect removes a link and its back-references. Unknown ids are
// ignored.
func (c *Canvas) disconnect(id LinkID) {
	l, ok := c.links.get(id.index, id.gen)
	if !ok {
		return
	}
	for _, ref := range []PortalRef{l.start, l.end} {
		if _, p, err := c.resolve(ref); err == nil {
			p.removeLink(id)
		}
	}
	c.links.remove(id.index, id.gen)
}

func (c *Canvas) link(id LinkID) (*Link, error) {
	l, ok := c.links.get(id.index, id.gen)
	if !ok {
		return nil, errors.Wrap(errors.ErrCodeStaleHandle, ErrUnknownLink, "link %s", id)
	}
	return l, nil
}

// Link returns the link with the given id.
func (c *Canvas) Link(id LinkID) (*Link, error) { return c.link(id) }

// Links returns every link in creation-slot order.
func (c *Canvas) Links() []*Link {
	out := make([]*Link, 0, c.links.len())
	c.links.each(func(_, _ uint32, l *Link) { out = append(out, l) })
	return out
}

// SetFrameDelay changes the frame delay of an Output to Input link.
func (c *Canvas) SetFrameDelay(id LinkID, delay int) error {
	if err := c.mutable(); err != nil {
		return err
	}
	l, err := c.link(id)
	if err != nil {
		return err
	}
	if delay < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame delay %d is negative", delay)
	}
	_, p, err := c.resolve(l.start)
	if err != nil {
		return err
	}
	if p.kind != Output {
		return errors.New(errors.ErrCodeInvalidInput, "frame delay only applies to output links")
	}
	l.frameDelay = delay
	return nil
}

// revalidate disconnects every link on p that is no longer legal and
// returns the removed ids.
func (c *Canvas) revalidate(p *Portal) []LinkID {
	var removed []LinkID
	for _, id := range slices.Clone(p.links) {
		l, ok := c.links.get(id.index, id.gen)
		if !ok {
			continue
		}
		_, ps, err1 := c.resolve(l.start)
		_, pe, err2 := c.resolve(l.end)
		if err1 != nil || err2 != nil || !c.canLink(ps, pe) {
			c.disconnect(id)
			removed = append(removed, id)
		}
	}
	return removed
}

// =============================================================================
// Pending links
// =============================================================================

// PendingLink is the handle of a link being drawn. Only the most recent
// handle returned by [Canvas.BeginLink] is live.
type PendingLink struct {
	seq  uint64
	From PortalRef
}

type pendingLink struct {
	seq  uint64
	from PortalRef
}

// BeginLink starts drawing a link from a portal of any kind. A link still
// pending from an earlier call is cancelled.
func (c *Canvas) BeginLink(from PortalRef) (PendingLink, error) {
	if err := c.mutable(); err != nil {
		return PendingLink{}, err
	}
	if _, _, err := c.resolve(from); err != nil {
		return PendingLink{}, err
	}
	c.pendingSeq++
	c.pending = &pendingLink{seq: c.pendingSeq, from: from}
	return PendingLink{seq: c.pendingSeq, From: from}, nil
}

// Pending returns the live pending link, if any.
func (c *Canvas) Pending() (PendingLink, bool) {
	if c.pending == nil {
		return PendingLink{}, false
	}
	return PendingLink{seq: c.pending.seq, From: c.pending.from}, true
}

// CompleteLink drops a pending link on a portal. The pending link is
// consumed whether or not the drop succeeds: dropping on an incompatible
// portal disposes it and returns an INCOMPATIBLE_LINK error.
func (c *Canvas) CompleteLink(h PendingLink, to PortalRef) (LinkID, error) {
	if err := c.mutable(); err != nil {
		return LinkID{}, err
	}
	if c.pending == nil || c.pending.seq != h.seq {
		return LinkID{}, errors.New(errors.ErrCodeStaleHandle, "pending link is no longer active")
	}
	from := c.pending.from
	c.pending = nil
	start, end, delay, err := c.orient(from, to)
	if err != nil {
		return LinkID{}, err
	}
	return c.attach(start, end, delay), nil
}

// CancelLink disposes a pending link. It reports whether h was live.
func (c *Canvas) CancelLink(h PendingLink) bool {
	if c.pending == nil || c.pending.seq != h.seq {
		return false
	}
	c.pending = nil
	return true
}
