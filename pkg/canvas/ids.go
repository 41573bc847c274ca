package canvas

import "fmt"

// NodeID addresses a node in a canvas arena. The generation stamp makes ids
// of deleted nodes stale: a slot reused by a later node carries a newer
// generation, so the old id no longer resolves.
//
// The zero value never refers to a node.
type NodeID struct {
	index uint32
	gen   uint32
}

// IsZero reports whether id is the zero id.
func (id NodeID) IsZero() bool { return id.gen == 0 }

func (id NodeID) String() string { return fmt.Sprintf("n%d.%d", id.index, id.gen) }

// LinkID addresses a link in a canvas arena. See [NodeID].
type LinkID struct {
	index uint32
	gen   uint32
}

// IsZero reports whether id is the zero id.
func (id LinkID) IsZero() bool { return id.gen == 0 }

func (id LinkID) String() string { return fmt.Sprintf("l%d.%d", id.index, id.gen) }

// PortalRef names a portal by its owning node and portal name. When Node is
// a shortcut, the portal is looked up on the shortcut's target.
type PortalRef struct {
	Node NodeID
	Name string
}

func (r PortalRef) String() string { return fmt.Sprintf("%s.%s", r.Node, r.Name) }

// arena is a slot table with generation stamps and a free list.
type arena[T any] struct {
	slots []struct {
		gen  uint32
		item *T
	}
	free []uint32
}

func (a *arena[T]) insert(item *T) (uint32, uint32) {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx].gen++
		a.slots[idx].item = item
		return idx, a.slots[idx].gen
	}
	a.slots = append(a.slots, struct {
		gen  uint32
		item *T
	}{gen: 1, item: item})
	return uint32(len(a.slots) - 1), 1
}

func (a *arena[T]) get(idx, gen uint32) (*T, bool) {
	if gen == 0 || int(idx) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[idx]
	if s.gen != gen || s.item == nil {
		return nil, false
	}
	return s.item, true
}

func (a *arena[T]) remove(idx, gen uint32) bool {
	if _, ok := a.get(idx, gen); !ok {
		return false
	}
	a.slots[idx].item = nil
	a.free = append(a.free, idx)
	return true
}

// each calls fn for every live item in slot order.
func (a *arena[T]) each(fn func(idx, gen uint32, item *T)) {
	for i, s := range a.slots {
		if s.item != nil {
			fn(uint32(i), s.gen, s.item)
		}
	}
}

func (a *arena[T]) len() int { return len(a.slots) - len(a.free) }
