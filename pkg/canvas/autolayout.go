package canvas

import (
	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/layout"
)

// LayoutOptions sets the spacing of [Canvas.AutoLayout].
type LayoutOptions struct {
	ColumnGap float64
	RowGap    float64
	OriginX   float64
	OriginY   float64
	Sweeps    int
}

// DefaultLayoutOptions returns the spacing the editor uses.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{ColumnGap: 80, RowGap: 40, OriginX: 40, OriginY: 40, Sweeps: 8}
}

// AutoLayout places every node except comments in columns that follow the
// links left to right. Loops are cut at their DFS back edges; each column is
// ordered to reduce crossings and sized by its widest node.
//
// AutoLayout needs current dimensions and fails with DIRTY_LAYOUT while any
// node is dirty; call [Canvas.RecomputeAll] first.
func (c *Canvas) AutoLayout(opts LayoutOptions) error {
	if err := c.mutable(); err != nil {
		return err
	}
	g := layout.New()
	byKey := map[string]*Node{}
	var (
		dirty    []NodeID
		graphErr error
	)
	c.nodes.each(func(_, _ uint32, n *Node) {
		if n.isComment() {
			return
		}
		if n.Dirty() {
			dirty = append(dirty, n.id)
		}
		key := n.id.String()
		byKey[key] = n
		if err := g.AddNode(key); err != nil && graphErr == nil {
			graphErr = err
		}
	})
	if len(dirty) > 0 {
		return errors.New(errors.ErrCodeDirtyLayout, "%d nodes need their dimensions recomputed (first %s)", len(dirty), dirty[0])
	}
	// Links only join portal-owning nodes, so both ends are in g.
	c.links.each(func(_, _ uint32, l *Link) {
		if err := g.AddEdge(l.start.Node.String(), l.end.Node.String()); err != nil && graphErr == nil {
			graphErr = err
		}
	})
	if graphErr != nil {
		return errors.Wrap(errors.ErrCodeInternal, graphErr, "build layout graph")
	}

	broken := layout.BreakCycles(g)
	cols := layout.Order(g, layout.AssignLayers(g), opts.Sweeps)

	x := opts.OriginX
	for _, col := range cols {
		y, width := opts.OriginY, 0.0
		for _, key := range col {
			n := byKey[key]
			n.left, n.top = x, y
			y += n.height + opts.RowGap
			width = max(width, n.width)
		}
		x += width + opts.ColumnGap
	}
	c.logger.Debug("auto layout", "columns", len(cols), "back_edges", broken)
	return nil
}
