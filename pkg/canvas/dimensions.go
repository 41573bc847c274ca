package canvas

import "unicode/utf8"

// Node geometry in canvas units.
const (
	minNodeWidth    = 120.0
	charWidth       = 7.0
	headerHeight    = 28.0
	portalRowHeight = 18.0
	nodePadding     = 12.0
	portalGap       = 24.0

	commentWidth  = 200.0
	commentHeight = 80.0
)

// measure sizes a node the way the editor lays it out: a header with the
// display name, then one row per portal, receiving portals in the left
// column and emitting portals in the right.
func (c *Canvas) measure(n *Node) {
	if n.isComment() {
		n.width, n.height = commentWidth, commentHeight
		n.state = Dimensioned
		return
	}
	portals := n.portals
	if sc, ok := n.variant.(Shortcut); ok {
		if t, err := c.node(sc.Target); err == nil {
			portals = t.portals
		}
	}

	var left, right int
	var leftW, rightW float64
	for _, p := range portals {
		w := textWidth(p.name)
		if p.kind.left() {
			left++
			leftW = max(leftW, w)
		} else {
			right++
			rightW = max(rightW, w)
		}
	}

	width := max(minNodeWidth, textWidth(c.DisplayName(n.id))+2*nodePadding)
	if leftW > 0 && rightW > 0 {
		width = max(width, leftW+rightW+portalGap+2*nodePadding)
	} else {
		width = max(width, leftW+rightW+2*nodePadding)
	}
	rows := max(left, right)

	n.width = width
	n.height = headerHeight + float64(rows)*portalRowHeight + nodePadding
	n.state = Dimensioned
}

func textWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * charWidth
}
