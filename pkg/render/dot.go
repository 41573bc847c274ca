package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/behave/pkg/canvas"
)

// Options configures canvas rendering.
type Options struct {
	// Detailed adds the data type to every portal cell.
	Detailed bool
	// Pinned emits each node's canvas position, in points, as a fixed
	// Graphviz position.
	Pinned bool
}

// ToDOT converts a canvas to Graphviz DOT source.
// The result can be rendered with [RenderSVG].
func ToDOT(cv *canvas.Canvas, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=record, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
	}
	buf.WriteString("\n")

	for _, n := range cv.Nodes() {
		attrs := nodeAttrs(cv, n, opts)
		if opts.Pinned {
			x, y := n.Position()
			attrs = append(attrs, fmt.Sprintf("pos=\"%.0f,%.0f!\"", x, -y))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.UID(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range cv.Nodes() {
		if sc, ok := n.Variant().(canvas.Shortcut); ok {
			if t, err := cv.Node(sc.Target); err == nil {
				fmt.Fprintf(&buf, "  %q -> %q [style=dotted, arrowhead=none, constraint=false];\n", n.UID(), t.UID())
			}
		}
	}
	for _, l := range cv.Links() {
		from, okF := portEndpoint(cv, l.Start())
		to, okT := portEndpoint(cv, l.End())
		if !okF || !okT {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", from, to, strings.Join(linkAttrs(cv, l), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(cv *canvas.Canvas, n *canvas.Node, opts Options) []string {
	name := cv.DisplayName(n.ID())
	switch v := n.Variant().(type) {
	case canvas.Comment:
		return []string{"shape=note", "style=filled", "fillcolor=lightyellow", fmt.Sprintf("label=%q", v.Text)}
	case canvas.PortalProxy:
		label := fmt.Sprintf("%s\n(%s)", name, v.Exposed)
		return []string{"shape=ellipse", "style=filled", "fillcolor=lightblue", fmt.Sprintf("label=%q", label)}
	case canvas.Shortcut:
		return []string{"style=\"rounded,dotted\"", recordAttr(recordLabel(cv, n, "-> "+name, opts))}
	case canvas.Instance:
		return []string{"fillcolor=lavender", recordAttr(recordLabel(cv, n, name, opts))}
	}
	return []string{recordAttr(recordLabel(cv, n, name, opts))}
}

// recordLabel lays a node out as {receivers}|title|{emitters}. Ports are
// named by portal index so that portal names need no escaping.
func recordLabel(cv *canvas.Canvas, n *canvas.Node, title string, opts Options) string {
	portals, _ := cv.PortalsOf(n.ID())
	var left, right []string
	for i, p := range portals {
		text := p.Name()
		if opts.Detailed {
			text += " : " + string(p.DataType())
		}
		cell := fmt.Sprintf("<p%d> %s", i, escapeRecord(text))
		if p.Kind().Emits() {
			right = append(right, cell)
		} else {
			left = append(left, cell)
		}
	}
	parts := []string{}
	if len(left) > 0 {
		parts = append(parts, "{"+strings.Join(left, "|")+"}")
	}
	parts = append(parts, escapeRecord(title))
	if len(right) > 0 {
		parts = append(parts, "{"+strings.Join(right, "|")+"}")
	}
	return strings.Join(parts, "|")
}

// portEndpoint returns the DOT endpoint of a link end: the node and, for
// record nodes, the port cell of the portal.
func portEndpoint(cv *canvas.Canvas, ref canvas.PortalRef) (string, bool) {
	n, err := cv.Node(ref.Node)
	if err != nil {
		return "", false
	}
	if _, ok := n.Variant().(canvas.PortalProxy); ok {
		return fmt.Sprintf("%q", n.UID()), true
	}
	portals, _ := cv.PortalsOf(ref.Node)
	for i, p := range portals {
		if p.Name() == ref.Name {
			compass := "w"
			if p.Kind().Emits() {
				compass = "e"
			}
			return fmt.Sprintf("%q:p%d:%s", n.UID(), i, compass), true
		}
	}
	return "", false
}

func linkAttrs(cv *canvas.Canvas, l *canvas.Link) []string {
	p, err := cv.Portal(l.Start())
	if err == nil && p.Kind() == canvas.Product {
		return []string{"style=dashed"}
	}
	if d := l.FrameDelay(); d != canvas.DefaultFrameDelay {
		return []string{fmt.Sprintf("label=\"%d\"", d)}
	}
	return []string{"style=solid"}
}

var recordEscaper = strings.NewReplacer(
	`\`, `\\`,
	"{", `\{`,
	"}", `\}`,
	"|", `\|`,
	"<", `\<`,
	">", `\>`,
	`"`, `\"`,
)

func escapeRecord(s string) string { return recordEscaper.Replace(s) }

// recordAttr quotes an already escaped record label. DOT keeps backslashes
// in quoted strings, so %q would escape them twice.
func recordAttr(label string) string { return `label="` + label + `"` }
