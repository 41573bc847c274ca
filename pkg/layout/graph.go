package layout

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] for an empty id.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when the id exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [Graph.AddEdge] when an endpoint is
	// missing.
	ErrUnknownNode = errors.New("unknown node")
)

// Graph is a directed graph with insertion-ordered nodes. Parallel edges
// and self loops are collapsed away since they never affect placement.
//
// The zero value is not usable; create graphs with [New].
type Graph struct {
	ids      []string
	known    map[string]bool
	outgoing map[string][]string
	incoming map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		known:    make(map[string]bool),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node.
func (g *Graph) AddNode(id string) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	if g.known[id] {
		return ErrDuplicateNodeID
	}
	g.known[id] = true
	g.ids = append(g.ids, id)
	return nil
}

// AddEdge adds an edge. Self loops and repeated edges are ignored.
func (g *Graph) AddEdge(from, to string) error {
	if !g.known[from] || !g.known[to] {
		return ErrUnknownNode
	}
	if from == to || slices.Contains(g.outgoing[from], to) {
		return nil
	}
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// RemoveEdge removes an edge if present.
func (g *Graph) RemoveEdge(from, to string) {
	g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(s string) bool { return s == to })
	g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(s string) bool { return s == from })
}

// Nodes returns the node ids in insertion order.
func (g *Graph) Nodes() []string { return slices.Clone(g.ids) }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.ids) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, out := range g.outgoing {
		n += len(out)
	}
	return n
}

// Children returns the targets of a node's outgoing edges.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the sources of a node's incoming edges.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// InDegree returns the number of incoming edges.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Sources returns the nodes without incoming edges in insertion order.
func (g *Graph) Sources() []string {
	var out []string
	for _, id := range g.ids {
		if len(g.incoming[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}
