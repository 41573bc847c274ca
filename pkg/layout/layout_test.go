package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func build(t *testing.T, nodes []string, edges [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, id := range nodes {
		if err := g.AddNode(id); err != nil {
			t.Fatalf("AddNode(%q) error = %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%q, %q) error = %v", e[0], e[1], err)
		}
	}
	return g
}

func TestGraph_AddNode(t *testing.T) {
	g := New()
	if err := g.AddNode(""); err != ErrInvalidNodeID {
		t.Errorf("AddNode(\"\") error = %v, want %v", err, ErrInvalidNodeID)
	}
	if err := g.AddNode("a"); err != nil {
		t.Fatalf("AddNode(a) error = %v", err)
	}
	if err := g.AddNode("a"); err != ErrDuplicateNodeID {
		t.Errorf("AddNode(a) again error = %v, want %v", err, ErrDuplicateNodeID)
	}
	if err := g.AddEdge("a", "b"); err != ErrUnknownNode {
		t.Errorf("AddEdge(a, b) error = %v, want %v", err, ErrUnknownNode)
	}
}

func TestGraph_AddEdgeCollapses(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "b"}, {"a", "a"}})
	if got := g.EdgeCount(); got != 1 {
		t.Errorf("EdgeCount() = %d, want 1", got)
	}
}

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []string
		edges   [][2]string
		removed int
		left    int
	}{
		{"acyclic", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}}, 0, 2},
		{"two cycle", []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}}, 1, 1},
		{"triangle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, 1, 2},
		{"two cycles", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}}, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes, tt.edges)
			if got := BreakCycles(g); got != tt.removed {
				t.Errorf("BreakCycles() = %d, want %d", got, tt.removed)
			}
			if got := g.EdgeCount(); got != tt.left {
				t.Errorf("EdgeCount() = %d, want %d", got, tt.left)
			}
		})
	}
}

func TestAssignLayers(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}, {"d", "c"}})
	got := AssignLayers(g)
	want := map[string]int{"a": 0, "b": 1, "c": 2, "d": 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AssignLayers() mismatch (-want +got):\n%s", diff)
	}
}

func TestCountCrossings(t *testing.T) {
	g := build(t, []string{"a", "b", "x", "y"}, [][2]string{{"a", "y"}, {"b", "x"}})
	if got := CountCrossings(g, [][]string{{"a", "b"}, {"x", "y"}}); got != 1 {
		t.Errorf("CountCrossings(crossed) = %d, want 1", got)
	}
	if got := CountCrossings(g, [][]string{{"a", "b"}, {"y", "x"}}); got != 0 {
		t.Errorf("CountCrossings(straight) = %d, want 0", got)
	}
}

func TestOrder_RemovesCrossing(t *testing.T) {
	g := build(t, []string{"a", "b", "x", "y"}, [][2]string{{"a", "y"}, {"b", "x"}})
	cols := Order(g, AssignLayers(g), 4)
	if got := CountCrossings(g, cols); got != 0 {
		t.Errorf("CountCrossings(Order()) = %d, want 0; columns %v", got, cols)
	}
	if len(cols) != 2 || len(cols[0]) != 2 || len(cols[1]) != 2 {
		t.Errorf("Order() = %v, want two columns of two", cols)
	}
}

func TestOrder_SingleColumn(t *testing.T) {
	g := build(t, []string{"a", "b"}, nil)
	want := [][]string{{"a", "b"}}
	if diff := cmp.Diff(want, Order(g, AssignLayers(g), 4)); diff != "" {
		t.Errorf("Order() mismatch (-want +got):\n%s", diff)
	}
}
