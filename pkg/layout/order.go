package layout

import (
	"slices"
)

// Order groups nodes into columns by layer and orders each column to reduce
// edge crossings. Columns start in insertion order; each sweep then sorts
// every column by the mean position of its neighbours in the previous column,
// alternating left-to-right and right-to-left. The ordering with the fewest
// crossings seen is returned.
func Order(g *Graph, layers map[string]int, sweeps int) [][]string {
	var cols [][]string
	for _, id := range g.Nodes() {
		l := layers[id]
		for len(cols) <= l {
			cols = append(cols, nil)
		}
		cols[l] = append(cols[l], id)
	}
	if len(cols) < 2 {
		return cols
	}

	best := cloneColumns(cols)
	bestCrossings := CountCrossings(g, cols)
	for s := 0; s < sweeps && bestCrossings > 0; s++ {
		if s%2 == 0 {
			for i := 1; i < len(cols); i++ {
				sortByBarycenter(cols[i], cols[i-1], g.Parents)
			}
		} else {
			for i := len(cols) - 2; i >= 0; i-- {
				sortByBarycenter(cols[i], cols[i+1], g.Children)
			}
		}
		if c := CountCrossings(g, cols); c < bestCrossings {
			best, bestCrossings = cloneColumns(cols), c
		}
	}
	return best
}

// sortByBarycenter stably sorts col by the mean position of each node's
// neighbours in adj. Nodes without neighbours there keep their position.
func sortByBarycenter(col, adj []string, neighbours func(string) []string) {
	pos := posMap(adj)
	bary := make(map[string]float64, len(col))
	for i, id := range col {
		sum, n := 0.0, 0
		for _, nb := range neighbours(id) {
			if p, ok := pos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			bary[id] = float64(i)
			continue
		}
		bary[id] = sum / float64(n)
	}
	slices.SortStableFunc(col, func(a, b string) int {
		switch {
		case bary[a] < bary[b]:
			return -1
		case bary[a] > bary[b]:
			return 1
		default:
			return 0
		}
	})
}

// CountCrossings returns the number of edge crossings between consecutive
// columns.
func CountCrossings(g *Graph, cols [][]string) int {
	total := 0
	for i := 0; i+1 < len(cols); i++ {
		total += countLayerCrossings(g, cols[i], cols[i+1])
	}
	return total
}

// countLayerCrossings counts inversions among the edges between two columns
// with a Fenwick tree. Edges (u1,v1) and (u2,v2) cross iff
// pos(u1) < pos(u2) and pos(v1) > pos(v2).
func countLayerCrossings(g *Graph, left, right []string) int {
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	rightPos := posMap(right)

	type edge struct{ l, r int }
	var edges []edge
	for i, id := range left {
		for _, child := range g.Children(id) {
			if p, ok := rightPos[child]; ok {
				edges = append(edges, edge{i, p})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}
	slices.SortFunc(edges, func(a, b edge) int {
		if a.l != b.l {
			return a.l - b.l
		}
		return a.r - b.r
	})

	fenwick := make([]int, len(right)+1)
	crossings, seen := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.r + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += seen - lessOrEqual
		seen++
		for i := e.r + 1; i < len(fenwick); i += i & (-i) {
			fenwick[i]++
		}
	}
	return crossings
}

func posMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

func cloneColumns(cols [][]string) [][]string {
	out := make([][]string, len(cols))
	for i, c := range cols {
		out[i] = slices.Clone(c)
	}
	return out
}
