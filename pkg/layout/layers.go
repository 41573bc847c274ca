package layout

// AssignLayers returns the column of every node: zero for sources, and one
// more than the deepest parent otherwise. It uses Kahn's topological order,
// so nodes on a cycle stay in column zero; run [BreakCycles] first.
func AssignLayers(g *Graph) map[string]int {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	layers := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, id := range nodes {
		layers[id] = 0
		d := g.InDegree(id)
		inDegree[id] = d
		if d == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range g.Children(curr) {
			if l := layers[curr] + 1; l > layers[child] {
				layers[child] = l
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return layers
}
