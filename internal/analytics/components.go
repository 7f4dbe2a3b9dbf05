package analytics

import "reelgraph/internal/domain"

// Components returns the connected components, each listing its node ids in
// breadth-first discovery order. Components appear in the order their first
// node appears in the view.
func Components(v View) [][]string {
	visited := make(map[string]struct{}, v.NodeCount())
	var components [][]string

	for id := range v.NodeIDs() {
		if _, ok := visited[id]; ok {
			continue
		}
		components = append(components, collect(v, id, visited))
	}
	return components
}

// collect runs a breadth-first search from start, marking every reached node
// in visited and returning them in discovery order.
func collect(v View, start string, visited map[string]struct{}) []string {
	visited[start] = struct{}{}
	queue := []string{start}

	for head := 0; head < len(queue); head++ {
		for nb := range v.Neighbors(queue[head]) {
			if _, ok := visited[nb]; ok {
				continue
			}
			visited[nb] = struct{}{}
			queue = append(queue, nb)
		}
	}
	return queue
}

// ConnectedComponents returns the number of connected components. Isolated
// nodes count as components of their own.
func ConnectedComponents(v View) int {
	return len(Components(v))
}

// largestMembers returns the ids of the largest component, or nil for an
// empty view.
func largestMembers(v View) []string {
	var best []string
	for _, c := range Components(v) {
		if len(c) > len(best) {
			best = c
		}
	}
	return best
}

// LargestConnectedComponent returns a detached copy of the largest
// component. Nodes keep the view's iteration order; attributes are deep
// copied.
func LargestConnectedComponent(v View) (*domain.Graph, error) {
	members := largestMembers(v)
	if len(members) == 0 {
		return nil, ErrEmptyGraph
	}
	return materialize(v, members), nil
}

func materialize(v View, members []string) *domain.Graph {
	in := make(map[string]struct{}, len(members))
	for _, id := range members {
		in[id] = struct{}{}
	}

	g := domain.NewGraph()
	seen := make(map[domain.PairKey]struct{})

	for id := range v.NodeIDs() {
		if _, ok := in[id]; !ok {
			continue
		}
		if n, ok := v.Node(id); ok {
			g.Nodes = append(g.Nodes, n.Clone())
		}
		for nb := range v.Neighbors(id) {
			key := domain.NewPairKey(id, nb)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if e, ok := v.Edge(id, nb); ok {
				g.Edges = append(g.Edges, e.Clone())
			}
		}
	}
	return g
}
