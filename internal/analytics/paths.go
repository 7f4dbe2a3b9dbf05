package analytics

// pathStats holds all-pairs shortest path totals over one component
type pathStats struct {
	diameter int
	sum      int
	pairs    int
}

// distances runs a breadth-first search from src and returns the hop
// distance to every reachable node, src included at 0.
func distances(v View, src string) map[string]int {
	dist := map[string]int{src: 0}
	queue := []string{src}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for nb := range v.Neighbors(cur) {
			if _, ok := dist[nb]; ok {
				continue
			}
			dist[nb] = dist[cur] + 1
			queue = append(queue, nb)
		}
	}
	return dist
}

// measure runs one search per member and accumulates distances over every
// ordered (source, reached) pair.
func measure(v View, members []string) pathStats {
	var ps pathStats
	for _, src := range members {
		for id, d := range distances(v, src) {
			if id == src {
				continue
			}
			ps.sum += d
			ps.pairs++
			if d > ps.diameter {
				ps.diameter = d
			}
		}
	}
	return ps
}

// Diameter returns the greatest shortest-path distance within the largest
// connected component. A single node has diameter 0.
func Diameter(v View) (int, error) {
	members := largestMembers(v)
	if len(members) == 0 {
		return 0, ErrEmptyGraph
	}
	return measure(v, members).diameter, nil
}

// AveragePathLength returns the mean shortest-path distance over all
// ordered node pairs of the largest connected component.
func AveragePathLength(v View) (float64, error) {
	members := largestMembers(v)
	if len(members) < 2 {
		return 0, ErrEmptyGraph
	}
	ps := measure(v, members)
	return float64(ps.sum) / float64(ps.pairs), nil
}
