package analytics

import (
	"errors"
	"iter"

	"reelgraph/internal/domain"
)

var (
	// ErrEmptyGraph is returned when a metric needs nodes, or node pairs,
	// that the graph does not have.
	ErrEmptyGraph = errors.New("analytics: empty graph")
	// ErrDensityUndefined is returned for density over fewer than two nodes.
	ErrDensityUndefined = errors.New("analytics: density undefined for fewer than two nodes")
)

// View is the read-only graph surface the metrics need. *store.Store
// satisfies it.
type View interface {
	NodeIDs() iter.Seq[string]
	Neighbors(id string) iter.Seq[string]
	Degree(id string) (int, error)
	NodeCount() int
	EdgeCount() int
	Node(id string) (domain.Node, bool)
	Edge(a, b string) (domain.Edge, bool)
}

// Degrees returns the degree of every node
func Degrees(v View) map[string]int {
	out := make(map[string]int, v.NodeCount())
	for id := range v.NodeIDs() {
		d, _ := v.Degree(id)
		out[id] = d
	}
	return out
}

// AverageDegree returns the mean node degree
func AverageDegree(v View) (float64, error) {
	n := v.NodeCount()
	if n == 0 {
		return 0, ErrEmptyGraph
	}
	sum := 0
	for id := range v.NodeIDs() {
		d, err := v.Degree(id)
		if err != nil {
			return 0, err
		}
		sum += d
	}
	return float64(sum) / float64(n), nil
}

// Density returns 2E / (V(V-1))
func Density(v View) (float64, error) {
	n := v.NodeCount()
	if n <= 1 {
		return 0, ErrDensityUndefined
	}
	return 2 * float64(v.EdgeCount()) / float64(n*(n-1)), nil
}
