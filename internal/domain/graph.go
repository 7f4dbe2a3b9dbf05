package domain

// Graph is a materialized node and edge set, detached from any store
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// HasNode reports whether a node with id is present
func (g *Graph) HasNode(id string) bool {
	for _, n := range g.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Fragment converts the graph to a fragment suitable for export or reload
func (g *Graph) Fragment() *GraphFragment {
	f := NewGraphFragment()
	for _, n := range g.Nodes {
		f.AddNode(n.Clone())
	}
	for _, e := range g.Edges {
		f.AddEdge(e.Clone())
	}
	return f
}
