package store

import (
	"fmt"

	"reelgraph/internal/domain"
)

// Rejection describes one node or edge that bulk load refused
type Rejection struct {
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// LoadReport summarizes a bulk load
type LoadReport struct {
	NodesAdded int         `json:"nodes_added"`
	EdgesAdded int         `json:"edges_added"`
	Rejected   []Rejection `json:"rejected"`
}

// RejectedCount returns how many items were refused
func (r LoadReport) RejectedCount() int {
	return len(r.Rejected)
}

// Load inserts all nodes of the fragment, then all edges. Items that would
// break an invariant are skipped and listed in the report; everything else
// is inserted.
func (s *Store) Load(fragment *domain.GraphFragment) LoadReport {
	report := LoadReport{Rejected: make([]Rejection, 0)}
	if fragment == nil {
		return report
	}

	for i, node := range fragment.Nodes {
		if err := s.InsertNode(node); err != nil {
			report.Rejected = append(report.Rejected, Rejection{
				Kind:   "node",
				Index:  i,
				ID:     node.ID,
				Reason: err.Error(),
				Err:    err,
			})
			continue
		}
		report.NodesAdded++
	}

	for i, edge := range fragment.Edges {
		if _, err := s.AddEdge(edge.Source, edge.Target, edge.Attrs); err != nil {
			report.Rejected = append(report.Rejected, Rejection{
				Kind:   "edge",
				Index:  i,
				Source: edge.Source,
				Target: edge.Target,
				Reason: err.Error(),
				Err:    err,
			})
			continue
		}
		report.EdgesAdded++
	}

	return report
}

// FromFragment builds a new store from a fragment
func FromFragment(fragment *domain.GraphFragment) (*Store, LoadReport) {
	s := New()
	report := s.Load(fragment)
	return s, report
}

// String returns a one-line summary of the report
func (r LoadReport) String() string {
	return fmt.Sprintf("%d nodes, %d edges loaded, %d rejected", r.NodesAdded, r.EdgesAdded, len(r.Rejected))
}
