package store

import (
	"errors"
	"fmt"
	"iter"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"reelgraph/internal/domain"
)

var (
	// ErrUnknownNode is returned when an operation references an absent node.
	ErrUnknownNode = errors.New("store: unknown node")
	// ErrNotFound is returned when a delete target is absent.
	ErrNotFound = errors.New("store: not found")
	// ErrSelfLoop is returned for an edge whose endpoints are equal.
	ErrSelfLoop = errors.New("store: self-loop")
	// ErrDuplicateEdge is returned when the unordered pair already has an edge.
	ErrDuplicateEdge = errors.New("store: duplicate edge")
	// ErrDuplicateNode is returned by InsertNode for an id already in use.
	ErrDuplicateNode = errors.New("store: duplicate node")
	// ErrEmptyID is returned by InsertNode for a node without an id.
	ErrEmptyID = errors.New("store: empty node id")
)

type neighborSet = orderedmap.OrderedMap[string, struct{}]

// Store holds nodes and undirected edges in insertion order
type Store struct {
	nodes *orderedmap.OrderedMap[string, *domain.Node]
	edges *orderedmap.OrderedMap[domain.PairKey, *domain.Edge]
	adj   map[string]*neighborSet
}

// New creates an empty store
func New() *Store {
	return &Store{
		nodes: orderedmap.New[string, *domain.Node](),
		edges: orderedmap.New[domain.PairKey, *domain.Edge](),
		adj:   make(map[string]*neighborSet),
	}
}

// AddNode creates a node with a fresh id and returns the id. The id is the
// current node count in decimal, moved forward past any id already taken.
func (s *Store) AddNode(attrs map[string]any) string {
	n := s.nodes.Len()
	id := strconv.Itoa(n)
	for s.HasNode(id) {
		n++
		id = strconv.Itoa(n)
	}
	s.insert(domain.NewNode(id, domain.CloneAttrs(attrs)))
	return id
}

// InsertNode adds a node with a caller-chosen id
func (s *Store) InsertNode(node domain.Node) error {
	if node.ID == "" {
		return ErrEmptyID
	}
	if s.HasNode(node.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}
	s.insert(domain.NewNode(node.ID, domain.CloneAttrs(node.Attrs)))
	return nil
}

func (s *Store) insert(node *domain.Node) {
	s.nodes.Set(node.ID, node)
	s.adj[node.ID] = orderedmap.New[string, struct{}]()
}

// AddEdge connects a and b and returns the new edge id
func (s *Store) AddEdge(a, b string, attrs map[string]any) (string, error) {
	if a == b {
		return "", fmt.Errorf("%w: %s", ErrSelfLoop, a)
	}
	for _, id := range []string{a, b} {
		if !s.HasNode(id) {
			return "", fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
	}

	key := domain.NewPairKey(a, b)
	if existing, ok := s.edges.Get(key); ok {
		return "", fmt.Errorf("%w: %s-%s (edge %s)", ErrDuplicateEdge, a, b, existing.ID)
	}

	edge := domain.NewEdge(a, b, domain.CloneAttrs(attrs))
	s.edges.Set(key, edge)
	s.adj[a].Set(b, struct{}{})
	s.adj[b].Set(a, struct{}{})
	return edge.ID, nil
}

// RemoveNode deletes a node together with every edge incident to it
func (s *Store) RemoveNode(id string) error {
	neighbors, ok := s.adj[id]
	if !ok {
		return fmt.Errorf("%w: node %s", ErrNotFound, id)
	}

	for pair := neighbors.Oldest(); pair != nil; pair = pair.Next() {
		s.edges.Delete(domain.NewPairKey(id, pair.Key))
		s.adj[pair.Key].Delete(id)
	}
	delete(s.adj, id)
	s.nodes.Delete(id)
	return nil
}

// RemoveEdge deletes the edge joining a and b in either orientation
func (s *Store) RemoveEdge(a, b string) error {
	key := domain.NewPairKey(a, b)
	if _, ok := s.edges.Delete(key); !ok {
		return fmt.Errorf("%w: edge %s-%s", ErrNotFound, a, b)
	}
	s.adj[a].Delete(b)
	s.adj[b].Delete(a)
	return nil
}

// Degree returns the number of distinct edges incident to id
func (s *Store) Degree(id string) (int, error) {
	neighbors, ok := s.adj[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return neighbors.Len(), nil
}

// HasNode reports whether id is present
func (s *Store) HasNode(id string) bool {
	_, ok := s.adj[id]
	return ok
}

// HasEdge reports whether a and b are connected in either orientation
func (s *Store) HasEdge(a, b string) bool {
	_, ok := s.edges.Get(domain.NewPairKey(a, b))
	return ok
}

// Node returns a copy of the node with the given id
func (s *Store) Node(id string) (domain.Node, bool) {
	node, ok := s.nodes.Get(id)
	if !ok {
		return domain.Node{}, false
	}
	return node.Clone(), true
}

// Edge returns a copy of the edge joining a and b
func (s *Store) Edge(a, b string) (domain.Edge, bool) {
	edge, ok := s.edges.Get(domain.NewPairKey(a, b))
	if !ok {
		return domain.Edge{}, false
	}
	return edge.Clone(), true
}

// NodeCount returns the number of nodes
func (s *Store) NodeCount() int {
	return s.nodes.Len()
}

// EdgeCount returns the number of edges
func (s *Store) EdgeCount() int {
	return s.edges.Len()
}

// NodeIDs yields node ids in insertion order
func (s *Store) NodeIDs() iter.Seq[string] {
	return func(yield func(string) bool) {
		for pair := s.nodes.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key) {
				return
			}
		}
	}
}

// Nodes yields nodes in insertion order. The attribute maps are shared with
// the store and must not be modified.
func (s *Store) Nodes() iter.Seq[domain.Node] {
	return func(yield func(domain.Node) bool) {
		for pair := s.nodes.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(*pair.Value) {
				return
			}
		}
	}
}

// Edges yields edges in insertion order. The attribute maps are shared with
// the store and must not be modified.
func (s *Store) Edges() iter.Seq[domain.Edge] {
	return func(yield func(domain.Edge) bool) {
		for pair := s.edges.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(*pair.Value) {
				return
			}
		}
	}
}

// Neighbors yields the nodes adjacent to id, each exactly once
func (s *Store) Neighbors(id string) iter.Seq[string] {
	return func(yield func(string) bool) {
		neighbors, ok := s.adj[id]
		if !ok {
			return
		}
		for pair := neighbors.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key) {
				return
			}
		}
	}
}

// Snapshot returns a deep copy of the whole store
func (s *Store) Snapshot() *domain.Graph {
	g := &domain.Graph{
		Nodes: make([]domain.Node, 0, s.NodeCount()),
		Edges: make([]domain.Edge, 0, s.EdgeCount()),
	}
	for n := range s.Nodes() {
		g.Nodes = append(g.Nodes, n.Clone())
	}
	for e := range s.Edges() {
		g.Edges = append(g.Edges, e.Clone())
	}
	return g
}
