package domain

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Edge represents an undirected relation between two nodes
type Edge struct {
	ID     string
	Source string
	Target string
	Attrs  map[string]any
}

// NewEdge creates a new edge with a generated ID
func NewEdge(source, target string, attrs map[string]any) *Edge {
	if attrs == nil {
		attrs = make(map[string]any)
	}
	return &Edge{
		ID:     EdgeID(source, target),
		Source: source,
		Target: target,
		Attrs:  attrs,
	}
}

// EdgeID creates a deterministic ID for the unordered pair {a, b}
func EdgeID(a, b string) string {
	key := NewPairKey(a, b)
	hash := sha256.Sum256([]byte(key.Lo + "\x00" + key.Hi))
	return fmt.Sprintf("%x", hash[:8])
}

// PairKey is the orientation-free key of an edge. Lo <= Hi always.
type PairKey struct {
	Lo string
	Hi string
}

// NewPairKey normalizes endpoints so {a,b} and {b,a} produce the same key
func NewPairKey(a, b string) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// Key returns the edge's orientation-free key
func (e Edge) Key() PairKey {
	return NewPairKey(e.Source, e.Target)
}

// Connects reports whether the edge joins a and b in either orientation
func (e Edge) Connects(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// Touches reports whether id is one of the edge's endpoints
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// Other returns the endpoint opposite id
func (e Edge) Other(id string) (string, bool) {
	switch id {
	case e.Source:
		return e.Target, true
	case e.Target:
		return e.Source, true
	}
	return "", false
}

// Clone returns a deep copy of the edge
func (e Edge) Clone() Edge {
	return Edge{ID: e.ID, Source: e.Source, Target: e.Target, Attrs: CloneAttrs(e.Attrs)}
}

// MarshalJSON writes the edge flat: {"id", "source", "target", <attrs>...}
func (e Edge) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(e.Attrs)+3)
	for k, v := range e.Attrs {
		flat[k] = v
	}
	flat["id"] = e.ID
	flat["source"] = e.Source
	flat["target"] = e.Target
	return json.Marshal(flat)
}

// EdgeView is an edge with its endpoints resolved to nodes. It is built on
// demand for the presentation layer and never stored.
type EdgeView struct {
	ID      string         `json:"id"`
	Source  Node           `json:"source"`
	Target  Node           `json:"target"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Deleted bool           `json:"deleted,omitempty"`
}

// ResolveEdge builds the view of e using lookup to fetch endpoint nodes
func ResolveEdge(e Edge, lookup func(id string) (Node, bool)) (EdgeView, error) {
	src, ok := lookup(e.Source)
	if !ok {
		return EdgeView{}, fmt.Errorf("edge %s: source %q not found", e.ID, e.Source)
	}
	dst, ok := lookup(e.Target)
	if !ok {
		return EdgeView{}, fmt.Errorf("edge %s: target %q not found", e.ID, e.Target)
	}
	return EdgeView{
		ID:     e.ID,
		Source: src.Clone(),
		Target: dst.Clone(),
		Attrs:  CloneAttrs(e.Attrs),
	}, nil
}
