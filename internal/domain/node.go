package domain

import "encoding/json"

// Movie attribute keys used by the add-node gesture and the dataset loader.
const (
	AttrName         = "name"
	AttrRank         = "rank"
	AttrYear         = "year"
	AttrIMDBRating   = "imdb_rating"
	AttrDuration     = "duration"
	AttrGenre        = "genre"
	AttrDirectorName = "director_name"
	AttrCastName     = "cast_name"
	AttrWriterName   = "writter_name"
)

// Node represents a vertex in the graph
type Node struct {
	ID    string
	Attrs map[string]any
}

// NewNode creates a new node with initialized attributes
func NewNode(id string, attrs map[string]any) *Node {
	if attrs == nil {
		attrs = make(map[string]any)
	}
	return &Node{ID: id, Attrs: attrs}
}

// DefaultMovieAttrs returns the empty movie attribute set given to nodes
// created interactively.
func DefaultMovieAttrs() map[string]any {
	return map[string]any{
		AttrName:         "",
		AttrRank:         "",
		AttrYear:         "",
		AttrIMDBRating:   "",
		AttrDuration:     "",
		AttrGenre:        "",
		AttrDirectorName: "",
	}
}

// SetAttr sets an attribute value
func (n *Node) SetAttr(key string, value any) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	n.Attrs[key] = value
}

// Attr gets an attribute value
func (n *Node) Attr(key string) (any, bool) {
	if n.Attrs == nil {
		return nil, false
	}
	val, ok := n.Attrs[key]
	return val, ok
}

// AttrString gets an attribute as a string
func (n *Node) AttrString(key string) string {
	val, ok := n.Attr(key)
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// Clone returns a deep copy of the node
func (n Node) Clone() Node {
	return Node{ID: n.ID, Attrs: CloneAttrs(n.Attrs)}
}

// MarshalJSON writes the node flat: {"id": ..., <attrs>...}. An "id" key in
// the attribute bag never shadows the node id.
func (n Node) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(n.Attrs)+1)
	for k, v := range n.Attrs {
		flat[k] = v
	}
	flat["id"] = n.ID
	return json.Marshal(flat)
}

// CloneAttrs deep-copies an attribute bag. Nested maps and slices produced by
// JSON or YAML decoding are copied too; other values are copied by value.
func CloneAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneAttrs(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}
