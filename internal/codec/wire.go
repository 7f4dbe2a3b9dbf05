package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"reelgraph/internal/domain"
)

// wireFragment is the loose on-disk shape shared by every format. Datasets
// exported from force-graph tools name the edge list "links"; both keys are
// accepted and concatenated.
type wireFragment struct {
	Nodes []map[string]any `json:"nodes" yaml:"nodes"`
	Edges []map[string]any `json:"edges" yaml:"edges"`
	Links []map[string]any `json:"links" yaml:"links"`
}

func (w *wireFragment) toDomain() (*domain.GraphFragment, error) {
	fragment := domain.NewGraphFragment()

	for i, raw := range w.Nodes {
		id, err := normalizeID(raw["id"])
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		attrs := make(map[string]any, len(raw))
		for k, v := range raw {
			if k == "id" {
				continue
			}
			attrs[k] = normalizeValue(v)
		}
		fragment.AddNode(domain.Node{ID: id, Attrs: attrs})
	}

	edges := make([]map[string]any, 0, len(w.Edges)+len(w.Links))
	edges = append(edges, w.Edges...)
	edges = append(edges, w.Links...)

	for i, raw := range edges {
		source, err := endpoint(raw["source"])
		if err != nil {
			return nil, fmt.Errorf("edge %d source: %w", i, err)
		}
		target, err := endpoint(raw["target"])
		if err != nil {
			return nil, fmt.Errorf("edge %d target: %w", i, err)
		}
		attrs := make(map[string]any)
		for k, v := range raw {
			switch k {
			case "id", "source", "target":
				continue
			}
			attrs[k] = normalizeValue(v)
		}
		fragment.AddEdge(domain.Edge{
			ID:     domain.EdgeID(source, target),
			Source: source,
			Target: target,
			Attrs:  attrs,
		})
	}

	return fragment, nil
}

// endpoint accepts either a bare id or a node-like object carrying "id"
func endpoint(v any) (string, error) {
	if obj, ok := v.(map[string]any); ok {
		return normalizeID(obj["id"])
	}
	return normalizeID(v)
}

// normalizeID converts string and integral ids to their string form
func normalizeID(v any) (string, error) {
	switch id := v.(type) {
	case nil:
		return "", fmt.Errorf("missing id")
	case string:
		if id == "" {
			return "", fmt.Errorf("empty id")
		}
		return id, nil
	case json.Number:
		if n, err := id.Int64(); err == nil {
			return strconv.FormatInt(n, 10), nil
		}
		return "", fmt.Errorf("non-integral id %s", id)
	case int:
		return strconv.Itoa(id), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case uint64:
		return strconv.FormatUint(id, 10), nil
	case float64:
		if id != math.Trunc(id) || math.IsInf(id, 0) {
			return "", fmt.Errorf("non-integral id %v", id)
		}
		if id < math.MinInt64 || id >= math.MaxInt64 {
			return "", fmt.Errorf("id %v out of range", id)
		}
		return strconv.FormatInt(int64(id), 10), nil
	default:
		return "", fmt.Errorf("unsupported id type %T", v)
	}
}

// NormalizeAttrs applies normalizeValue to every attribute of a bag decoded
// with json.Decoder.UseNumber.
func NormalizeAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = normalizeValue(v)
	}
	return out
}

// normalizeValue turns json.Number into int64 or float64 so attributes look
// the same whichever decoder produced them.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return val
	}
}

// flatten renders nodes and edges as flat maps for formats without custom
// marshalers.
func flatten(fragment *domain.GraphFragment) (nodes, edges []map[string]any) {
	nodes = make([]map[string]any, 0, len(fragment.Nodes))
	for _, n := range fragment.Nodes {
		flat := make(map[string]any, len(n.Attrs)+1)
		for k, v := range n.Attrs {
			flat[k] = v
		}
		flat["id"] = n.ID
		nodes = append(nodes, flat)
	}

	edges = make([]map[string]any, 0, len(fragment.Edges))
	for _, e := range fragment.Edges {
		flat := make(map[string]any, len(e.Attrs)+3)
		for k, v := range e.Attrs {
			flat[k] = v
		}
		flat["id"] = e.ID
		flat["source"] = e.Source
		flat["target"] = e.Target
		edges = append(edges, flat)
	}
	return nodes, edges
}
