package analytics

// Report bundles every metric for one view. A nil metric was undefined for
// the graph; Undefined holds the reason keyed by JSON field name.
type Report struct {
	Nodes                 int               `json:"nodes"`
	Edges                 int               `json:"edges"`
	AverageDegree         *float64          `json:"average_degree"`
	Density               *float64          `json:"density"`
	Components            int               `json:"components"`
	LargestComponentNodes int               `json:"largest_component_nodes"`
	LargestComponentEdges int               `json:"largest_component_edges"`
	Diameter              *int              `json:"diameter"`
	AveragePathLength     *float64          `json:"average_path_length"`
	Undefined             map[string]string `json:"undefined,omitempty"`
}

// Summarize computes every metric. Components and the all-pairs search are
// run once and shared between the metrics that need them.
func Summarize(v View) Report {
	r := Report{
		Nodes: v.NodeCount(),
		Edges: v.EdgeCount(),
	}
	undefined := func(field string, err error) {
		if r.Undefined == nil {
			r.Undefined = make(map[string]string)
		}
		r.Undefined[field] = err.Error()
	}

	if avg, err := AverageDegree(v); err != nil {
		undefined("average_degree", err)
	} else {
		r.AverageDegree = &avg
	}

	if d, err := Density(v); err != nil {
		undefined("density", err)
	} else {
		r.Density = &d
	}

	components := Components(v)
	r.Components = len(components)

	var members []string
	for _, c := range components {
		if len(c) > len(members) {
			members = c
		}
	}
	r.LargestComponentNodes = len(members)

	if len(members) == 0 {
		undefined("diameter", ErrEmptyGraph)
		undefined("average_path_length", ErrEmptyGraph)
		return r
	}

	degrees := 0
	for _, id := range members {
		d, _ := v.Degree(id)
		degrees += d
	}
	r.LargestComponentEdges = degrees / 2

	ps := measure(v, members)
	r.Diameter = &ps.diameter
	if ps.pairs == 0 {
		undefined("average_path_length", ErrEmptyGraph)
	} else {
		apl := float64(ps.sum) / float64(ps.pairs)
		r.AveragePathLength = &apl
	}
	return r
}
