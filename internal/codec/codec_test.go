package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelgraph/internal/domain"
)

func sampleFragment() *domain.GraphFragment {
	f := domain.NewGraphFragment()
	f.AddNode(domain.Node{ID: "1", Attrs: map[string]any{"name": "Heat", "year": 1995}})
	f.AddNode(domain.Node{ID: "2", Attrs: map[string]any{"name": "Ronin"}})
	f.AddEdge(domain.Edge{ID: "e-1-2", Source: "1", Target: "2", Attrs: map[string]any{}})
	return f
}

func TestJSONParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantNodes  []string
		wantEdges  [][2]string
		wantErrMsg string
	}{
		{
			name:      "links with bare integer ids",
			input:     `{"nodes":[{"id":0,"name":"Heat"},{"id":1}],"links":[{"source":0,"target":1}]}`,
			wantNodes: []string{"0", "1"},
			wantEdges: [][2]string{{"0", "1"}},
		},
		{
			name:      "edges with object endpoints",
			input:     `{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"source":{"id":"b","x":3},"target":{"id":"a"}}]}`,
			wantNodes: []string{"a", "b"},
			wantEdges: [][2]string{{"b", "a"}},
		},
		{
			name:      "edges and links are concatenated",
			input:     `{"nodes":[{"id":"a"},{"id":"b"},{"id":"c"}],"edges":[{"source":"a","target":"b"}],"links":[{"source":"b","target":"c"}]}`,
			wantNodes: []string{"a", "b", "c"},
			wantEdges: [][2]string{{"a", "b"}, {"b", "c"}},
		},
		{
			name:       "missing node id",
			input:      `{"nodes":[{"name":"anonymous"}]}`,
			wantErrMsg: "node 0: missing id",
		},
		{
			name:       "fractional id",
			input:      `{"nodes":[{"id":1.5}]}`,
			wantErrMsg: "non-integral id",
		},
		{
			name:       "missing edge target",
			input:      `{"nodes":[{"id":"a"}],"edges":[{"source":"a"}]}`,
			wantErrMsg: "edge 0 target",
		},
		{
			name:       "malformed document",
			input:      `{"nodes":`,
			wantErrMsg: "failed to parse JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewJSONCodec().Parse(strings.NewReader(tt.input))
			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}
			require.NoError(t, err)

			var nodes []string
			for _, n := range f.Nodes {
				nodes = append(nodes, n.ID)
			}
			assert.Equal(t, tt.wantNodes, nodes)

			var edges [][2]string
			for _, e := range f.Edges {
				edges = append(edges, [2]string{e.Source, e.Target})
			}
			assert.Equal(t, tt.wantEdges, edges)
		})
	}
}

func TestJSONParseNormalizesNumbers(t *testing.T) {
	input := `{"nodes":[{"id":"1","rank":3,"imdb_rating":8.3,"cast_name":["Al Pacino"]}],"links":[]}`

	f, err := NewJSONCodec().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, f.Nodes, 1)

	attrs := f.Nodes[0].Attrs
	assert.Equal(t, int64(3), attrs["rank"])
	assert.Equal(t, 8.3, attrs["imdb_rating"])
	assert.Equal(t, []any{"Al Pacino"}, attrs["cast_name"])
	assert.NotContains(t, attrs, "id")
}

func TestYAMLParse(t *testing.T) {
	input := `
nodes:
  - id: 1
    name: Heat
  - id: "2"
    name: Ronin
links:
  - source: 1
    target: {id: 2}
    kind: director
`
	f, err := NewYAMLCodec().Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, f.Nodes, 2)
	assert.Equal(t, "1", f.Nodes[0].ID)
	assert.Equal(t, "Heat", f.Nodes[0].AttrString("name"))

	require.Len(t, f.Edges, 1)
	assert.Equal(t, "1", f.Edges[0].Source)
	assert.Equal(t, "2", f.Edges[0].Target)
	assert.Equal(t, "director", f.Edges[0].Attrs["kind"])
}

func TestYAMLParseRejectsBadIDs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "id beyond int64",
			input: "nodes:\n  - id: 100000000000000000000\n  - id: 200000000000000000000\n",
			want:  "out of range",
		},
		{
			name:  "negative id beyond int64",
			input: "nodes:\n  - id: -100000000000000000000\n",
			want:  "out of range",
		},
		{
			name:  "fractional id",
			input: "nodes:\n  - id: 1.5\n",
			want:  "non-integral",
		},
		{
			name:  "missing id",
			input: "nodes:\n  - name: Heat\n",
			want:  "missing id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYAMLCodec().Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestYAMLParseEmptyDocument(t *testing.T) {
	f, err := NewYAMLCodec().Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Nodes)
	assert.Empty(t, f.Edges)
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Export(sampleFragment(), &buf))

	g := goldie.New(t)
	g.Assert(t, "export_json", buf.Bytes())
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			c, err := ForFormat(format)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, c.Export(sampleFragment(), &buf))

			f, err := c.Parse(&buf)
			require.NoError(t, err)

			require.Len(t, f.Nodes, 2)
			assert.Equal(t, "Heat", f.Nodes[0].AttrString("name"))
			assert.EqualValues(t, 1995, f.Nodes[0].Attrs["year"])
			require.Len(t, f.Edges, 1)
			assert.Equal(t, "1", f.Edges[0].Source)
			assert.Equal(t, "2", f.Edges[0].Target)
			assert.Equal(t, domain.EdgeID("1", "2"), f.Edges[0].ID)
		})
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path   string
		format string
		err    bool
	}{
		{"movies.json", "json", false},
		{"movies.yaml", "yaml", false},
		{"/data/movies.YML", "yaml", false},
		{"movies.csv", "", true},
		{"movies", "", true},
	}

	for _, tt := range tests {
		c, err := ForPath(tt.path)
		if tt.err {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("ForPath(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ForPath(%q) unexpected error: %v", tt.path, err)
			continue
		}
		if c.Format() != tt.format {
			t.Errorf("ForPath(%q) = %s, want %s", tt.path, c.Format(), tt.format)
		}
	}
}
