package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelgraph/internal/domain"
)

func TestLoad(t *testing.T) {
	fragment := &domain.GraphFragment{
		Nodes: []domain.Node{
			{ID: "1", Attrs: map[string]any{"name": "Heat"}},
			{ID: "2"},
			{ID: "3"},
			{ID: "2"},
			{ID: ""},
		},
		Edges: []domain.Edge{
			{Source: "1", Target: "2"},
			{Source: "2", Target: "1"},
			{Source: "3", Target: "3"},
			{Source: "3", Target: "9"},
			{Source: "2", Target: "3"},
		},
	}

	s, report := FromFragment(fragment)

	assert.Equal(t, 3, report.NodesAdded)
	assert.Equal(t, 2, report.EdgesAdded)
	require.Equal(t, 5, report.RejectedCount())

	expected := []struct {
		kind  string
		index int
		err   error
	}{
		{"node", 3, ErrDuplicateNode},
		{"node", 4, ErrEmptyID},
		{"edge", 1, ErrDuplicateEdge},
		{"edge", 2, ErrSelfLoop},
		{"edge", 3, ErrUnknownNode},
	}
	for i, want := range expected {
		got := report.Rejected[i]
		assert.Equal(t, want.kind, got.Kind, "rejection %d", i)
		assert.Equal(t, want.index, got.Index, "rejection %d", i)
		assert.ErrorIs(t, got.Err, want.err, "rejection %d", i)
		assert.NotEmpty(t, got.Reason)
	}

	assert.Equal(t, 3, s.NodeCount())
	assert.Equal(t, 2, s.EdgeCount())
	assert.Equal(t, "3 nodes, 2 edges loaded, 5 rejected", report.String())
}

func TestLoadNilFragment(t *testing.T) {
	report := New().Load(nil)
	assert.Zero(t, report.NodesAdded)
	assert.Zero(t, report.RejectedCount())
}
