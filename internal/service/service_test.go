package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelgraph/internal/analytics"
	"reelgraph/internal/codec"
	"reelgraph/internal/domain"
	"reelgraph/internal/logging"
	"reelgraph/internal/metrics"
	"reelgraph/internal/mutation"
	"reelgraph/internal/repository"
	"reelgraph/internal/repository/sqlite"
	"reelgraph/internal/store"
)

const pathJSON = `{
  "nodes": [
    {"id": 1, "name": "Alien", "genre": "Horror"},
    {"id": 2, "name": "Aliens", "genre": "Action"},
    {"id": 3, "name": "Heat", "genre": "Crime"},
    {"id": 4, "name": "Ronin", "genre": "Action"}
  ],
  "links": [
    {"source": 1, "target": 2},
    {"source": 2, "target": 3},
    {"source": 3, "target": 4}
  ]
}`

func newTestService(t *testing.T, opts ...Option) (*GraphService, chan Event) {
	t.Helper()
	bus := NewEventBus()
	events := make(chan Event, 64)
	bus.Subscribe(events)
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return NewGraphService(bus, opts...), events
}

func loadPath(t *testing.T, svc *GraphService) {
	t.Helper()
	report, err := svc.Import(context.Background(), "json", "test", strings.NewReader(pathJSON))
	require.NoError(t, err)
	require.Equal(t, 0, report.RejectedCount())
}

func drain(events chan Event) []EventType {
	var types []EventType
	for {
		select {
		case e := <-events:
			types = append(types, e.Type)
		default:
			return types
		}
	}
}

func TestAddNode(t *testing.T) {
	ctx := context.Background()
	svc, events := newTestService(t)

	t.Run("nil attrs get movie defaults", func(t *testing.T) {
		n, err := svc.AddNode(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "0", n.ID)
		assert.Equal(t, domain.DefaultMovieAttrs(), n.Attrs)
	})

	t.Run("given attrs are kept", func(t *testing.T) {
		n, err := svc.AddNode(ctx, map[string]any{"name": "Heat"})
		require.NoError(t, err)
		assert.Equal(t, "1", n.ID)
		assert.Equal(t, "Heat", n.AttrString(domain.AttrName))
	})

	assert.Equal(t, []EventType{EventNodeCreated, EventNodeCreated}, drain(events))
}

func TestEdgeMutations(t *testing.T) {
	ctx := context.Background()
	svc, events := newTestService(t)
	loadPath(t, svc)
	drain(events)

	tests := []struct {
		name string
		a, b string
		kind string
	}{
		{"self-loop", "1", "1", KindSelfLoop},
		{"duplicate in reverse orientation", "2", "1", KindDuplicateEdge},
		{"unknown endpoint", "1", "99", KindUnknownNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddEdge(ctx, tt.a, tt.b, nil)
			require.Error(t, err)
			assert.Equal(t, tt.kind, ErrorKind(err))
		})
	}
	assert.Empty(t, drain(events), "failed mutations publish nothing")

	e, err := svc.AddEdge(ctx, "4", "1", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.EdgeID("1", "4"), e.ID)

	require.NoError(t, svc.RemoveEdge(ctx, "1", "4"))
	err = svc.RemoveEdge(ctx, "1", "4")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	assert.Equal(t, []EventType{EventEdgeCreated, EventEdgeDeleted}, drain(events))
}

func TestRemoveNodeCascades(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	loadPath(t, svc)

	require.NoError(t, svc.RemoveNode(ctx, "2"))
	assert.Len(t, svc.ListEdges(ctx), 1)

	d, err := svc.Degree(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	_, err = svc.GetNode(ctx, "2")
	assert.Equal(t, KindUnknownNode, ErrorKind(err))
	assert.Equal(t, KindNotFound, ErrorKind(svc.RemoveNode(ctx, "2")))
}

func TestListNodes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	loadPath(t, svc)

	ids := func(nodes []domain.Node) []string {
		out := make([]string, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, n.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(svc.ListNodes(ctx, "", "")))
	assert.Equal(t, []string{"1", "2"}, ids(svc.ListNodes(ctx, "", "ALIEN")))
	assert.Equal(t, []string{"2", "4"}, ids(svc.ListNodes(ctx, "genre", "act")))
	assert.Empty(t, svc.ListNodes(ctx, "missing", "x"))
}

func TestGetGraphViews(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	loadPath(t, svc)
	_, err := svc.AddNode(ctx, map[string]any{"name": "Island"})
	require.NoError(t, err)

	full, err := svc.GetGraph(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 5, full.NodeCount())

	largest, err := svc.GetGraph(ctx, ViewLargest)
	require.NoError(t, err)
	assert.Equal(t, 4, largest.NodeCount())
	assert.Equal(t, 3, largest.EdgeCount())

	_, err = svc.GetGraph(ctx, "sideways")
	assert.True(t, errors.Is(err, ErrInvalidView))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, WithMetrics(metrics.New()))

	empty := svc.Stats(ctx)
	assert.Nil(t, empty.Diameter)
	assert.Contains(t, empty.Undefined, "diameter")

	loadPath(t, svc)
	r := svc.Stats(ctx)
	require.NotNil(t, r.Density)
	assert.InDelta(t, 0.5, *r.Density, 1e-9)
	require.NotNil(t, r.Diameter)
	assert.Equal(t, 3, *r.Diameter)
	require.NotNil(t, r.AveragePathLength)
	assert.InDelta(t, 20.0/12.0, *r.AveragePathLength, 1e-9)

	svc2, _ := newTestService(t)
	_, err := svc2.Largest(ctx)
	assert.True(t, errors.Is(err, analytics.ErrEmptyGraph))
}

func TestImportExport(t *testing.T) {
	ctx := context.Background()
	svc, events := newTestService(t)

	t.Run("rejections are reported not fatal", func(t *testing.T) {
		body := `{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"source":"a","target":"a"},{"source":"a","target":"b"},{"source":"b","target":"a"}]}`
		report, err := svc.Import(ctx, "json", "upload", strings.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, 2, report.NodesAdded)
		assert.Equal(t, 1, report.EdgesAdded)
		assert.Equal(t, 2, report.RejectedCount())
		assert.Equal(t, "upload", svc.Source())
	})

	t.Run("bad body is invalid input", func(t *testing.T) {
		_, err := svc.Import(ctx, "json", "upload", strings.NewReader("{"))
		assert.Equal(t, KindBadRequest, ErrorKind(err))
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := svc.Import(ctx, "csv", "upload", strings.NewReader(""))
		assert.True(t, errors.Is(err, codec.ErrUnsupportedFormat))
	})

	t.Run("yaml export reloads to the same graph", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.Export(ctx, "yaml", &buf))

		other, _ := newTestService(t)
		report, err := other.Import(ctx, "yaml", "copy", &buf)
		require.NoError(t, err)
		assert.Equal(t, 2, report.NodesAdded)
		assert.Equal(t, 1, report.EdgesAdded)
	})

	assert.Contains(t, drain(events), EventGraphReplaced)
}

func TestDatasets(t *testing.T) {
	ctx := context.Background()

	t.Run("without repository", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.ListDatasets(ctx)
		assert.True(t, errors.Is(err, ErrNoRepository))
		_, err = svc.LoadDataset(ctx, "movies")
		assert.Equal(t, KindUnavailable, ErrorKind(err))
	})

	t.Run("load from archive", func(t *testing.T) {
		repo, err := sqlite.New(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })

		fragment := domain.NewGraphFragment()
		fragment.AddNode(*domain.NewNode("x", map[string]any{"name": "Heat"}))
		fragment.AddNode(*domain.NewNode("y", nil))
		fragment.AddEdge(*domain.NewEdge("x", "y", nil))
		require.NoError(t, repo.SaveDataset(ctx, "movies", "movies.json", fragment))

		svc, _ := newTestService(t, WithRepository(repo))
		infos, err := svc.ListDatasets(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, "movies", infos[0].Name)

		report, err := svc.LoadDataset(ctx, "movies")
		require.NoError(t, err)
		assert.Equal(t, 2, report.NodesAdded)
		assert.Equal(t, 1, report.EdgesAdded)
		assert.Equal(t, "dataset:movies", svc.Source())

		_, err = svc.LoadDataset(ctx, "missing")
		assert.True(t, errors.Is(err, repository.ErrDatasetNotFound))
	})
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("wrap: %w", store.ErrUnknownNode), KindUnknownNode},
		{mutation.ErrSelfLoopRejected, KindSelfLoop},
		{mutation.ErrEdgeExists, KindDuplicateEdge},
		{mutation.ErrDragInProgress, KindDragInProgress},
		{analytics.ErrDensityUndefined, KindDensityUndefined},
		{ErrInvalidTarget, KindBadRequest},
		{errors.New("disk on fire"), KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err), "%v", tt.err)
	}
}

func TestEventBusSkipsFullSubscribers(t *testing.T) {
	bus := NewEventBus()
	full := make(chan Event)
	open := make(chan Event, 1)
	bus.Subscribe(full)
	bus.Subscribe(open)

	bus.Publish(Event{Type: EventNodeCreated})

	select {
	case e := <-open:
		assert.Equal(t, EventNodeCreated, e.Type)
	default:
		t.Fatal("buffered subscriber missed the event")
	}
}
