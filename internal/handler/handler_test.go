package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelgraph/internal/analytics"
	"reelgraph/internal/domain"
	"reelgraph/internal/logging"
	"reelgraph/internal/metrics"
	"reelgraph/internal/service"
	"reelgraph/internal/store"
)

const moviesJSON = `{
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

type testServer struct {
	svc *service.GraphService
	mux http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	m := metrics.New()
	svc := service.NewGraphService(service.NewEventBus(),
		service.WithLogger(logging.Discard()), service.WithMetrics(m))
	mux := Routes(NewGraphHandler(svc), NewGestureHandler(svc, m, logging.Discard()), nil, m.Handler(), "")
	return &testServer{
		svc: svc,
		mux: Chain(mux, Recover, CORS, Logger(logging.Discard())),
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) load(t *testing.T) {
	t.Helper()
	rec := ts.do(t, "POST", "/api/import/json", moviesJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestImport(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "POST", "/api/import/json", moviesJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[store.LoadReport](t, rec)
	assert.Equal(t, 4, report.NodesAdded)
	assert.Equal(t, 3, report.EdgesAdded)
	assert.Empty(t, report.Rejected)

	rec = ts.do(t, "POST", "/api/import/json", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.KindBadRequest, decode[ErrorResponse](t, rec).Error)

	rec = ts.do(t, "POST", "/api/import/csv", "a,b")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportBodyTooLarge(t *testing.T) {
	svc := service.NewGraphService(service.NewEventBus(), service.WithLogger(logging.Discard()))
	h := NewGraphHandler(svc)
	h.importLimit = 32

	req := httptest.NewRequest("POST", "/api/import/json", strings.NewReader(moviesJSON))
	req.SetPathValue("format", "json")
	rec := httptest.NewRecorder()
	h.Import(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, service.KindTooLarge, decode[ErrorResponse](t, rec).Error)
	assert.Zero(t, svc.Stats(req.Context()).Nodes, "graph is left unchanged")
}

func TestGraphEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.load(t)
	ts.do(t, "POST", "/api/nodes", `{"name":"Solo"}`)

	t.Run("full graph", func(t *testing.T) {
		rec := ts.do(t, "GET", "/api/graph", "")
		require.Equal(t, http.StatusOK, rec.Code)
		g := decode[struct {
			Nodes []map[string]any `json:"nodes"`
			Edges []map[string]any `json:"edges"`
		}](t, rec)
		assert.Len(t, g.Nodes, 5)
		assert.Len(t, g.Edges, 3)
	})

	t.Run("largest view", func(t *testing.T) {
		rec := ts.do(t, "GET", "/api/graph?view=largest", "")
		require.Equal(t, http.StatusOK, rec.Code)
		g := decode[struct {
			Nodes []map[string]any `json:"nodes"`
		}](t, rec)
		assert.Len(t, g.Nodes, 4)

		rec = ts.do(t, "GET", "/api/largest", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown view", func(t *testing.T) {
		rec := ts.do(t, "GET", "/api/graph?view=upside", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("stats", func(t *testing.T) {
		rec := ts.do(t, "GET", "/api/stats", "")
		require.Equal(t, http.StatusOK, rec.Code)
		r := decode[analytics.Report](t, rec)
		assert.Equal(t, 5, r.Nodes)
		assert.Equal(t, 2, r.Components)
		require.NotNil(t, r.Diameter)
		assert.Equal(t, 3, *r.Diameter)
	})
}

func TestNodeEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.load(t)

	rec := ts.do(t, "POST", "/api/nodes", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "5", created["id"], "id 4 is taken so the next free one is used")
	assert.Contains(t, created, domain.AttrDirectorName)

	rec = ts.do(t, "GET", "/api/nodes?attr=genre&q=ACTION", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = ts.do(t, "GET", "/api/nodes/2/degree", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DegreeResponse{ID: "2", Degree: 2}, decode[DegreeResponse](t, rec))

	rec = ts.do(t, "GET", "/api/nodes/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.KindUnknownNode, decode[ErrorResponse](t, rec).Error)

	rec = ts.do(t, "DELETE", "/api/nodes/2", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, "DELETE", "/api/nodes/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, "GET", "/api/edges", "")
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}

func TestEdgeEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.load(t)

	tests := []struct {
		name string
		body string
		code int
		kind string
	}{
		{"creates edge", `{"source":"1","target":"4"}`, http.StatusCreated, ""},
		{"reverse duplicate", `{"source":"4","target":"1"}`, http.StatusConflict, service.KindDuplicateEdge},
		{"self-loop", `{"source":"3","target":"3"}`, http.StatusConflict, service.KindSelfLoop},
		{"unknown endpoint", `{"source":"3","target":"42"}`, http.StatusNotFound, service.KindUnknownNode},
		{"missing target", `{"source":"3"}`, http.StatusBadRequest, service.KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, "POST", "/api/edges", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.kind != "" {
				assert.Equal(t, tt.kind, decode[ErrorResponse](t, rec).Error)
			}
		})
	}

	rec := ts.do(t, "GET", "/api/edges?resolve=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	views := decode[[]map[string]any](t, rec)
	require.Len(t, views, 4)
	source, ok := views[0]["source"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alien", source["name"])

	rec = ts.do(t, "DELETE", "/api/edges?source=4&target=1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, "DELETE", "/api/edges?source=4&target=1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, "DELETE", "/api/edges?source=4", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmptyGraphAnalytics(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "GET", "/api/largest", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, service.KindEmptyGraph, decode[ErrorResponse](t, rec).Error)

	rec = ts.do(t, "GET", "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	r := decode[analytics.Report](t, rec)
	assert.Nil(t, r.Density)
	assert.Contains(t, r.Undefined, "density")
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	ts.load(t)

	rec := ts.do(t, "GET", "/api/export/yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Ronin")

	rec = ts.do(t, "GET", "/api/export/json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=graph.json", rec.Header().Get("Content-Disposition"))

	rec = ts.do(t, "GET", "/api/export/xml", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	t.Run("format is case-insensitive", func(t *testing.T) {
		rec := ts.do(t, "GET", "/api/export/JSON", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=graph.json", rec.Header().Get("Content-Disposition"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "{"))
	})
}

func TestDatasetsWithoutArchive(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, "GET", "/api/datasets", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMiddleware(t *testing.T) {
	t.Run("recover turns panic into 500", func(t *testing.T) {
		h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}), Recover)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.do(t, "OPTIONS", "/api/graph", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("chain order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mw("a"), mw("b"))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, []string{"a", "b"}, order)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.load(t)
	rec := ts.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reelgraph_nodes 4")
}
