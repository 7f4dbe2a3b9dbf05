package handler

import "net/http"

// Routes registers the API, gesture, event and metrics endpoints on a new
// mux. events and metrics may be nil to leave those paths unrouted.
func Routes(graph *GraphHandler, gestures *GestureHandler, events, metrics http.Handler, metricsPath string) *http.ServeMux {
	mux := http.NewServeMux()

	// Graph
	mux.HandleFunc("GET /api/graph", graph.GetGraph)
	mux.HandleFunc("GET /api/stats", graph.GetStats)
	mux.HandleFunc("GET /api/largest", graph.GetLargest)

	// Nodes
	mux.HandleFunc("GET /api/nodes", graph.ListNodes)
	mux.HandleFunc("POST /api/nodes", graph.CreateNode)
	mux.HandleFunc("GET /api/nodes/{id}", graph.GetNode)
	mux.HandleFunc("DELETE /api/nodes/{id}", graph.DeleteNode)
	mux.HandleFunc("GET /api/nodes/{id}/degree", graph.GetDegree)

	// Edges
	mux.HandleFunc("GET /api/edges", graph.ListEdges)
	mux.HandleFunc("POST /api/edges", graph.CreateEdge)
	mux.HandleFunc("DELETE /api/edges", graph.DeleteEdge)

	// Import/export
	mux.HandleFunc("POST /api/import/{format}", graph.Import)
	mux.HandleFunc("GET /api/export/{format}", graph.Export)

	// Dataset archive
	mux.HandleFunc("GET /api/datasets", graph.ListDatasets)
	mux.HandleFunc("POST /api/datasets/{name}/load", graph.LoadDataset)

	if gestures != nil {
		mux.Handle("GET /ws", gestures)
	}
	if events != nil {
		mux.Handle("GET /events", events)
	}
	if metrics != nil {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		mux.Handle("GET "+metricsPath, metrics)
	}
	return mux
}
