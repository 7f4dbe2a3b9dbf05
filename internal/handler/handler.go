package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"reelgraph/internal/logging"
	"reelgraph/internal/service"
)

// maxImportBytes bounds an import request body
const maxImportBytes = 64 << 20

// GraphHandler handles graph API requests
type GraphHandler struct {
	svc         *service.GraphService
	importLimit int64
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(svc *service.GraphService) *GraphHandler {
	return &GraphHandler{svc: svc, importLimit: maxImportBytes}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CreateEdgeRequest is the body of POST /api/edges
type CreateEdgeRequest struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Attrs  map[string]any `json:"attrs,omitempty"`
}

// DegreeResponse is the body of GET /api/nodes/{id}/degree
type DegreeResponse struct {
	ID     string `json:"id"`
	Degree int    `json:"degree"`
}

// GetGraph returns the graph, or its largest component with ?view=largest
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.svc.GetGraph(r.Context(), r.URL.Query().Get("view"))
	if err != nil {
		h.fail(w, r, "Failed to get graph", err)
		return
	}
	writeJSON(r, w, graph, http.StatusOK)
}

// ListNodes returns all nodes, filtered by ?attr=&q= when given
func (h *GraphHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(r, w, h.svc.ListNodes(r.Context(), q.Get("attr"), q.Get("q")), http.StatusOK)
}

// GetNode returns a single node
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "Failed to get node", err)
		return
	}
	writeJSON(r, w, node, http.StatusOK)
}

// CreateNode creates a node. An empty body creates one with the default
// movie attributes.
func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var attrs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil && !errors.Is(err, io.EOF) {
		writeError(r, w, service.KindBadRequest, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	node, err := h.svc.AddNode(r.Context(), attrs)
	if err != nil {
		h.fail(w, r, "Failed to create node", err)
		return
	}
	writeJSON(r, w, node, http.StatusCreated)
}

// DeleteNode deletes a node and its edges
func (h *GraphHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveNode(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, r, "Failed to delete node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDegree returns the degree of a node
func (h *GraphHandler) GetDegree(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	d, err := h.svc.Degree(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get degree", err)
		return
	}
	writeJSON(r, w, DegreeResponse{ID: id, Degree: d}, http.StatusOK)
}

// ListEdges returns all edges. With ?resolve=true each edge carries its
// endpoint nodes.
func (h *GraphHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("resolve") != "true" {
		writeJSON(r, w, h.svc.ListEdges(r.Context()), http.StatusOK)
		return
	}
	views, err := h.svc.ResolvedEdges(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to resolve edges", err)
		return
	}
	writeJSON(r, w, views, http.StatusOK)
}

// CreateEdge creates an edge
func (h *GraphHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r, w, service.KindBadRequest, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Source == "" || req.Target == "" {
		writeError(r, w, service.KindBadRequest, "source and target are required", http.StatusBadRequest)
		return
	}

	edge, err := h.svc.AddEdge(r.Context(), req.Source, req.Target, req.Attrs)
	if err != nil {
		h.fail(w, r, "Failed to create edge", err)
		return
	}
	writeJSON(r, w, edge, http.StatusCreated)
}

// DeleteEdge deletes the edge given by ?source=&target= in either orientation
func (h *GraphHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	source, target := q.Get("source"), q.Get("target")
	if source == "" || target == "" {
		writeError(r, w, service.KindBadRequest, "source and target are required", http.StatusBadRequest)
		return
	}
	if err := h.svc.RemoveEdge(r.Context(), source, target); err != nil {
		h.fail(w, r, "Failed to delete edge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStats returns every analytics metric
func (h *GraphHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(r, w, h.svc.Stats(r.Context()), http.StatusOK)
}

// GetLargest returns the largest connected component
func (h *GraphHandler) GetLargest(w http.ResponseWriter, r *http.Request) {
	graph, err := h.svc.Largest(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to get largest component", err)
		return
	}
	writeJSON(r, w, graph, http.StatusOK)
}

// Import replaces the graph with the request body in the {format} of the path
func (h *GraphHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.importLimit)
	report, err := h.svc.Import(r.Context(), r.PathValue("format"), "upload", body)
	if err != nil {
		h.fail(w, r, "Failed to import", err)
		return
	}
	writeJSON(r, w, report, http.StatusOK)
}

// Export downloads the graph in the {format} of the path
func (h *GraphHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.PathValue("format"))

	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), format, &buf); err != nil {
		h.fail(w, r, "Failed to export", err)
		return
	}

	contentType, ext := "application/json", "json"
	if format != "json" {
		contentType, ext = "application/x-yaml", "yml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=graph."+ext)
	if _, err := buf.WriteTo(w); err != nil {
		logger(r).Warn("Failed to write export", "error", err)
	}
}

// ListDatasets lists the archived datasets
func (h *GraphHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	infos, err := h.svc.ListDatasets(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list datasets", err)
		return
	}
	writeJSON(r, w, infos, http.StatusOK)
}

// LoadDataset replaces the graph with an archived dataset
func (h *GraphHandler) LoadDataset(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.LoadDataset(r.Context(), r.PathValue("name"))
	if err != nil {
		h.fail(w, r, "Failed to load dataset", err)
		return
	}
	writeJSON(r, w, report, http.StatusOK)
}

// Helper methods

// fail writes err with the status its kind maps to. Server-side failures
// are logged.
func (h *GraphHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	kind := service.ErrorKind(err)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		kind = service.KindTooLarge
	}
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		logger(r).Error(msg, "error", err)
	}
	writeError(r, w, kind, err.Error(), status)
}

func statusFor(kind string) int {
	switch kind {
	case service.KindUnknownNode, service.KindNotFound:
		return http.StatusNotFound
	case service.KindSelfLoop, service.KindDuplicateEdge, service.KindDragInProgress:
		return http.StatusConflict
	case service.KindEmptyGraph, service.KindDensityUndefined:
		return http.StatusUnprocessableEntity
	case service.KindBadRequest:
		return http.StatusBadRequest
	case service.KindUnavailable:
		return http.StatusServiceUnavailable
	case service.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(r *http.Request, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(r).Error("Failed to encode JSON", "error", err)
	}
}

func writeError(r *http.Request, w http.ResponseWriter, kind, details string, statusCode int) {
	writeJSON(r, w, ErrorResponse{Error: kind, Details: details}, statusCode)
}

func logger(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context())
}
