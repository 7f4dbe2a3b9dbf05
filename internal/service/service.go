package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"reelgraph/internal/analytics"
	"reelgraph/internal/codec"
	"reelgraph/internal/domain"
	"reelgraph/internal/logging"
	"reelgraph/internal/metrics"
	"reelgraph/internal/repository"
	"reelgraph/internal/store"
	"reelgraph/internal/telemetry"
)

// Graph views accepted by GetGraph
const (
	ViewFull    = "full"
	ViewLargest = "largest"
)

// GraphService provides business logic for graph operations
type GraphService struct {
	mu         sync.RWMutex
	store      *store.Store
	source     string
	generation uint64

	repo     repository.DatasetRepository
	eventBus *EventBus
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a GraphService
type Option func(*GraphService)

// WithRepository enables dataset operations backed by repo
func WithRepository(repo repository.DatasetRepository) Option {
	return func(s *GraphService) { s.repo = repo }
}

// WithMetrics records mutations and analytics timings on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *GraphService) { s.metrics = m }
}

// WithLogger sets the logger used when the request context carries none
func WithLogger(logger *slog.Logger) Option {
	return func(s *GraphService) { s.logger = logger }
}

// NewGraphService creates a new graph service over an empty store
func NewGraphService(eventBus *EventBus, opts ...Option) *GraphService {
	s := &GraphService{
		store:    store.New(),
		eventBus: eventBus,
		logger:   slog.Default(),
		tracer:   telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.eventBus == nil {
		s.eventBus = NewEventBus()
	}
	return s
}

func (s *GraphService) log(ctx context.Context) *slog.Logger {
	if l := logging.FromContext(ctx); l != slog.Default() {
		return l
	}
	return s.logger
}

func (s *GraphService) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "GraphService."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrorKind(err))
	}
	span.End()
}

// observe records a mutation outcome. Callers hold the write lock.
func (s *GraphService) observe(op string, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = ErrorKind(err)
	}
	s.metrics.ObserveMutation(op, outcome)
	s.metrics.SetGraphSize(s.store.NodeCount(), s.store.EdgeCount())
}

// Source returns where the current graph was loaded from
func (s *GraphService) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// GetGraph returns a snapshot of the whole graph, or of its largest
// connected component when view is ViewLargest
func (s *GraphService) GetGraph(ctx context.Context, view string) (*domain.Graph, error) {
	switch view {
	case "", ViewFull:
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.store.Snapshot(), nil
	case ViewLargest:
		return s.Largest(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidView, view)
	}
}

// ListNodes returns all nodes, optionally filtered by a case-insensitive
// substring match of q against attribute attr. An empty attr searches name.
func (s *GraphService) ListNodes(ctx context.Context, attr, q string) []domain.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]domain.Node, 0, s.store.NodeCount())
	if q == "" {
		for n := range s.store.Nodes() {
			nodes = append(nodes, n)
		}
		return nodes
	}

	if attr == "" {
		attr = domain.AttrName
	}
	needle := strings.ToLower(q)
	for n := range s.store.Nodes() {
		v, ok := n.Attr(attr)
		if !ok || v == nil {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// GetNode retrieves a single node by ID
func (s *GraphService) GetNode(ctx context.Context, id string) (domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.store.Node(id)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", store.ErrUnknownNode, id)
	}
	return n, nil
}

// ListEdges returns all edges in insertion order
func (s *GraphService) ListEdges(ctx context.Context) []domain.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edges := make([]domain.Edge, 0, s.store.EdgeCount())
	for e := range s.store.Edges() {
		edges = append(edges, e)
	}
	return edges
}

// ResolvedEdges returns every edge with its endpoints resolved to nodes
func (s *GraphService) ResolvedEdges(ctx context.Context) ([]domain.EdgeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]domain.EdgeView, 0, s.store.EdgeCount())
	for e := range s.store.Edges() {
		v, err := domain.ResolveEdge(e, s.store.Node)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve edge: %w", err)
		}
		views = append(views, v)
	}
	return views, nil
}

// Degree returns the number of edges incident to id
func (s *GraphService) Degree(ctx context.Context, id string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Degree(id)
}

// AddNode creates a node. Nil attrs get the default movie attribute set.
func (s *GraphService) AddNode(ctx context.Context, attrs map[string]any) (domain.Node, error) {
	ctx, span := s.startSpan(ctx, "AddNode")
	defer endSpan(span, nil)

	if attrs == nil {
		attrs = domain.DefaultMovieAttrs()
	}

	s.mu.Lock()
	id := s.store.AddNode(attrs)
	node, _ := s.store.Node(id)
	s.observe("add_node", nil)
	s.mu.Unlock()

	span.SetAttributes(attribute.String("node.id", id))
	s.log(ctx).Debug("Node created", "id", id)
	s.eventBus.Publish(Event{
		Type:    EventNodeCreated,
		Payload: map[string]string{"node_id": id},
	})
	return node, nil
}

// RemoveNode removes a node and its edges
func (s *GraphService) RemoveNode(ctx context.Context, id string) (err error) {
	ctx, span := s.startSpan(ctx, "RemoveNode", attribute.String("node.id", id))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	err = s.store.RemoveNode(id)
	s.observe("remove_node", err)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to remove node %s: %w", id, err)
	}

	s.log(ctx).Debug("Node deleted", "id", id)
	s.eventBus.Publish(Event{
		Type:    EventNodeDeleted,
		Payload: map[string]string{"node_id": id},
	})
	return nil
}

// AddEdge creates an edge between a and b
func (s *GraphService) AddEdge(ctx context.Context, a, b string, attrs map[string]any) (edge domain.Edge, err error) {
	ctx, span := s.startSpan(ctx, "AddEdge",
		attribute.String("edge.source", a), attribute.String("edge.target", b))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	_, err = s.store.AddEdge(a, b, attrs)
	if err == nil {
		edge, _ = s.store.Edge(a, b)
	}
	s.observe("add_edge", err)
	s.mu.Unlock()
	if err != nil {
		return domain.Edge{}, fmt.Errorf("failed to add edge %s-%s: %w", a, b, err)
	}

	s.log(ctx).Debug("Edge created", "id", edge.ID, "source", a, "target", b)
	s.eventBus.Publish(Event{
		Type:    EventEdgeCreated,
		Payload: map[string]string{"edge_id": edge.ID, "source": a, "target": b},
	})
	return edge, nil
}

// RemoveEdge removes the edge between a and b in either orientation
func (s *GraphService) RemoveEdge(ctx context.Context, a, b string) (err error) {
	ctx, span := s.startSpan(ctx, "RemoveEdge",
		attribute.String("edge.source", a), attribute.String("edge.target", b))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	err = s.store.RemoveEdge(a, b)
	s.observe("remove_edge", err)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to remove edge %s-%s: %w", a, b, err)
	}

	s.log(ctx).Debug("Edge deleted", "source", a, "target", b)
	s.eventBus.Publish(Event{
		Type:    EventEdgeDeleted,
		Payload: map[string]string{"edge_id": domain.EdgeID(a, b), "source": a, "target": b},
	})
	return nil
}

// Stats computes every analytics metric over the current graph
func (s *GraphService) Stats(ctx context.Context) analytics.Report {
	_, span := s.startSpan(ctx, "Stats")
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	report := analytics.Summarize(s.store)
	s.metrics.ObserveAnalytics("summary", time.Since(start))

	span.SetAttributes(
		attribute.Int("graph.nodes", report.Nodes),
		attribute.Int("graph.edges", report.Edges),
		attribute.Int("graph.components", report.Components),
	)
	return report
}

// Largest returns a detached copy of the largest connected component
func (s *GraphService) Largest(ctx context.Context) (g *domain.Graph, err error) {
	_, span := s.startSpan(ctx, "Largest")
	defer func() { endSpan(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	g, err = analytics.LargestConnectedComponent(s.store)
	s.metrics.ObserveAnalytics("largest_component", time.Since(start))
	return g, err
}

// Replace swaps the graph for one built from fragment. Invalid items are
// skipped and listed in the report. Open sessions are reset.
func (s *GraphService) Replace(ctx context.Context, source string, fragment *domain.GraphFragment) store.LoadReport {
	ctx, span := s.startSpan(ctx, "Replace", attribute.String("graph.source", source))
	defer span.End()

	next, report := store.FromFragment(fragment)

	s.mu.Lock()
	s.store = next
	s.source = source
	s.generation++
	s.metrics.ObserveRejections("node", countRejections(report, "node"))
	s.metrics.ObserveRejections("edge", countRejections(report, "edge"))
	s.metrics.SetGraphSize(next.NodeCount(), next.EdgeCount())
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int("load.nodes", report.NodesAdded),
		attribute.Int("load.edges", report.EdgesAdded),
		attribute.Int("load.rejected", report.RejectedCount()),
	)

	logger := s.log(ctx)
	logger.Info("Graph replaced", "source", source, "nodes", report.NodesAdded,
		"edges", report.EdgesAdded, "rejected", report.RejectedCount())
	for _, r := range report.Rejected {
		logger.Debug("Load rejected item", "kind", r.Kind, "index", r.Index, "reason", r.Reason)
	}

	s.eventBus.Publish(Event{
		Type:    EventGraphReplaced,
		Payload: map[string]any{"source": source, "report": report},
	})
	return report
}

func countRejections(report store.LoadReport, kind string) int {
	n := 0
	for _, r := range report.Rejected {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

// Import parses r in the named format and replaces the graph with it
func (s *GraphService) Import(ctx context.Context, format, source string, r io.Reader) (store.LoadReport, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return store.LoadReport{}, err
	}
	fragment, err := c.Parse(r)
	if err != nil {
		return store.LoadReport{}, fmt.Errorf("%w: failed to parse %s: %w", ErrInvalidInput, c.Format(), err)
	}
	return s.Replace(ctx, source, fragment), nil
}

// Export writes the graph to w in the named format
func (s *GraphService) Export(ctx context.Context, format string, w io.Writer) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}

	s.mu.RLock()
	fragment := s.store.Snapshot().Fragment()
	s.mu.RUnlock()

	if err := c.Export(fragment, w); err != nil {
		return fmt.Errorf("failed to export %s: %w", c.Format(), err)
	}
	return nil
}

// ListDatasets returns the archived datasets
func (s *GraphService) ListDatasets(ctx context.Context) ([]domain.DatasetInfo, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.ListDatasets(ctx)
}

// LoadDataset replaces the graph with an archived dataset
func (s *GraphService) LoadDataset(ctx context.Context, name string) (store.LoadReport, error) {
	if s.repo == nil {
		return store.LoadReport{}, ErrNoRepository
	}
	fragment, err := s.repo.GetDataset(ctx, name)
	if err != nil {
		return store.LoadReport{}, fmt.Errorf("failed to load dataset %s: %w", name, err)
	}
	return s.Replace(ctx, "dataset:"+name, fragment), nil
}
