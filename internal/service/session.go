package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"reelgraph/internal/domain"
	"reelgraph/internal/mutation"
)

// Hover delete targets
const (
	TargetNode = "node"
	TargetEdge = "edge"
)

// liveGraph points an engine at whichever store the service currently
// holds. Engines only call it while the session holds the service lock.
type liveGraph struct {
	svc *GraphService
}

func (g liveGraph) AddNode(attrs map[string]any) string {
	return g.svc.store.AddNode(attrs)
}

func (g liveGraph) AddEdge(a, b string, attrs map[string]any) (string, error) {
	return g.svc.store.AddEdge(a, b, attrs)
}

func (g liveGraph) RemoveNode(id string) error {
	return g.svc.store.RemoveNode(id)
}

func (g liveGraph) RemoveEdge(a, b string) error {
	return g.svc.store.RemoveEdge(a, b)
}

func (g liveGraph) HasNode(id string) bool {
	return g.svc.store.HasNode(id)
}

// Session is one client's gesture state over the shared graph
type Session struct {
	ID string

	svc        *GraphService
	engine     *mutation.Engine
	generation uint64
}

// DeleteResult describes what a hover delete removed
type DeleteResult struct {
	Target     string `json:"target"`
	Deleted    bool   `json:"deleted"`
	NodeID     string `json:"node_id,omitempty"`
	EdgeSource string `json:"edge_source,omitempty"`
	EdgeTarget string `json:"edge_target,omitempty"`
}

// NewSession creates an Idle session with a fresh id
func (s *GraphService) NewSession() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Session{
		ID:         uuid.NewString(),
		svc:        s,
		engine:     mutation.New(liveGraph{svc: s}),
		generation: s.generation,
	}
}

// sync drops gesture state that refers to a replaced graph. Callers hold
// the service lock.
func (ss *Session) sync() {
	if ss.generation == ss.svc.generation {
		return
	}
	ss.engine.CancelDrag()
	ss.engine.ClearHover()
	ss.generation = ss.svc.generation
}

// State returns the drag state
func (ss *Session) State() mutation.State {
	ss.svc.mu.RLock()
	defer ss.svc.mu.RUnlock()
	ss.sync()
	return ss.engine.State()
}

// Hovered returns the hover target
func (ss *Session) Hovered() mutation.Hover {
	ss.svc.mu.RLock()
	defer ss.svc.mu.RUnlock()
	ss.sync()
	return ss.engine.Hovered()
}

// StartDrag begins an edge drag anchored on node
func (ss *Session) StartDrag(ctx context.Context, node string) error {
	ss.svc.mu.RLock()
	defer ss.svc.mu.RUnlock()
	ss.sync()
	if err := ss.engine.StartEdgeDrag(node); err != nil {
		return fmt.Errorf("failed to start drag: %w", err)
	}
	ss.svc.log(ctx).Debug("Drag started", "session", ss.ID, "source", node)
	return nil
}

// DragHover records the node under the pointer, or none for ""
func (ss *Session) DragHover(node string) {
	ss.svc.mu.RLock()
	defer ss.svc.mu.RUnlock()
	ss.sync()
	ss.engine.UpdateDragHover(node)
}

// CancelDrag abandons the drag in progress, if any
func (ss *Session) CancelDrag() {
	ss.svc.mu.RLock()
	defer ss.svc.mu.RUnlock()
	ss.sync()
	ss.engine.CancelDrag()
}

// EndDrag resolves the drag, creating an edge when it ended over another
// node not yet connected to the source
func (ss *Session) EndDrag(ctx context.Context) (result mutation.DragResult, err error) {
	ctx, span := ss.svc.startSpan(ctx, "EndDrag", attribute.String("session.id", ss.ID))
	defer func() { endSpan(span, err) }()

	svc := ss.svc
	svc.mu.Lock()
	ss.sync()
	result, err = ss.engine.EndEdgeDrag()
	if result.Target != "" {
		svc.observe("drag_end", err)
	}
	svc.mu.Unlock()

	if err != nil {
		return result, fmt.Errorf("failed to end drag: %w", err)
	}
	if result.Created {
		svc.log(ctx).Debug("Edge created by drag", "session", ss.ID, "id", result.EdgeID,
			"source", result.Source, "target", result.Target)
		svc.eventBus.Publish(Event{
			Type: EventEdgeCreated,
			Payload: map[string]string{
				"edge_id": result.EdgeID, "source": result.Source, "target": result.Target,
			},
		})
	}
	return result, nil
}

// HoverNode marks id as hovered
func (ss *Session) HoverNode(id string) {
	ss.svc.mu.RLock()
	defer ss.svc.mu.RUnlock()
	ss.sync()
	ss.engine.HoverNode(id)
}

// HoverEdge marks the edge {a,b} as hovered
func (ss *Session) HoverEdge(a, b string) {
	ss.svc.mu.RLock()
	defer ss.svc.mu.RUnlock()
	ss.sync()
	ss.engine.HoverEdge(a, b)
}

// ClearHover forgets the hover target
func (ss *Session) ClearHover() {
	ss.svc.mu.RLock()
	defer ss.svc.mu.RUnlock()
	ss.sync()
	ss.engine.ClearHover()
}

// DeleteHovered deletes the hovered node or edge. Nothing hovered is not
// an error; the result reports Deleted false.
func (ss *Session) DeleteHovered(ctx context.Context, target string) (result DeleteResult, err error) {
	if target != TargetNode && target != TargetEdge {
		return DeleteResult{}, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}

	ctx, span := ss.svc.startSpan(ctx, "DeleteHovered",
		attribute.String("session.id", ss.ID), attribute.String("delete.target", target))
	defer func() { endSpan(span, err) }()

	svc := ss.svc
	result.Target = target

	svc.mu.Lock()
	ss.sync()
	hover := ss.engine.Hovered()
	switch target {
	case TargetNode:
		result.NodeID, err = ss.engine.DeleteHoveredNode()
		result.Deleted = result.NodeID != ""
		if result.Deleted || err != nil {
			svc.observe("remove_node", err)
		}
	case TargetEdge:
		result.Deleted, err = ss.engine.DeleteHoveredEdge()
		if result.Deleted {
			result.EdgeSource, result.EdgeTarget = hover.EdgeSource, hover.EdgeTarget
		}
		if result.Deleted || err != nil {
			svc.observe("remove_edge", err)
		}
	}
	svc.mu.Unlock()

	if err != nil {
		return result, fmt.Errorf("failed to delete hovered %s: %w", target, err)
	}
	if !result.Deleted {
		return result, nil
	}

	if target == TargetNode {
		svc.log(ctx).Debug("Node deleted by hover", "session", ss.ID, "id", result.NodeID)
		svc.eventBus.Publish(Event{
			Type:    EventNodeDeleted,
			Payload: map[string]string{"node_id": result.NodeID},
		})
	} else {
		svc.log(ctx).Debug("Edge deleted by hover", "session", ss.ID,
			"source", result.EdgeSource, "target", result.EdgeTarget)
		svc.eventBus.Publish(Event{
			Type: EventEdgeDeleted,
			Payload: map[string]string{
				"edge_id": domain.EdgeID(result.EdgeSource, result.EdgeTarget),
				"source":  result.EdgeSource,
				"target":  result.EdgeTarget,
			},
		})
	}
	return result, nil
}

// AddNode creates a node with default movie attributes when attrs is nil
func (ss *Session) AddNode(ctx context.Context, attrs map[string]any) (string, error) {
	svc := ss.svc
	svc.mu.Lock()
	ss.sync()
	id, err := ss.engine.AddNode(attrs)
	svc.observe("add_node", err)
	svc.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to add node: %w", err)
	}

	svc.log(ctx).Debug("Node created", "session", ss.ID, "id", id)
	svc.eventBus.Publish(Event{
		Type:    EventNodeCreated,
		Payload: map[string]string{"node_id": id},
	})
	return id, nil
}
