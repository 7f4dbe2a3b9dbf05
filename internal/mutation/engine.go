package mutation

import (
	"errors"
	"fmt"

	"reelgraph/internal/domain"
	"reelgraph/internal/store"
)

var (
	// ErrDragInProgress is returned when an operation needs the engine Idle.
	ErrDragInProgress = errors.New("mutation: drag in progress")
	// ErrSelfLoopRejected is returned when a drag ends on its own source.
	ErrSelfLoopRejected = fmt.Errorf("mutation: self-loop rejected: %w", store.ErrSelfLoop)
	// ErrEdgeExists is returned when a drag ends on a node already connected
	// to the source.
	ErrEdgeExists = fmt.Errorf("mutation: edge exists: %w", store.ErrDuplicateEdge)
)

// Phase is the drag gesture phase
type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText renders the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is the drag gesture state. Source and Target are empty while Idle.
type State struct {
	Phase  Phase  `json:"phase"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// Hover is what the pointer currently rests on, for hover deletes
type Hover struct {
	Node       string `json:"node,omitempty"`
	EdgeSource string `json:"edge_source,omitempty"`
	EdgeTarget string `json:"edge_target,omitempty"`
}

func (h Hover) hasEdge() bool {
	return h.EdgeSource != "" && h.EdgeTarget != ""
}

// DragResult describes how a drag gesture ended
type DragResult struct {
	Created bool   `json:"created"`
	EdgeID  string `json:"edge_id,omitempty"`
	Source  string `json:"source,omitempty"`
	Target  string `json:"target,omitempty"`
}

// Graph is the store surface the engine writes through
type Graph interface {
	AddNode(attrs map[string]any) string
	AddEdge(a, b string, attrs map[string]any) (string, error)
	RemoveNode(id string) error
	RemoveEdge(a, b string) error
	HasNode(id string) bool
}

// Engine validates and applies edits for one pointer
type Engine struct {
	graph Graph
	state State
	hover Hover
}

// New creates an Idle engine writing to graph
func New(graph Graph) *Engine {
	return &Engine{graph: graph}
}

// State returns the current drag state
func (e *Engine) State() State {
	return e.state
}

// Hovered returns the current hover target
func (e *Engine) Hovered() Hover {
	return e.hover
}

// AddNode creates a node. Nil attrs get the default movie attribute set.
func (e *Engine) AddNode(attrs map[string]any) (string, error) {
	if e.state.Phase == Dragging {
		return "", ErrDragInProgress
	}
	if attrs == nil {
		attrs = domain.DefaultMovieAttrs()
	}
	return e.graph.AddNode(attrs), nil
}

// RemoveNode deletes a node and its edges. A drag anchored on the node is
// cancelled, and a hover on it or on one of its edges is cleared.
func (e *Engine) RemoveNode(id string) error {
	if err := e.graph.RemoveNode(id); err != nil {
		return err
	}
	e.forgetNode(id)
	return nil
}

// RemoveEdge deletes the edge joining a and b in either orientation
func (e *Engine) RemoveEdge(a, b string) error {
	if err := e.graph.RemoveEdge(a, b); err != nil {
		return err
	}
	if e.hover.hasEdge() && domain.NewPairKey(a, b) == domain.NewPairKey(e.hover.EdgeSource, e.hover.EdgeTarget) {
		e.hover.EdgeSource, e.hover.EdgeTarget = "", ""
	}
	return nil
}

func (e *Engine) forgetNode(id string) {
	if e.state.Source == id {
		e.reset()
	} else if e.state.Target == id {
		e.state.Target = ""
	}
	if e.hover.Node == id {
		e.hover.Node = ""
	}
	if e.hover.EdgeSource == id || e.hover.EdgeTarget == id {
		e.hover.EdgeSource, e.hover.EdgeTarget = "", ""
	}
}

func (e *Engine) reset() {
	e.state = State{Phase: Idle}
}
