package mutation

import (
	"errors"
	"fmt"

	"reelgraph/internal/store"
)

// StartEdgeDrag begins a drag anchored on source
func (e *Engine) StartEdgeDrag(source string) error {
	if e.state.Phase == Dragging {
		return ErrDragInProgress
	}
	if !e.graph.HasNode(source) {
		return fmt.Errorf("%w: %s", store.ErrUnknownNode, source)
	}
	e.state = State{Phase: Dragging, Source: source}
	return nil
}

// UpdateDragHover records the node under the pointer. An empty target means
// the pointer is over no node. Ignored while Idle.
func (e *Engine) UpdateDragHover(target string) {
	if e.state.Phase != Dragging {
		return
	}
	e.state.Target = target
}

// EndEdgeDrag resolves the gesture. The engine is Idle afterwards whatever
// the outcome. Ending while Idle is a no-op.
func (e *Engine) EndEdgeDrag() (DragResult, error) {
	if e.state.Phase != Dragging {
		return DragResult{}, nil
	}

	source, target := e.state.Source, e.state.Target
	e.reset()

	if target == "" {
		return DragResult{Source: source}, nil
	}
	if target == source {
		return DragResult{Source: source, Target: target}, ErrSelfLoopRejected
	}

	id, err := e.graph.AddEdge(source, target, nil)
	switch {
	case errors.Is(err, store.ErrDuplicateEdge):
		return DragResult{Source: source, Target: target}, ErrEdgeExists
	case err != nil:
		return DragResult{Source: source, Target: target}, err
	}

	return DragResult{Created: true, EdgeID: id, Source: source, Target: target}, nil
}

// CancelDrag abandons any drag in progress
func (e *Engine) CancelDrag() {
	e.reset()
}
