// Package mutation applies structural edits to a graph store and runs the
// edge-creation drag gesture as an explicit state machine.
//
// # Drag gesture
//
// An Engine starts Idle. StartEdgeDrag moves it to Dragging with a source
// node; UpdateDragHover records the node currently under the pointer without
// changing phase. EndEdgeDrag resolves the gesture and always returns the
// engine to Idle:
//
//   - no hover target: the drag is discarded and nothing changes,
//   - hover target equals source: ErrSelfLoopRejected,
//   - the pair is already connected: ErrEdgeExists,
//   - otherwise the edge is added and its id returned.
//
// CancelDrag returns to Idle unconditionally.
//
// # Hover deletes
//
// Node and edge deletion sit outside the state machine. The presentation
// layer reports what the pointer hovers through HoverNode, HoverEdge and
// ClearHover; DeleteHoveredNode and DeleteHoveredEdge delete it, and do
// nothing when nothing is hovered.
//
// An Engine belongs to one pointer. Hosts with several clients give each its
// own Engine over a shared, externally locked store.
package mutation
