package mutation

// HoverNode marks id as the hovered node and clears any hovered edge
func (e *Engine) HoverNode(id string) {
	e.hover = Hover{Node: id}
}

// HoverEdge marks the edge {a,b} as hovered and clears any hovered node
func (e *Engine) HoverEdge(a, b string) {
	e.hover = Hover{EdgeSource: a, EdgeTarget: b}
}

// ClearHover forgets the hover target
func (e *Engine) ClearHover() {
	e.hover = Hover{}
}

// DeleteHoveredNode deletes the hovered node. It returns the deleted id, or
// "" when no node was hovered.
func (e *Engine) DeleteHoveredNode() (string, error) {
	id := e.hover.Node
	if id == "" {
		return "", nil
	}
	if err := e.RemoveNode(id); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteHoveredEdge deletes the hovered edge. It reports whether an edge was
// deleted.
func (e *Engine) DeleteHoveredEdge() (bool, error) {
	if !e.hover.hasEdge() {
		return false, nil
	}
	if err := e.RemoveEdge(e.hover.EdgeSource, e.hover.EdgeTarget); err != nil {
		return false, err
	}
	return true, nil
}
