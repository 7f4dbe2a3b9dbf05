package service

import (
	"errors"

	"reelgraph/internal/analytics"
	"reelgraph/internal/codec"
	"reelgraph/internal/mutation"
	"reelgraph/internal/repository"
	"reelgraph/internal/store"
)

var (
	// ErrInvalidView is returned for a graph view other than full or largest.
	ErrInvalidView = errors.New("service: invalid view")
	// ErrInvalidTarget is returned for a hover delete target other than node or edge.
	ErrInvalidTarget = errors.New("service: invalid delete target")
	// ErrInvalidInput is returned when an import body cannot be parsed.
	ErrInvalidInput = errors.New("service: invalid input")
	// ErrNoRepository is returned by dataset operations when no archive is configured.
	ErrNoRepository = errors.New("service: no dataset repository configured")
)

// Error kinds reported to clients and used as metric outcomes
const (
	KindUnknownNode      = "unknown_node"
	KindNotFound         = "not_found"
	KindSelfLoop         = "self_loop"
	KindDuplicateEdge    = "duplicate_edge"
	KindDragInProgress   = "drag_in_progress"
	KindEmptyGraph       = "empty_graph"
	KindDensityUndefined = "density_undefined"
	KindBadRequest       = "bad_request"
	KindUnavailable      = "unavailable"
	KindTooLarge         = "too_large"
	KindInternal         = "internal"
)

// ErrorKind classifies err by the sentinel it wraps
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrUnknownNode):
		return KindUnknownNode
	case errors.Is(err, store.ErrNotFound), errors.Is(err, repository.ErrDatasetNotFound):
		return KindNotFound
	case errors.Is(err, store.ErrSelfLoop):
		return KindSelfLoop
	case errors.Is(err, store.ErrDuplicateEdge):
		return KindDuplicateEdge
	case errors.Is(err, mutation.ErrDragInProgress):
		return KindDragInProgress
	case errors.Is(err, analytics.ErrEmptyGraph):
		return KindEmptyGraph
	case errors.Is(err, analytics.ErrDensityUndefined):
		return KindDensityUndefined
	case errors.Is(err, ErrInvalidView), errors.Is(err, ErrInvalidTarget), errors.Is(err, ErrInvalidInput),
		errors.Is(err, codec.ErrUnsupportedFormat), errors.Is(err, store.ErrEmptyID):
		return KindBadRequest
	case errors.Is(err, ErrNoRepository):
		return KindUnavailable
	default:
		return KindInternal
	}
}
