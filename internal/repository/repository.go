package repository

import (
	"context"
	"errors"

	"reelgraph/internal/domain"
)

// ErrDatasetNotFound is returned when no dataset has the requested name
var ErrDatasetNotFound = errors.New("repository: dataset not found")

// DatasetRepository defines the interface for dataset archive access
type DatasetRepository interface {
	// Read operations
	GetDataset(ctx context.Context, name string) (*domain.GraphFragment, error)
	ListDatasets(ctx context.Context) ([]domain.DatasetInfo, error)

	// Write operations
	SaveDataset(ctx context.Context, name, source string, fragment *domain.GraphFragment) error
	DeleteDataset(ctx context.Context, name string) error

	// Close releases resources
	Close() error
}
