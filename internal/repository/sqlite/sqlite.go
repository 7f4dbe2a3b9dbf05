package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"reelgraph/internal/domain"
	"reelgraph/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.DatasetRepository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.DatasetRepository = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		name TEXT PRIMARY KEY,
		source TEXT,
		node_count INTEGER NOT NULL DEFAULT 0,
		edge_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dataset_nodes (
		dataset TEXT NOT NULL,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		attrs JSON,
		PRIMARY KEY (dataset, seq),
		FOREIGN KEY (dataset) REFERENCES datasets(name) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS dataset_edges (
		dataset TEXT NOT NULL,
		seq INTEGER NOT NULL,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		attrs JSON,
		PRIMARY KEY (dataset, seq),
		FOREIGN KEY (dataset) REFERENCES datasets(name) ON DELETE CASCADE
	);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveDataset stores a fragment under name, replacing any dataset already
// stored there. Node and edge order is preserved.
func (r *Repository) SaveDataset(ctx context.Context, name, source string, fragment *domain.GraphFragment) error {
	if name == "" {
		return fmt.Errorf("dataset name is required")
	}
	if fragment == nil {
		fragment = domain.NewGraphFragment()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := r.now().Unix()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO datasets (name, source, node_count, edge_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source = excluded.source,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			updated_at = excluded.updated_at
	`, name, stringToNull(source), len(fragment.Nodes), len(fragment.Edges), now, now); err != nil {
		return fmt.Errorf("failed to upsert dataset %s: %w", name, err)
	}

	// Clear previous contents
	if _, err := tx.ExecContext(ctx, `DELETE FROM dataset_edges WHERE dataset = ?`, name); err != nil {
		return fmt.Errorf("failed to clear dataset_edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dataset_nodes WHERE dataset = ?`, name); err != nil {
		return fmt.Errorf("failed to clear dataset_nodes: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dataset_nodes (dataset, seq, id, attrs) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare node statement: %w", err)
	}
	defer nodeStmt.Close()

	for i, node := range fragment.Nodes {
		attrs, err := marshalToNull(node.Attrs)
		if err != nil {
			return fmt.Errorf("failed to marshal node %s: %w", node.ID, err)
		}
		if _, err := nodeStmt.ExecContext(ctx, name, i, node.ID, attrs); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", node.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dataset_edges (dataset, seq, source_id, target_id, attrs) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge statement: %w", err)
	}
	defer edgeStmt.Close()

	for i, edge := range fragment.Edges {
		attrs, err := marshalToNull(edge.Attrs)
		if err != nil {
			return fmt.Errorf("failed to marshal edge %s-%s: %w", edge.Source, edge.Target, err)
		}
		if _, err := edgeStmt.ExecContext(ctx, name, i, edge.Source, edge.Target, attrs); err != nil {
			return fmt.Errorf("failed to insert edge %s-%s: %w", edge.Source, edge.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dataset %s: %w", name, err)
	}
	return nil
}

// GetDataset loads a stored fragment by name
func (r *Repository) GetDataset(ctx context.Context, name string) (*domain.GraphFragment, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM datasets WHERE name = ?`, name).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", repository.ErrDatasetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset %s: %w", name, err)
	}

	fragment := domain.NewGraphFragment()
	if err := r.loadNodes(ctx, name, fragment); err != nil {
		return nil, err
	}
	if err := r.loadEdges(ctx, name, fragment); err != nil {
		return nil, err
	}
	return fragment, nil
}

// Rows must be closed before the next query: the pool holds one connection.
func (r *Repository) loadNodes(ctx context.Context, name string, fragment *domain.GraphFragment) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, attrs FROM dataset_nodes WHERE dataset = ? ORDER BY seq
	`, name)
	if err != nil {
		return fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return err
		}
		fragment.AddNode(*node)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate nodes: %w", err)
	}
	return nil
}

func (r *Repository) loadEdges(ctx context.Context, name string, fragment *domain.GraphFragment) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT source_id, target_id, attrs FROM dataset_edges WHERE dataset = ? ORDER BY seq
	`, name)
	if err != nil {
		return fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return err
		}
		fragment.AddEdge(*edge)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate edges: %w", err)
	}
	return nil
}

// ListDatasets returns every stored dataset, newest first
func (r *Repository) ListDatasets(ctx context.Context) ([]domain.DatasetInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, source, node_count, edge_count, created_at, updated_at
		FROM datasets ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	datasets := make([]domain.DatasetInfo, 0)
	for rows.Next() {
		info, err := scanDatasetInfo(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, *info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate datasets: %w", err)
	}
	return datasets, nil
}

// DeleteDataset removes a dataset and its contents
func (r *Repository) DeleteDataset(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete dataset %s: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", repository.ErrDatasetNotFound, name)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
