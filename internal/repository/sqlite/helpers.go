package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"reelgraph/internal/codec"
	"reelgraph/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// marshalToNull marshals an attribute bag to a nullable JSON string.
// Returns empty NullString for nil or empty maps.
func marshalToNull(attrs map[string]any) (sql.NullString, error) {
	if len(attrs) == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(attrs)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalAttrs decodes a nullable JSON attribute bag. Numbers come back as
// int64 or float64, matching what the file codecs produce.
func unmarshalAttrs(ns sql.NullString) (map[string]any, error) {
	attrs := make(map[string]any)
	if !ns.Valid || ns.String == "" {
		return attrs, nil
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(ns.String)))
	decoder.UseNumber()
	if err := decoder.Decode(&attrs); err != nil {
		return nil, err
	}
	return codec.NormalizeAttrs(attrs), nil
}

// ============================================================================
// Row Scanners
// ============================================================================

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*domain.Node, error) {
	var (
		id    string
		attrs sql.NullString
	)
	if err := row.Scan(&id, &attrs); err != nil {
		return nil, fmt.Errorf("failed to scan node: %w", err)
	}

	bag, err := unmarshalAttrs(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal attrs for node %s: %w", id, err)
	}
	return domain.NewNode(id, bag), nil
}

func scanEdge(row rowScanner) (*domain.Edge, error) {
	var (
		source, target string
		attrs          sql.NullString
	)
	if err := row.Scan(&source, &target, &attrs); err != nil {
		return nil, fmt.Errorf("failed to scan edge: %w", err)
	}

	bag, err := unmarshalAttrs(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal attrs for edge %s-%s: %w", source, target, err)
	}
	return domain.NewEdge(source, target, bag), nil
}

func scanDatasetInfo(row rowScanner) (*domain.DatasetInfo, error) {
	var (
		info                 domain.DatasetInfo
		source               sql.NullString
		createdAt, updatedAt int64
	)
	if err := row.Scan(&info.Name, &source, &info.NodeCount, &info.EdgeCount, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan dataset: %w", err)
	}
	info.Source = nullToString(source)
	info.CreatedAt = time.Unix(createdAt, 0).UTC()
	info.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &info, nil
}
