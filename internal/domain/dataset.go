package domain

import "time"

// DatasetInfo describes an archived source dataset
type DatasetInfo struct {
	Name      string    `json:"name"`
	Source    string    `json:"source,omitempty"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
