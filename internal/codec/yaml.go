package codec

import (
	"fmt"
	"io"

	"reelgraph/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

type yamlExport struct {
	Nodes []map[string]any `yaml:"nodes"`
	Edges []map[string]any `yaml:"edges"`
}

// Parse imports graph data from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.GraphFragment, error) {
	var wf wireFragment
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&wf); err != nil {
		if err == io.EOF {
			return domain.NewGraphFragment(), nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	fragment, err := wf.toDomain()
	if err != nil {
		return nil, fmt.Errorf("invalid YAML graph: %w", err)
	}
	return fragment, nil
}

// Export exports graph data to YAML
func (c *YAMLCodec) Export(fragment *domain.GraphFragment, w io.Writer) error {
	nodes, edges := flatten(fragment)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(yamlExport{Nodes: nodes, Edges: edges}); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
