// Package loader reads and writes graph dataset files, choosing the codec by
// file extension.
package loader

import (
	"bytes"
	"fmt"
	"os"

	"reelgraph/internal/codec"
	"reelgraph/internal/domain"
)

// LoadFile reads a dataset file
func LoadFile(path string) (*domain.GraphFragment, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return Parse(data, c.Format())
}

// Parse decodes dataset bytes in the given format
func Parse(data []byte, format string) (*domain.GraphFragment, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, err
	}
	return c.Parse(bytes.NewReader(data))
}

// Encode renders a fragment in the given format
func Encode(fragment *domain.GraphFragment, format string) ([]byte, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.Export(fragment, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveFile writes a fragment to path in the format its extension names
func SaveFile(path string, fragment *domain.GraphFragment) error {
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}

	data, err := Encode(fragment, c.Format())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
