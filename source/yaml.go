package source

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLDecoder decodes .yaml and .yml snapshot files.
type YAMLDecoder struct{}

// NewYAMLDecoder creates a YAML decoder.
func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{}
}

// Name returns "yaml".
func (d *YAMLDecoder) Name() string { return "yaml" }

// Extensions returns the YAML file extensions.
func (d *YAMLDecoder) Extensions() []string { return []string{".yaml", ".yml"} }

// Decode parses the first YAML document. Integers arrive as int and floats
// as float64; both count as numbers during validation.
func (d *YAMLDecoder) Decode(filename string, content []byte) (map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return asObject(filename, doc)
}
