package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONDecoder decodes .json snapshot files.
type JSONDecoder struct{}

// NewJSONDecoder creates a JSON decoder.
func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{}
}

// Name returns "json".
func (d *JSONDecoder) Name() string { return "json" }

// Extensions returns the JSON file extensions.
func (d *JSONDecoder) Extensions() []string { return []string{".json"} }

// Decode parses a single JSON document. Numbers decode as float64 and any
// content after the first value is rejected.
func (d *JSONDecoder) Decode(filename string, content []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(content))

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, fmt.Errorf("parse %s: unexpected trailing JSON payload", filename)
	}

	return asObject(filename, doc)
}
