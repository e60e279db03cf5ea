// Package source decodes facility snapshot files into untyped key/value
// mappings. Decoders are selected by file extension.
package source

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Decoder turns raw file content into a top-level object.
type Decoder interface {
	// Decode parses content and returns its top-level object.
	Decode(filename string, content []byte) (map[string]any, error)

	// Extensions lists the file extensions this decoder handles, with the dot.
	Extensions() []string

	// Name is the short format name ("json", "yaml", ...).
	Name() string
}

// Registry manages decoders keyed by extension.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder // keyed by lower-cased extension
}

// DefaultRegistry is the global registry with the JSON, YAML, and HCL decoders.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a registry with the default decoders.
func NewRegistry() *Registry {
	r := &Registry{
		decoders: make(map[string]Decoder),
	}

	r.Register(NewJSONDecoder())
	r.Register(NewYAMLDecoder())
	r.Register(NewHCLDecoder())

	return r
}

// Register adds a decoder for each of its extensions, replacing any
// decoder previously registered for them.
func (r *Registry) Register(d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range d.Extensions() {
		r.decoders[strings.ToLower(ext)] = d
	}
}

// ForFile returns the decoder for filename's extension, or nil.
func (r *Registry) ForFile(filename string) Decoder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.decoders[strings.ToLower(filepath.Ext(filename))]
}

// Supports reports whether a decoder is registered for filename.
func (r *Registry) Supports(filename string) bool {
	return r.ForFile(filename) != nil
}

// Decode decodes content using the decoder for filename.
func (r *Registry) Decode(filename string, content []byte) (map[string]any, error) {
	d := r.ForFile(filename)
	if d == nil {
		return nil, fmt.Errorf("no decoder for file type: %q", filepath.Ext(filename))
	}
	return d.Decode(filename, content)
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Formats returns the names of the registered decoders, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, d := range r.decoders {
		if !seen[d.Name()] {
			seen[d.Name()] = true
			names = append(names, d.Name())
		}
	}
	sort.Strings(names)
	return names
}

// asObject rejects documents whose top level is not an object.
func asObject(filename string, doc any) (map[string]any, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: top-level value must be an object, got %s", filename, describe(doc))
	}
	return obj, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
