// Package schema holds the JSON Schema for facility snapshot files and lints
// decoded documents against it.
//
// Lint is stricter than evaluation: it also rejects unknown keys. A document
// that fails lint may still evaluate normally.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// URL is the schema's $id.
const URL = "https://github.com/c360studio/constraintsim/schema/facility.schema.json"

//go:embed facility.schema.json
var raw []byte

// Schema returns the embedded schema document.
func Schema() []byte {
	return bytes.Clone(raw)
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(URL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := compiler.Compile(URL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
})

// LintError lists every schema violation found in one document.
type LintError struct {
	Problems []string
}

func (e *LintError) Error() string {
	return fmt.Sprintf("%d schema problem(s): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks doc against the facility schema. It returns nil, a
// *LintError, or an error when the document cannot be checked at all.
func Validate(doc map[string]any) error {
	s, err := compiled()
	if err != nil {
		return err
	}

	// The validator only understands encoding/json shapes; YAML and HCL
	// decoders produce other numeric types.
	normalized, err := normalize(doc)
	if err != nil {
		return err
	}

	err = s.Validate(normalized)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("validate document: %w", err)
	}

	var problems []string
	collect(ve, &problems)
	sort.Strings(problems)
	return &LintError{Problems: problems}
}

func normalize(doc map[string]any) (any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// collect flattens the validation tree into its leaf messages.
func collect(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "(root)"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, c := range ve.Causes {
		collect(c, out)
	}
}
