package source

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// HCLDecoder decodes .hcl snapshot files made of top-level attributes:
//
//	facility_name      = "North DC"
//	min_aisle_width_ft = 9.5
//	has_separated_paths = true
//
// Blocks are not allowed. Expressions are evaluated without variables or
// functions, so only literal values are accepted.
type HCLDecoder struct{}

// NewHCLDecoder creates an HCL decoder.
func NewHCLDecoder() *HCLDecoder {
	return &HCLDecoder{}
}

// Name returns "hcl".
func (d *HCLDecoder) Name() string { return "hcl" }

// Extensions returns the HCL file extensions.
func (d *HCLDecoder) Extensions() []string { return []string{".hcl"} }

// Decode parses content and converts each attribute to a plain Go value.
func (d *HCLDecoder) Decode(filename string, content []byte) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(content, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}

	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluate %s in %s: %w", name, filename, diags)
		}
		v, err := ctyToAny(val)
		if err != nil {
			return nil, fmt.Errorf("convert %s in %s: %w", name, filename, err)
		}
		out[name] = v
	}
	return out, nil
}

// ctyToAny converts a cty.Value into the shapes encoding/json produces.
func ctyToAny(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := []any{}
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			v, err := ctyToAny(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			v, err := ctyToAny(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
}
