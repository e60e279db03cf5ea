package report

import (
	"encoding/json"
	"io"

	"github.com/c360studio/constraintsim/facility"
)

// RenderJSON writes result as an indented JSON object. List fields are
// always arrays, never null.
func RenderJSON(w io.Writer, result facility.Result) error {
	normalized := facility.NewResult(result.Verdict, result.Disqualifiers, result.CautionFlags,
		result.MissingFields, result.Notes)
	return writeJSON(w, normalized)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
