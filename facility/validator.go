package facility

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// FieldKind is the primitive kind a required field must hold.
type FieldKind string

// KindString, KindNumber, and KindBoolean are the kinds a snapshot field can
// require. The remaining kinds only describe observed input.
const (
	KindString  FieldKind = "string"
	KindNumber  FieldKind = "number"
	KindBoolean FieldKind = "boolean"
	KindNull    FieldKind = "null"
	KindArray   FieldKind = "array"
	KindObject  FieldKind = "object"
)

// FieldRequirement declares one required snapshot field.
type FieldRequirement struct {
	Name    string
	Kind    FieldKind
	Allowed []string // closed domain, nil when unconstrained
}

// Wire names of the snapshot fields.
const (
	FieldFacilityName                 = "facility_name"
	FieldMinAisleWidthFt              = "min_aisle_width_ft"
	FieldHasSeparatedPaths            = "has_separated_paths"
	FieldHumanTrafficDensity          = "human_traffic_density"
	FieldHasClosedOperatingWindow     = "has_closed_operating_window"
	FieldLayoutStability              = "layout_stability"
	FieldChronicDestinationSaturation = "chronic_destination_saturation"
	FieldToteStandardization          = "tote_standardization"
	FieldSafetyGovernanceMaturity     = "safety_governance_maturity"
	FieldNotes                        = "notes"
)

// requiredFields is in declaration order; defect ordering follows it.
var requiredFields = []FieldRequirement{
	{Name: FieldFacilityName, Kind: KindString},
	{Name: FieldMinAisleWidthFt, Kind: KindNumber},
	{Name: FieldHasSeparatedPaths, Kind: KindBoolean},
	{Name: FieldHumanTrafficDensity, Kind: KindString, Allowed: enumStrings(TrafficDensities())},
	{Name: FieldHasClosedOperatingWindow, Kind: KindBoolean},
	{Name: FieldLayoutStability, Kind: KindString, Allowed: enumStrings(LayoutStabilities())},
	{Name: FieldChronicDestinationSaturation, Kind: KindBoolean},
	{Name: FieldToteStandardization, Kind: KindBoolean},
	{Name: FieldSafetyGovernanceMaturity, Kind: KindString, Allowed: enumStrings(GovernanceMaturities())},
}

// RequiredFields returns a copy of the required field schema in declaration order.
func RequiredFields() []FieldRequirement {
	out := make([]FieldRequirement, len(requiredFields))
	for i, f := range requiredFields {
		f.Allowed = slices.Clone(f.Allowed)
		out[i] = f
	}
	return out
}

// Validate checks raw input against the required field schema. It returns
// either a snapshot and no defects, or nil and every defect found: missing
// fields first, then wrong kinds, then out-of-domain values.
func Validate(data map[string]any) (*Snapshot, []string) {
	var missing, invalidKind, invalidValue []string

	for _, f := range requiredFields {
		value, ok := data[f.Name]
		if !ok {
			missing = append(missing, fmt.Sprintf("%s (missing)", f.Name))
			continue
		}
		if actual := KindOf(value); actual != f.Kind {
			invalidKind = append(invalidKind,
				fmt.Sprintf("%s (expected %s, got %s)", f.Name, f.Kind, actual))
		}
	}

	// Domain checks run on any present constrained field, even one that
	// already failed the kind check.
	for _, f := range requiredFields {
		if f.Allowed == nil {
			continue
		}
		value, ok := data[f.Name]
		if !ok {
			continue
		}
		if s, isString := value.(string); isString && slices.Contains(f.Allowed, s) {
			continue
		}
		invalidValue = append(invalidValue,
			fmt.Sprintf("%s (invalid value '%s', expected one of %s)",
				f.Name, formatValue(value), strings.Join(f.Allowed, ", ")))
	}

	defects := slices.Concat(missing, invalidKind, invalidValue)
	if len(defects) > 0 {
		return nil, defects
	}

	width, _ := toFloat(data[FieldMinAisleWidthFt])
	density, _ := ParseTrafficDensity(data[FieldHumanTrafficDensity].(string))
	layout, _ := ParseLayoutStability(data[FieldLayoutStability].(string))
	governance, _ := ParseGovernanceMaturity(data[FieldSafetyGovernanceMaturity].(string))

	snap := &Snapshot{
		FacilityName:                 data[FieldFacilityName].(string),
		MinAisleWidthFt:              width,
		HasSeparatedPaths:            data[FieldHasSeparatedPaths].(bool),
		HumanTrafficDensity:          density,
		HasClosedOperatingWindow:     data[FieldHasClosedOperatingWindow].(bool),
		LayoutStability:              layout,
		ChronicDestinationSaturation: data[FieldChronicDestinationSaturation].(bool),
		ToteStandardization:          data[FieldToteStandardization].(bool),
		SafetyGovernanceMaturity:     governance,
	}
	if notes, ok := data[FieldNotes].(string); ok {
		snap.Notes = notes
	}
	return snap, nil
}

// KindOf reports the primitive kind of a decoded input value. Every Go
// integer and float type counts as a number, so JSON, YAML, and HCL decoders
// all feed the same check.
func KindOf(v any) FieldKind {
	switch v := v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case bool:
		return KindBoolean
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		if _, ok := toFloat(v); ok {
			return KindNumber
		}
		return FieldKind(fmt.Sprintf("%T", v))
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
