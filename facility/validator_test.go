package facility

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() map[string]any {
	return map[string]any{
		"facility_name":                  "A",
		"min_aisle_width_ft":             12.0,
		"has_separated_paths":            true,
		"human_traffic_density":          "low",
		"has_closed_operating_window":    true,
		"layout_stability":               "stable",
		"chronic_destination_saturation": false,
		"tote_standardization":           true,
		"safety_governance_maturity":     "strong",
	}
}

func TestValidate_Valid(t *testing.T) {
	snap, defects := Validate(validInput())

	require.Empty(t, defects)
	require.NotNil(t, snap)
	assert.Equal(t, "A", snap.FacilityName)
	assert.Equal(t, 12.0, snap.MinAisleWidthFt)
	assert.True(t, snap.HasSeparatedPaths)
	assert.Equal(t, TrafficLow, snap.HumanTrafficDensity)
	assert.Equal(t, LayoutStable, snap.LayoutStability)
	assert.Equal(t, GovernanceStrong, snap.SafetyGovernanceMaturity)
	assert.Empty(t, snap.Notes)
}

func TestValidate_NumericCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"float64", 9.5, 9.5},
		{"int", 10, 10},
		{"int64", int64(8), 8},
		{"uint8", uint8(7), 7},
		{"json number", json.Number("7.25"), 7.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in["min_aisle_width_ft"] = tt.value

			snap, defects := Validate(in)

			require.Empty(t, defects)
			assert.Equal(t, tt.want, snap.MinAisleWidthFt)
		})
	}
}

func TestValidate_NotesCarried(t *testing.T) {
	in := validInput()
	in["notes"] = "night shift only"

	snap, defects := Validate(in)

	require.Empty(t, defects)
	assert.Equal(t, "night shift only", snap.Notes)
}

func TestValidate_ExtraKeysIgnored(t *testing.T) {
	in := validInput()
	in["region"] = "EMEA"

	snap, defects := Validate(in)

	require.Empty(t, defects)
	require.NotNil(t, snap)
}

func TestValidate_MissingField(t *testing.T) {
	in := validInput()
	delete(in, "has_separated_paths")

	snap, defects := Validate(in)

	assert.Nil(t, snap)
	assert.Equal(t, []string{"has_separated_paths (missing)"}, defects)
}

func TestValidate_EmptyInput(t *testing.T) {
	snap, defects := Validate(map[string]any{})

	assert.Nil(t, snap)
	require.Len(t, defects, 9)
	for i, f := range RequiredFields() {
		assert.Equal(t, f.Name+" (missing)", defects[i])
	}
}

func TestValidate_InvalidType(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		want  string
	}{
		{"string for number", "min_aisle_width_ft", "wide", "min_aisle_width_ft (expected number, got string)"},
		{"boolean for number", "min_aisle_width_ft", true, "min_aisle_width_ft (expected number, got boolean)"},
		{"number for boolean", "tote_standardization", 1.0, "tote_standardization (expected boolean, got number)"},
		{"string for boolean", "has_separated_paths", "yes", "has_separated_paths (expected boolean, got string)"},
		{"null for string", "facility_name", nil, "facility_name (expected string, got null)"},
		{"array for string", "facility_name", []any{"A"}, "facility_name (expected string, got array)"},
		{"object for boolean", "has_closed_operating_window", map[string]any{}, "has_closed_operating_window (expected boolean, got object)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in[tt.field] = tt.value

			snap, defects := Validate(in)

			assert.Nil(t, snap)
			assert.Equal(t, []string{tt.want}, defects)
		})
	}
}

func TestValidate_InvalidEnumValue(t *testing.T) {
	in := validInput()
	in["human_traffic_density"] = "very_high"

	snap, defects := Validate(in)

	assert.Nil(t, snap)
	require.Len(t, defects, 1)
	assert.Equal(t,
		"human_traffic_density (invalid value 'very_high', expected one of low, medium, high)",
		defects[0])
}

func TestValidate_EnumWithWrongTypeReportsBoth(t *testing.T) {
	in := validInput()
	in["layout_stability"] = nil

	_, defects := Validate(in)

	assert.Equal(t, []string{
		"layout_stability (expected string, got null)",
		"layout_stability (invalid value 'null', expected one of stable, moderate_change, frequent_change)",
	}, defects)
}

func TestValidate_DefectOrdering(t *testing.T) {
	in := validInput()
	delete(in, "tote_standardization")
	delete(in, "facility_name")
	in["safety_governance_maturity"] = "excellent"
	in["human_traffic_density"] = "crowded"
	in["has_separated_paths"] = "no"
	in["min_aisle_width_ft"] = "8"

	_, defects := Validate(in)

	want := []string{
		"facility_name (missing)",
		"tote_standardization (missing)",
		"min_aisle_width_ft (expected number, got string)",
		"has_separated_paths (expected boolean, got string)",
		"human_traffic_density (invalid value 'crowded', expected one of low, medium, high)",
		"safety_governance_maturity (invalid value 'excellent', expected one of strong, average, weak)",
	}
	assert.Equal(t, want, defects)
}

func TestValidate_EnumsAreCaseSensitive(t *testing.T) {
	in := validInput()
	in["safety_governance_maturity"] = "Strong"

	_, defects := Validate(in)

	require.Len(t, defects, 1)
	assert.True(t, strings.HasPrefix(defects[0], "safety_governance_maturity (invalid value 'Strong'"))
}

func TestRequiredFields_ReturnsCopy(t *testing.T) {
	fields := RequiredFields()
	fields[0].Name = "mutated"
	fields[3].Allowed[0] = "mutated"

	fresh := RequiredFields()
	assert.Equal(t, "facility_name", fresh[0].Name)
	assert.Equal(t, "low", fresh[3].Allowed[0])
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		value any
		want  FieldKind
	}{
		{nil, KindNull},
		{"x", KindString},
		{false, KindBoolean},
		{3, KindNumber},
		{3.5, KindNumber},
		{float32(1), KindNumber},
		{json.Number("2"), KindNumber},
		{[]any{}, KindArray},
		{map[string]any{}, KindObject},
		{struct{}{}, FieldKind("struct {}")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.value), "KindOf(%#v)", tt.value)
	}
}
