// Package facility defines the warehouse facility snapshot, its closed-domain
// attributes, the evaluation result shape, and the validator that turns an
// untyped key/value mapping into a well-typed snapshot.
package facility

// TrafficDensity is the level of human traffic on the facility floor.
type TrafficDensity string

// TrafficLow, TrafficMedium, and TrafficHigh enumerate the accepted
// human_traffic_density values.
const (
	TrafficLow    TrafficDensity = "low"
	TrafficMedium TrafficDensity = "medium"
	TrafficHigh   TrafficDensity = "high"
)

// TrafficDensities returns the accepted values in canonical order.
func TrafficDensities() []TrafficDensity {
	return []TrafficDensity{TrafficLow, TrafficMedium, TrafficHigh}
}

// ParseTrafficDensity maps a wire string onto a TrafficDensity.
func ParseTrafficDensity(s string) (TrafficDensity, bool) {
	for _, v := range TrafficDensities() {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// LayoutStability describes how often the facility layout changes.
type LayoutStability string

// LayoutStable, LayoutModerateChange, and LayoutFrequentChange enumerate the
// accepted layout_stability values.
const (
	LayoutStable         LayoutStability = "stable"
	LayoutModerateChange LayoutStability = "moderate_change"
	LayoutFrequentChange LayoutStability = "frequent_change"
)

// LayoutStabilities returns the accepted values in canonical order.
func LayoutStabilities() []LayoutStability {
	return []LayoutStability{LayoutStable, LayoutModerateChange, LayoutFrequentChange}
}

// ParseLayoutStability maps a wire string onto a LayoutStability.
func ParseLayoutStability(s string) (LayoutStability, bool) {
	for _, v := range LayoutStabilities() {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// GovernanceMaturity grades the site's safety governance.
type GovernanceMaturity string

// GovernanceStrong, GovernanceAverage, and GovernanceWeak enumerate the
// accepted safety_governance_maturity values.
const (
	GovernanceStrong  GovernanceMaturity = "strong"
	GovernanceAverage GovernanceMaturity = "average"
	GovernanceWeak    GovernanceMaturity = "weak"
)

// GovernanceMaturities returns the accepted values in canonical order.
func GovernanceMaturities() []GovernanceMaturity {
	return []GovernanceMaturity{GovernanceStrong, GovernanceAverage, GovernanceWeak}
}

// ParseGovernanceMaturity maps a wire string onto a GovernanceMaturity.
func ParseGovernanceMaturity(s string) (GovernanceMaturity, bool) {
	for _, v := range GovernanceMaturities() {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Verdict is the three-way classification of a facility.
type Verdict string

// VerdictQualified, VerdictDisqualified, and VerdictUnknown enumerate the
// possible verdicts.
const (
	VerdictQualified    Verdict = "QUALIFIED"
	VerdictDisqualified Verdict = "DISQUALIFIED"
	VerdictUnknown      Verdict = "UNKNOWN"
)

// Snapshot is a validated view of one facility. Values are only produced by
// Validate, so every field is present and in domain.
type Snapshot struct {
	FacilityName                 string             `json:"facility_name"`
	MinAisleWidthFt              float64            `json:"min_aisle_width_ft"`
	HasSeparatedPaths            bool               `json:"has_separated_paths"`
	HumanTrafficDensity          TrafficDensity     `json:"human_traffic_density"`
	HasClosedOperatingWindow     bool               `json:"has_closed_operating_window"`
	LayoutStability              LayoutStability    `json:"layout_stability"`
	ChronicDestinationSaturation bool               `json:"chronic_destination_saturation"`
	ToteStandardization          bool               `json:"tote_standardization"`
	SafetyGovernanceMaturity     GovernanceMaturity `json:"safety_governance_maturity"`

	// Notes is carried through for context and never read by a rule.
	Notes string `json:"notes,omitempty"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Verdict       Verdict  `json:"verdict"`
	Disqualifiers []string `json:"disqualifiers"`
	CautionFlags  []string `json:"caution_flags"`
	MissingFields []string `json:"missing_fields"`
	Notes         []string `json:"notes"`
}

// NewResult builds a Result with every list non-nil so it serializes with
// arrays rather than nulls.
func NewResult(verdict Verdict, disqualifiers, cautionFlags, missingFields, notes []string) Result {
	return Result{
		Verdict:       verdict,
		Disqualifiers: orEmpty(disqualifiers),
		CautionFlags:  orEmpty(cautionFlags),
		MissingFields: orEmpty(missingFields),
		Notes:         orEmpty(notes),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
