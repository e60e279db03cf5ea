// Package rules holds the static eligibility rule catalog evaluated against
// facility snapshots.
package rules

import (
	"github.com/c360studio/constraintsim/facility"
)

// NarrowAisleThresholdFt is the aisle width below which narrow_aisles triggers.
const NarrowAisleThresholdFt = 8.0

// Category separates rules that force a verdict from rules that only annotate it.
type Category string

// CategoryDisqualifier rules force DISQUALIFIED when triggered.
// CategoryCaution rules annotate the result and never change the verdict.
const (
	CategoryDisqualifier Category = "disqualifier"
	CategoryCaution      Category = "caution"
)

// Rule is a named predicate over a snapshot.
type Rule struct {
	// Name identifies the rule in reports and lookups.
	Name string

	// Description is the human-readable explanation shown next to the name.
	Description string

	// Category is the enforcement level.
	Category Category

	// Check reports whether the rule is triggered.
	Check func(s *facility.Snapshot) bool
}

var disqualifiers = []Rule{
	{
		Name:        "human_dense_shared_aisles",
		Description: "High human traffic density without separated paths",
		Category:    CategoryDisqualifier,
		Check: func(s *facility.Snapshot) bool {
			return s.HumanTrafficDensity == facility.TrafficHigh && !s.HasSeparatedPaths
		},
	},
	{
		Name:        "chronic_destination_saturation",
		Description: "Chronic destination saturation detected",
		Category:    CategoryDisqualifier,
		Check: func(s *facility.Snapshot) bool {
			return s.ChronicDestinationSaturation
		},
	},
	{
		Name:        "unstable_layout",
		Description: "Facility layout changes frequently",
		Category:    CategoryDisqualifier,
		Check: func(s *facility.Snapshot) bool {
			return s.LayoutStability == facility.LayoutFrequentChange
		},
	},
	{
		Name:        "poor_safety_governance",
		Description: "Weak safety governance maturity",
		Category:    CategoryDisqualifier,
		Check: func(s *facility.Snapshot) bool {
			return s.SafetyGovernanceMaturity == facility.GovernanceWeak
		},
	},
	{
		Name:        "unclear_tote_standards",
		Description: "Tote standardization not established",
		Category:    CategoryDisqualifier,
		Check: func(s *facility.Snapshot) bool {
			return !s.ToteStandardization
		},
	},
}

var cautions = []Rule{
	{
		Name:        "narrow_aisles",
		Description: "Minimum aisle width below 8.0 feet",
		Category:    CategoryCaution,
		Check: func(s *facility.Snapshot) bool {
			return s.MinAisleWidthFt < NarrowAisleThresholdFt
		},
	},
	{
		Name:        "mixed_traffic_no_separation",
		Description: "Medium human traffic without separated paths",
		Category:    CategoryCaution,
		Check: func(s *facility.Snapshot) bool {
			return s.HumanTrafficDensity == facility.TrafficMedium && !s.HasSeparatedPaths
		},
	},
	{
		Name:        "layout_drift_risk",
		Description: "Moderate layout change frequency",
		Category:    CategoryCaution,
		Check: func(s *facility.Snapshot) bool {
			return s.LayoutStability == facility.LayoutModerateChange
		},
	},
	{
		Name:        "no_off_hours_window",
		Description: "No closed operating window available",
		Category:    CategoryCaution,
		Check: func(s *facility.Snapshot) bool {
			return !s.HasClosedOperatingWindow
		},
	},
	{
		Name:        "average_safety_maturity",
		Description: "Average safety governance maturity",
		Category:    CategoryCaution,
		Check: func(s *facility.Snapshot) bool {
			return s.SafetyGovernanceMaturity == facility.GovernanceAverage
		},
	},
}

// Disqualifiers returns the disqualifying rules in catalog order.
func Disqualifiers() []Rule {
	return append([]Rule(nil), disqualifiers...)
}

// Cautions returns the caution rules in catalog order.
func Cautions() []Rule {
	return append([]Rule(nil), cautions...)
}

// All returns every rule, disqualifiers first.
func All() []Rule {
	return append(Disqualifiers(), cautions...)
}

// Lookup finds a rule by name across both categories.
func Lookup(name string) (Rule, bool) {
	for _, r := range disqualifiers {
		if r.Name == name {
			return r, true
		}
	}
	for _, r := range cautions {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// Describe returns the description for a rule name, or the bare name when
// the catalog has no such rule. The second result is false in that case.
func Describe(name string) (string, bool) {
	r, ok := Lookup(name)
	if !ok {
		return name, false
	}
	return r.Description, true
}

// Triggered returns the names of rules whose Check holds for s, in order.
func Triggered(ruleset []Rule, s *facility.Snapshot) []string {
	names := []string{}
	for _, r := range ruleset {
		if r.Check(s) {
			names = append(names, r.Name)
		}
	}
	return names
}
