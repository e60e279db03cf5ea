package report

import (
	"github.com/c360studio/constraintsim/batch"
	"github.com/c360studio/constraintsim/facility"
)

// Process exit codes.
const (
	ExitQualified    = 0
	ExitFailure      = 1
	ExitDisqualified = 2
	ExitUnknown      = 3
)

// ExitCode maps a verdict onto the process exit code. A value outside the
// verdict set maps to ExitFailure.
func ExitCode(v facility.Verdict) int {
	switch v {
	case facility.VerdictQualified:
		return ExitQualified
	case facility.VerdictDisqualified:
		return ExitDisqualified
	case facility.VerdictUnknown:
		return ExitUnknown
	}
	return ExitFailure
}

// BatchExitCode picks the most severe outcome of a run: any load fault, then
// any UNKNOWN, then any DISQUALIFIED.
func BatchExitCode(r *batch.Report) int {
	switch t := r.Totals; {
	case t.Errors > 0:
		return ExitFailure
	case t.Unknown > 0:
		return ExitUnknown
	case t.Disqualified > 0:
		return ExitDisqualified
	}
	return ExitQualified
}
