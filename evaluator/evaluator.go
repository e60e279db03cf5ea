// Package evaluator derives verdicts for facility snapshots. Validation of
// raw input happens first; only a valid snapshot reaches the rule catalog.
package evaluator

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c360studio/constraintsim/facility"
	"github.com/c360studio/constraintsim/rules"
	"github.com/c360studio/constraintsim/source"
)

// Evaluator runs the rule catalog against facility snapshots. It holds no
// per-evaluation state and is safe for concurrent use.
type Evaluator struct {
	logger  *slog.Logger
	sources *source.Registry
}

// New creates an Evaluator. A nil logger uses slog.Default and a nil
// registry uses source.DefaultRegistry.
func New(logger *slog.Logger, sources *source.Registry) *Evaluator {
	if sources == nil {
		sources = source.DefaultRegistry
	}
	return &Evaluator{
		logger:  logger,
		sources: sources,
	}
}

var defaultEvaluator = New(nil, nil)

// Evaluate runs the default evaluator against a valid snapshot.
func Evaluate(s *facility.Snapshot) facility.Result {
	return defaultEvaluator.Evaluate(s)
}

// EvaluateRaw validates and evaluates raw input with the default evaluator.
func EvaluateRaw(data map[string]any) facility.Result {
	return defaultEvaluator.EvaluateRaw(data)
}

// EvaluateFile loads and evaluates a snapshot file with the default evaluator.
func EvaluateFile(path string) (facility.Result, error) {
	return defaultEvaluator.EvaluateFile(path)
}

func (e *Evaluator) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}

// Evaluate checks every rule against s and derives the verdict. Any
// triggered disqualifier yields DISQUALIFIED; caution flags only add notes.
func (e *Evaluator) Evaluate(s *facility.Snapshot) facility.Result {
	disqualifiers := rules.Triggered(rules.Disqualifiers(), s)
	cautions := rules.Triggered(rules.Cautions(), s)

	var verdict facility.Verdict
	var notes []string
	if len(disqualifiers) > 0 {
		verdict = facility.VerdictDisqualified
		notes = append(notes, fmt.Sprintf("Facility '%s' is DISQUALIFIED due to %d rule violation(s).",
			s.FacilityName, len(disqualifiers)))
		for _, name := range disqualifiers {
			notes = append(notes, e.ruleLine(name))
		}
	} else {
		verdict = facility.VerdictQualified
		notes = append(notes, fmt.Sprintf("Facility '%s' is QUALIFIED for Empty Tote Return task.", s.FacilityName))
	}

	if len(cautions) > 0 {
		notes = append(notes, fmt.Sprintf("%d caution flag(s) identified:", len(cautions)))
		for _, name := range cautions {
			notes = append(notes, e.ruleLine(name))
		}
	}

	e.log().Debug("Facility evaluated",
		slog.String("facility", s.FacilityName),
		slog.String("verdict", string(verdict)),
		slog.Int("disqualifiers", len(disqualifiers)),
		slog.Int("caution_flags", len(cautions)))

	return facility.NewResult(verdict, disqualifiers, cautions, nil, notes)
}

// ruleLine formats one triggered rule for the notes list.
func (e *Evaluator) ruleLine(name string) string {
	desc, ok := rules.Describe(name)
	if !ok {
		e.log().Error("Triggered rule missing from catalog", slog.String("rule", name))
	}
	return fmt.Sprintf("  - %s: %s", name, desc)
}

// EvaluateRaw validates untyped input and evaluates it. Field defects
// produce an UNKNOWN result listing every defect; they are never errors.
func (e *Evaluator) EvaluateRaw(data map[string]any) facility.Result {
	snap, defects := facility.Validate(data)
	if len(defects) > 0 {
		e.log().Debug("Facility input failed validation", slog.Int("defects", len(defects)))
		notes := append([]string{"Cannot evaluate: required information is missing or invalid."}, defects...)
		return facility.NewResult(facility.VerdictUnknown, nil, nil, defects, notes)
	}
	return e.Evaluate(snap)
}

// EvaluateFile reads, decodes, and evaluates a snapshot file. A missing
// file, an unsupported extension, or an unparsable payload is returned as
// an error wrapping ErrInputNotFound, ErrUnsupportedFormat, or
// ErrMalformedInput.
func (e *Evaluator) EvaluateFile(path string) (facility.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return facility.Result{}, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return facility.Result{}, fmt.Errorf("read facility file: %w", err)
	}
	return e.EvaluateBytes(path, content)
}

// EvaluateBytes decodes content according to filename's extension and
// evaluates it.
func (e *Evaluator) EvaluateBytes(filename string, content []byte) (facility.Result, error) {
	data, err := e.Decode(filename, content)
	if err != nil {
		return facility.Result{}, err
	}
	return e.EvaluateRaw(data), nil
}

// Decode turns file content into the untyped mapping EvaluateRaw expects.
func (e *Evaluator) Decode(filename string, content []byte) (map[string]any, error) {
	dec := e.sources.ForFile(filename)
	if dec == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	data, err := dec.Decode(filename, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return data, nil
}
