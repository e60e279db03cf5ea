// Package batch evaluates many facility files in one run with bounded
// concurrency and summarizes the outcome.
package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/constraintsim/evaluator"
	"github.com/c360studio/constraintsim/facility"
)

// DefaultWorkers is the concurrency used when none is configured.
const DefaultWorkers = 4

// StatusError marks an entry whose file could not be loaded.
const StatusError = "ERROR"

// Entry is the outcome for one file. Exactly one of Result and Error is set.
type Entry struct {
	Path   string           `json:"path"`
	Result *facility.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Status returns the verdict, or StatusError for a load fault.
func (e Entry) Status() string {
	if e.Result == nil {
		return StatusError
	}
	return string(e.Result.Verdict)
}

// Totals counts entries per status.
type Totals struct {
	Files        int `json:"files"`
	Qualified    int `json:"qualified"`
	Disqualified int `json:"disqualified"`
	Unknown      int `json:"unknown"`
	Errors       int `json:"errors"`
}

func (t *Totals) add(e Entry) {
	t.Files++
	switch e.Status() {
	case string(facility.VerdictQualified):
		t.Qualified++
	case string(facility.VerdictDisqualified):
		t.Disqualified++
	case string(facility.VerdictUnknown):
		t.Unknown++
	default:
		t.Errors++
	}
}

// Report is the outcome of one batch run. Entries follow input order.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
	Totals      Totals    `json:"totals"`
}

// Runner evaluates files concurrently.
type Runner struct {
	evaluator *evaluator.Evaluator
	workers   int
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds the number of files evaluated at once. Values below 1
// are ignored.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n >= 1 {
			r.workers = n
		}
	}
}

// WithMetrics records every entry in m.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a Runner. A nil evaluator uses evaluator.New(nil, nil).
func NewRunner(ev *evaluator.Evaluator, opts ...Option) *Runner {
	if ev == nil {
		ev = evaluator.New(nil, nil)
	}
	r := &Runner{
		evaluator: ev,
		workers:   DefaultWorkers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Run evaluates every file. A file that cannot be loaded is recorded on its
// entry and does not stop the run. Run returns an error only when ctx is
// cancelled before all files are evaluated.
func (r *Runner) Run(ctx context.Context, files []string) (*Report, error) {
	runID := uuid.New().String()
	logger := r.log().With(slog.String("run_id", runID))
	logger.Info("Batch started", slog.Int("files", len(files)), slog.Int("workers", r.workers))

	entries := make([]Entry, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = r.evaluate(logger, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:       runID,
		GeneratedAt: r.now().UTC(),
		Entries:     entries,
	}
	for _, e := range entries {
		report.Totals.add(e)
		if r.metrics != nil {
			r.metrics.Observe(e)
		}
	}

	logger.Info("Batch finished",
		slog.Int("qualified", report.Totals.Qualified),
		slog.Int("disqualified", report.Totals.Disqualified),
		slog.Int("unknown", report.Totals.Unknown),
		slog.Int("errors", report.Totals.Errors))

	return report, nil
}

func (r *Runner) evaluate(logger *slog.Logger, path string) Entry {
	result, err := r.evaluator.EvaluateFile(path)
	if err != nil {
		logger.Warn("Failed to load facility file", slog.String("path", path), slog.Any("error", err))
		return Entry{Path: path, Error: err.Error()}
	}
	return Entry{Path: path, Result: &result}
}
