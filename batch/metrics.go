package batch

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/constraintsim/rules"
)

// Metrics counts batch outcomes on a private registry so runs can be
// exported as a node_exporter textfile.
type Metrics struct {
	registry     *prometheus.Registry
	evaluations  *prometheus.CounterVec
	loadFailures prometheus.Counter
	triggered    *prometheus.CounterVec
}

// NewMetrics creates and registers the batch counters.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "constraintsim_evaluations_total",
			Help: "Facility files evaluated, by verdict.",
		}, []string{"verdict"}),
		loadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "constraintsim_load_failures_total",
			Help: "Facility files that could not be read or decoded.",
		}),
		triggered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "constraintsim_triggered_rules_total",
			Help: "Rules triggered across evaluated facilities.",
		}, []string{"rule", "category"}),
	}
	m.registry.MustRegister(m.evaluations, m.loadFailures, m.triggered)
	return m
}

// Observe records one entry.
func (m *Metrics) Observe(e Entry) {
	if e.Result == nil {
		m.loadFailures.Inc()
		return
	}
	m.evaluations.WithLabelValues(string(e.Result.Verdict)).Inc()
	for _, name := range e.Result.Disqualifiers {
		m.triggered.WithLabelValues(name, string(rules.CategoryDisqualifier)).Inc()
	}
	for _, name := range e.Result.CautionFlags {
		m.triggered.WithLabelValues(name, string(rules.CategoryCaution)).Inc()
	}
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteFile writes the counters in the Prometheus text format.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}
