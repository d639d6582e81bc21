// Package prompush pushes import metrics to a Prometheus Pushgateway. A run
// is a short-lived batch process, so metrics are pushed once at exit instead
// of being scraped.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Ratebah20/HR-plateform-learning/internal/metrics"
)

const defaultGroup = "hrimport"

// Backend is a Prometheus Pushgateway metrics backend. The import job name
// becomes the "import" grouping key.
type Backend struct {
	gatewayURL string
	group      string
	importJob  string
	reg        *prometheus.Registry

	stepCounter   *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	recordCounter *prometheus.CounterVec
	runCounter    *prometheus.CounterVec
}

// NewBackend constructs a backend for importJob pushing to gatewayURL.
func NewBackend(importJob, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}

	reg := prometheus.NewRegistry()
	b := &Backend{
		gatewayURL: gatewayURL,
		group:      defaultGroup,
		importJob:  importJob,
		reg:        reg,
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline state transitions, by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metrics.StepDurationSeconds,
			Help:    "Time spent reaching each pipeline state, in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step", "status"}),
		recordCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RecordsTotal,
			Help: "Record-level counts per kind (read, staged, null_cells, parsed_rows).",
		}, []string{"kind"}),
		runCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RunsTotal,
			Help: "Finished runs by final state.",
		}, []string{"state"}),
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":   b.stepCounter,
		"step histogram": b.stepDuration,
		"record counter": b.recordCounter,
		"run counter":    b.runCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case metrics.RecordsTotal:
		b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)
	case metrics.RunsTotal:
		b.runCounter.WithLabelValues(labels["state"]).Add(delta)
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry, replacing the previous push of the same group.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.group).Gatherer(b.reg)
	if b.importJob != "" {
		p = p.Grouping("import", b.importJob)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}
