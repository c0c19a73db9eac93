// Package metrics exposes Prometheus collectors for analyses and batches.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "matchsense"

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

type Metrics struct {
	registry *prometheus.Registry

	analyses  *prometheus.CounterVec
	durations prometheus.Histogram
	overall   prometheus.Histogram
	batchSize prometheus.Gauge
	batches   *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Number of resume analyses by outcome.",
			},
			[]string{"status"},
		),
		durations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a single resume analysis.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		overall: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Distribution of overall compatibility scores.",
			Buckets:   []float64{20, 40, 60, 80, 100},
		}),
		batchSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of resumes in the last ranked batch.",
		}),
		batches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_total",
				Help:      "Number of ranked batches by outcome.",
			},
			[]string{"status"},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveAnalysis records one analysis. The score is only observed for
// analyses that produced a result.
func (m *Metrics) ObserveAnalysis(status string, duration time.Duration, overall float64) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(status).Inc()
	m.durations.Observe(duration.Seconds())
	if status != StatusFailed {
		m.overall.Observe(overall)
	}
}

// ObserveBatch records a finished batch of size n. Cancelled batches are
// counted as failed.
func (m *Metrics) ObserveBatch(n int, cancelled bool) {
	if m == nil {
		return
	}
	m.batchSize.Set(float64(n))
	status := StatusOK
	if cancelled {
		status = StatusFailed
	}
	m.batches.WithLabelValues(status).Inc()
}

// WriteTextfile writes every collector in the Prometheus text format, for
// node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %q: %w", path, err)
	}
	return nil
}
