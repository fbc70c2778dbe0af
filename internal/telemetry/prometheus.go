package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus records task metrics into a Prometheus registry
type Prometheus struct {
	taskExecutions *prometheus.CounterVec
	taskRuntime    *prometheus.HistogramVec
	taskShots      *prometheus.HistogramVec
	taskDepth      *prometheus.HistogramVec
}

// NewPrometheus creates a Prometheus recorder with all metrics registered
func NewPrometheus(registry prometheus.Registerer) *Prometheus {
	factory := promauto.With(registry)

	return &Prometheus{
		taskExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantumflow_task_executions_total",
				Help: "Total number of dispatched task executions",
			},
			[]string{"backend", "status"},
		),
		taskRuntime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantumflow_task_runtime_seconds",
				Help:    "Task execution runtime in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0},
			},
			[]string{"backend"},
		),
		taskShots: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantumflow_task_shots",
				Help:    "Shot counts of executed quantum tasks",
				Buckets: prometheus.ExponentialBuckets(10, 4, 8),
			},
			[]string{"backend"},
		),
		taskDepth: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantumflow_task_depth",
				Help:    "Circuit depth of executed quantum tasks",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"backend"},
		),
	}
}

// RecordTask implements Recorder
func (p *Prometheus) RecordTask(m TaskMetrics) {
	p.taskExecutions.WithLabelValues(m.Backend, m.Status).Inc()
	p.taskRuntime.WithLabelValues(m.Backend).Observe(m.Runtime.Seconds())
	if m.Shots > 0 {
		p.taskShots.WithLabelValues(m.Backend).Observe(float64(m.Shots))
	}
	if m.Depth > 0 {
		p.taskDepth.WithLabelValues(m.Backend).Observe(float64(m.Depth))
	}
}

var _ Recorder = (*Prometheus)(nil)
