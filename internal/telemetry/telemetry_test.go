package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNopRecorder(t *testing.T) {
	// Must not panic with zero values
	Nop{}.RecordTask(TaskMetrics{})
}

func TestPrometheusRecorder(t *testing.T) {
	registry := prometheus.NewRegistry()
	rec := NewPrometheus(registry)

	rec.RecordTask(TaskMetrics{
		WorkflowID: 1,
		TaskID:     0,
		Backend:    "cirq",
		Status:     "completed",
		Runtime:    50 * time.Millisecond,
		Shots:      100,
		Depth:      5,
	})
	rec.RecordTask(TaskMetrics{
		WorkflowID: 1,
		TaskID:     1,
		Backend:    "cirq",
		Status:     "failed",
		Runtime:    time.Millisecond,
	})

	if got := testutil.ToFloat64(rec.taskExecutions.WithLabelValues("cirq", "completed")); got != 1 {
		t.Errorf("completed executions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.taskExecutions.WithLabelValues("cirq", "failed")); got != 1 {
		t.Errorf("failed executions = %v, want 1", got)
	}

	// Classical tasks with zero shots/depth record no histogram samples
	count, err := testutil.GatherAndCount(registry, "quantumflow_task_shots")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("shots histogram series = %d, want 1", count)
	}
}
