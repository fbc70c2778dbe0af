// Package telemetry records post-hoc execution facts. The scheduler core
// never depends on it: components accept a Recorder and callers may pass
// Nop to disable recording entirely.
package telemetry

import (
	"time"
)

// TaskMetrics are the facts recorded after one task execution
type TaskMetrics struct {
	WorkflowID int64
	TaskID     int
	Backend    string
	Status     string
	Runtime    time.Duration
	Shots      int
	Depth      int
}

// Recorder receives task metrics
type Recorder interface {
	RecordTask(m TaskMetrics)
}

// Nop is a Recorder that drops everything
type Nop struct{}

// RecordTask implements Recorder
func (Nop) RecordTask(TaskMetrics) {}

var _ Recorder = Nop{}
