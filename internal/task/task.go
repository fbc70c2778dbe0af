package task

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/josephjilovec/quantumflow/internal/errors"
)

// Type identifies the kind of work a task performs
type Type string

const (
	// TypeClassical is a classical pre/post-processing task
	TypeClassical Type = "classical"
	// TypeQuantum is a quantum circuit execution task
	TypeQuantum Type = "quantum"
)

// Valid reports whether the type is one of the known task types
func (t Type) Valid() bool {
	return t == TypeClassical || t == TypeQuantum
}

// Default configuration values applied when a field is absent.
// Callers may omit tuning fields for a first estimate.
const (
	DefaultShots = 100
	DefaultDepth = 10

	// DefaultQuantumBackend is assumed for quantum tasks without a backend field
	DefaultQuantumBackend = "cirq"
	// ClassicalBackend routes classical tasks to the local executor
	ClassicalBackend = "local"
	// DefaultTier is the pricing tier assumed when none is given
	DefaultTier = "simulator"
)

// Task is one unit of work in a workflow. ID is the 0-based position in
// submission order. Config is an open JSON object interpreted by the cost
// model and the executing backend. Tasks are immutable once submitted for
// a scheduling run.
type Task struct {
	ID     int             `json:"id"`
	Type   Type            `json:"type"`
	Config json.RawMessage `json:"config"`
}

// Validate checks the task has a known type and a config object
func (t Task) Validate() error {
	if !t.Type.Valid() {
		return errors.NewUnsupportedTypeError(t.ID, string(t.Type))
	}
	if len(t.Config) == 0 {
		return errors.Newf(errors.ErrCodeWorkflowInvalidTask, "task %d has no config", t.ID)
	}
	if !gjson.ValidBytes(t.Config) {
		return errors.Newf(errors.ErrCodeWorkflowInvalidTask, "task %d config is not valid JSON", t.ID)
	}
	return nil
}

// Shots returns the configured shot count, defaulting to DefaultShots
func (t Task) Shots() int {
	if v := gjson.GetBytes(t.Config, "shots"); v.Exists() {
		return int(v.Int())
	}
	return DefaultShots
}

// Depth returns the configured circuit depth, defaulting to DefaultDepth
func (t Task) Depth() int {
	if v := gjson.GetBytes(t.Config, "depth"); v.Exists() {
		return int(v.Int())
	}
	return DefaultDepth
}

// Backend returns the backend the task should run on. Quantum tasks
// default to DefaultQuantumBackend; classical tasks always run locally.
func (t Task) Backend() string {
	if t.Type == TypeClassical {
		return ClassicalBackend
	}
	if v := gjson.GetBytes(t.Config, "backend"); v.Exists() {
		return v.String()
	}
	return DefaultQuantumBackend
}

// Tier returns the pricing tier (simulator or cloud), defaulting to DefaultTier
func (t Task) Tier() string {
	if v := gjson.GetBytes(t.Config, "tier"); v.Exists() {
		return v.String()
	}
	return DefaultTier
}

// DataSize returns the number of elements in config.data, 0 when absent
func (t Task) DataSize() int {
	v := gjson.GetBytes(t.Config, "data")
	if !v.IsArray() {
		return 0
	}
	return len(v.Array())
}

// Data returns config.data as a float slice for classical processing
func (t Task) Data() []float64 {
	v := gjson.GetBytes(t.Config, "data")
	if !v.IsArray() {
		return nil
	}
	items := v.Array()
	data := make([]float64, len(items))
	for i, item := range items {
		data[i] = item.Float()
	}
	return data
}

// Operation returns the classical operation name, empty when absent
func (t Task) Operation() string {
	return gjson.GetBytes(t.Config, "operation").String()
}

// Circuit returns the quantum circuit name, empty when absent
func (t Task) Circuit() string {
	return gjson.GetBytes(t.Config, "circuit").String()
}

// String returns a short description for logs
func (t Task) String() string {
	return fmt.Sprintf("task %d (%s on %s)", t.ID, t.Type, t.Backend())
}
