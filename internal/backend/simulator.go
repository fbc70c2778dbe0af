package backend

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/task"
)

// Supported circuit names. No circuit compilation or simulation happens
// here; the simulator fakes measurement statistics deterministically so
// the scheduler pipeline can be exercised end to end.
const (
	// CircuitSimpleX is a single-qubit X gate: every shot measures 1
	CircuitSimpleX = "simple_x"
	// CircuitBell is a two-qubit Bell pair: shots split between 00 and 11
	CircuitBell = "bell_state"
	// CircuitGHZ is a three-qubit GHZ state: shots split between 000 and 111
	CircuitGHZ = "ghz_state"
)

// Simulator fakes a quantum backend. Sampling noise is derived from a
// blake3 hash of (backend, circuit, shots), so identical tasks always
// produce identical counts.
type Simulator struct {
	name string
}

// NewSimulator creates a simulator executor for the given backend name
func NewSimulator(name string) *Simulator {
	return &Simulator{name: name}
}

// Name implements Executor
func (e *Simulator) Name() string { return e.name }

// Execute implements Executor
func (e *Simulator) Execute(ctx context.Context, t task.Task) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	circuit := t.Circuit()
	if circuit == "" {
		circuit = CircuitSimpleX
	}
	shots := t.Shots()
	if shots <= 0 {
		return nil, errors.Newf(errors.ErrCodeExecFailed, "task %d has no shots to sample", t.ID)
	}

	var counts map[string]int
	switch circuit {
	case CircuitSimpleX:
		counts = map[string]int{"1": shots}
	case CircuitBell:
		counts = e.split(circuit, shots, 2)
	case CircuitGHZ:
		counts = e.split(circuit, shots, 3)
	default:
		return nil, errors.Newf(errors.ErrCodeExecUnsupportedCircuit,
			"task %d has unsupported circuit %q", t.ID, circuit)
	}

	return &Result{
		Backend: e.name,
		Payload: map[string]any{
			"circuit": circuit,
			"shots":   shots,
			"counts":  counts,
		},
	}, nil
}

// split divides shots between the all-zeros and all-ones outcomes of an
// entangled state, with a small deterministic skew around 50/50.
func (e *Simulator) split(circuit string, shots, qubits int) map[string]int {
	hasher := blake3.New()
	fmt.Fprintf(hasher, "%s/%s/%d", e.name, circuit, shots)
	digest := hasher.Sum(nil)

	// Skew up to ±5% of shots either way
	skewRange := shots / 10
	var skew int
	if skewRange > 0 {
		skew = int(binary.BigEndian.Uint32(digest[:4])%uint32(skewRange)) - skewRange/2
	}

	zeros := shots/2 + skew
	if zeros < 0 {
		zeros = 0
	}
	if zeros > shots {
		zeros = shots
	}

	return map[string]int{
		strings.Repeat("0", qubits): zeros,
		strings.Repeat("1", qubits): shots - zeros,
	}
}

var _ Executor = (*Simulator)(nil)
