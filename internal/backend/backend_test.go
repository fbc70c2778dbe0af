package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/task"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(NewSimulator("cirq")); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	if _, ok := r.Get("cirq"); !ok {
		t.Error("Get(cirq) should find the registered executor")
	}
	if _, ok := r.Get("ionq"); ok {
		t.Error("Get(ionq) should not find anything")
	}

	err := r.Register(NewSimulator("cirq"))
	if !errors.HasCode(err, errors.ErrCodeExecDuplicateBackend) {
		t.Errorf("duplicate Register() error = %v, want EXEC-004", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	want := []string{"cirq", "local", "pennylane", "qiskit"}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClassicalPreprocess(t *testing.T) {
	e := NewClassical()
	tk := task.Task{
		ID:     0,
		Type:   task.TypeClassical,
		Config: json.RawMessage(`{"operation":"preprocess","data":[2,4,6]}`),
	}

	res, err := e.Execute(context.Background(), tk)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Backend != "local" {
		t.Errorf("Backend = %q, want local", res.Backend)
	}

	payload := res.Payload.(map[string]any)
	if payload["mean"] != 4.0 {
		t.Errorf("mean = %v, want 4.0", payload["mean"])
	}
	if payload["count"] != 3 {
		t.Errorf("count = %v, want 3", payload["count"])
	}
}

func TestClassicalErrors(t *testing.T) {
	e := NewClassical()

	tests := []struct {
		name     string
		config   string
		wantCode errors.ErrorCode
	}{
		{name: "no operation", config: `{"data":[1]}`, wantCode: errors.ErrCodeExecUnknownOperation},
		{name: "unknown operation", config: `{"operation":"transmogrify"}`, wantCode: errors.ErrCodeExecUnknownOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := task.Task{ID: 0, Type: task.TypeClassical, Config: json.RawMessage(tt.config)}
			_, err := e.Execute(context.Background(), tk)
			if !errors.HasCode(err, tt.wantCode) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestSimulatorCircuits(t *testing.T) {
	e := NewSimulator("cirq")

	tests := []struct {
		name       string
		config     string
		wantStates []string
	}{
		{
			name:       "simple_x all ones",
			config:     `{"circuit":"simple_x","shots":100}`,
			wantStates: []string{"1"},
		},
		{
			name:       "bell state two outcomes",
			config:     `{"circuit":"bell_state","shots":1000}`,
			wantStates: []string{"00", "11"},
		},
		{
			name:       "ghz state three qubits",
			config:     `{"circuit":"ghz_state","shots":1000}`,
			wantStates: []string{"000", "111"},
		},
		{
			name:       "default circuit when absent",
			config:     `{"shots":50}`,
			wantStates: []string{"1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := task.Task{ID: 0, Type: task.TypeQuantum, Config: json.RawMessage(tt.config)}
			res, err := e.Execute(context.Background(), tk)
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if res.Backend != "cirq" {
				t.Errorf("Backend = %q, want cirq", res.Backend)
			}

			payload := res.Payload.(map[string]any)
			counts := payload["counts"].(map[string]int)
			total := 0
			for _, state := range tt.wantStates {
				total += counts[state]
			}
			if total != tk.Shots() {
				t.Errorf("counts %v sum to %d over states %v, want %d",
					counts, total, tt.wantStates, tk.Shots())
			}
		})
	}
}

func TestSimulatorDeterminism(t *testing.T) {
	e := NewSimulator("qiskit")
	tk := task.Task{ID: 0, Type: task.TypeQuantum, Config: json.RawMessage(`{"circuit":"bell_state","shots":500}`)}

	first, err := e.Execute(context.Background(), tk)
	if err != nil {
		t.Fatal(err)
	}
	again, err := e.Execute(context.Background(), tk)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(first.Payload) != fmt.Sprint(again.Payload) {
		t.Error("identical tasks must sample identical counts")
	}
}

func TestSimulatorUnsupportedCircuit(t *testing.T) {
	e := NewSimulator("cirq")
	tk := task.Task{ID: 0, Type: task.TypeQuantum, Config: json.RawMessage(`{"circuit":"shor"}`)}

	_, err := e.Execute(context.Background(), tk)
	if !errors.HasCode(err, errors.ErrCodeExecUnsupportedCircuit) {
		t.Errorf("Execute() error = %v, want EXEC-002", err)
	}
}

func TestSimulatorCancelledContext(t *testing.T) {
	e := NewSimulator("cirq")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tk := task.Task{ID: 0, Type: task.TypeQuantum, Config: json.RawMessage(`{}`)}
	if _, err := e.Execute(ctx, tk); err == nil {
		t.Error("Execute() should fail on a cancelled context")
	}
}
