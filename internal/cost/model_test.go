package cost

import (
	"encoding/json"
	"testing"

	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/task"
)

func qt(id int, config string) task.Task {
	return task.Task{ID: id, Type: task.TypeQuantum, Config: json.RawMessage(config)}
}

func ct(id int, config string) task.Task {
	return task.Task{ID: id, Type: task.TypeClassical, Config: json.RawMessage(config)}
}

func TestEstimateTask(t *testing.T) {
	model := NewModel(Options{})

	tests := []struct {
		name string
		task task.Task
		want float64
	}{
		{
			name: "cirq simulator with explicit fields",
			task: qt(0, `{"backend":"cirq","tier":"simulator","shots":100,"depth":5}`),
			want: 100*0.0001 + 5*0.001, // 0.015
		},
		{
			name: "qiskit cloud",
			task: qt(1, `{"backend":"qiskit","tier":"cloud","shots":200,"depth":10}`),
			want: 200*0.008 + 10*0.04, // 2.0
		},
		{
			name: "pennylane simulator",
			task: qt(2, `{"backend":"pennylane","tier":"simulator","shots":1000,"depth":20}`),
			want: 1000*0.00008 + 20*0.0008,
		},
		{
			name: "quantum defaults applied",
			task: qt(3, `{}`), // cirq simulator, shots=100, depth=10
			want: 100*0.0001 + 10*0.001,
		},
		{
			name: "classical by data size",
			task: ct(4, `{"data":[1,2,3,4,5]}`),
			want: 5 * DefaultClassicalRate,
		},
		{
			name: "classical with no data",
			task: ct(5, `{"operation":"preprocess"}`),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.EstimateTask(tt.task)
			if err != nil {
				t.Fatalf("EstimateTask() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("EstimateTask() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateTaskErrors(t *testing.T) {
	model := NewModel(Options{})

	tests := []struct {
		name     string
		task     task.Task
		wantCode errors.ErrorCode
	}{
		{
			name:     "unknown type",
			task:     task.Task{ID: 0, Type: "hybrid", Config: json.RawMessage(`{}`)},
			wantCode: errors.ErrCodeCostUnsupportedType,
		},
		{
			name:     "unknown backend",
			task:     qt(1, `{"backend":"ionq"}`),
			wantCode: errors.ErrCodeCostUnsupportedBackend,
		},
		{
			name:     "unknown tier",
			task:     qt(2, `{"backend":"cirq","tier":"hardware"}`),
			wantCode: errors.ErrCodeCostUnsupportedTier,
		},
		{
			name:     "missing config",
			task:     task.Task{ID: 3, Type: task.TypeQuantum},
			wantCode: errors.ErrCodeWorkflowInvalidTask,
		},
		{
			name:     "negative shots",
			task:     qt(4, `{"shots":-5}`),
			wantCode: errors.ErrCodeCostInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.EstimateTask(tt.task)
			if !errors.HasCode(err, tt.wantCode) {
				t.Errorf("EstimateTask() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestEstimateDeterminism(t *testing.T) {
	model := NewModel(Options{})
	input := qt(0, `{"backend":"qiskit","tier":"cloud","shots":137,"depth":13}`)

	first, err := model.EstimateTask(input)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := model.EstimateTask(input)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("estimate changed between calls: %v vs %v", first, again)
		}
	}
}

func TestFallbackDefault(t *testing.T) {
	model := NewModel(Options{OnError: FallbackDefault, DefaultCost: 1.0})

	// An unestimable task yields the default cost instead of an error
	got, err := model.EstimateTask(qt(0, `{"backend":"ionq"}`))
	if err != nil {
		t.Fatalf("EstimateTask() under FallbackDefault error: %v", err)
	}
	if got != 1.0 {
		t.Errorf("EstimateTask() = %v, want default cost 1.0", got)
	}

	// The workflow path behaves identically (no silent divergence between callers)
	est, err := model.EstimateWorkflow([]task.Task{
		qt(0, `{"backend":"cirq","tier":"simulator","shots":100,"depth":5}`),
		qt(1, `{"backend":"ionq"}`),
	})
	if err != nil {
		t.Fatalf("EstimateWorkflow() under FallbackDefault error: %v", err)
	}
	if est.Breakdown[1].Cost != 1.0 {
		t.Errorf("breakdown[1].Cost = %v, want 1.0", est.Breakdown[1].Cost)
	}
}

func TestEstimateWorkflow(t *testing.T) {
	model := NewModel(Options{})
	tasks := []task.Task{
		qt(0, `{"backend":"cirq","tier":"simulator","shots":100,"depth":5}`),
		qt(1, `{"backend":"qiskit","tier":"cloud","shots":200,"depth":10}`),
	}

	est, err := model.EstimateWorkflow(tasks)
	if err != nil {
		t.Fatalf("EstimateWorkflow() error: %v", err)
	}

	if len(est.Breakdown) != 2 {
		t.Fatalf("breakdown has %d entries, want 2", len(est.Breakdown))
	}
	if est.Breakdown[0].Cost != 0.015 {
		t.Errorf("breakdown[0].Cost = %v, want 0.015", est.Breakdown[0].Cost)
	}
	if est.Breakdown[1].Cost != 2.0 {
		t.Errorf("breakdown[1].Cost = %v, want 2.0", est.Breakdown[1].Cost)
	}
	if est.TotalCost != 2.015 {
		t.Errorf("TotalCost = %v, want 2.015", est.TotalCost)
	}
}

func TestEstimateWorkflowFailsWhole(t *testing.T) {
	model := NewModel(Options{})
	tasks := []task.Task{
		qt(0, `{"backend":"cirq"}`),
		qt(1, `{"backend":"ionq"}`), // unsupported
	}

	est, err := model.EstimateWorkflow(tasks)
	if err == nil {
		t.Fatal("EstimateWorkflow() should fail when any task estimate fails")
	}
	if est != nil {
		t.Error("no partial totals should be returned on failure")
	}
}

func TestCatalogMerge(t *testing.T) {
	catalog := DefaultCatalog()
	catalog.Merge(Catalog{
		"cirq":   {"simulator": {PerShot: 0.5, PerDepth: 0.5}},
		"custom": {"cloud": {PerShot: 1, PerDepth: 2}},
	})

	rate, ok := catalog.Lookup("cirq", "simulator")
	if !ok || rate.PerShot != 0.5 {
		t.Errorf("override not applied, got %+v", rate)
	}
	if _, ok := catalog.Lookup("cirq", "cloud"); !ok {
		t.Error("merge should keep untouched tiers")
	}
	if _, ok := catalog.Lookup("custom", "cloud"); !ok {
		t.Error("merge should add new backends")
	}
}
