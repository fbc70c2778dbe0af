package task

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephjilovec/quantumflow/internal/errors"
)

func quantumTask(t *testing.T, id int, config string) Task {
	t.Helper()
	return Task{ID: id, Type: TypeQuantum, Config: json.RawMessage(config)}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		task     Task
		wantCode errors.ErrorCode
	}{
		{
			name: "valid quantum task",
			task: quantumTask(t, 0, `{"backend":"cirq","shots":100}`),
		},
		{
			name: "valid classical task",
			task: Task{ID: 1, Type: TypeClassical, Config: json.RawMessage(`{"data":[1,2,3]}`)},
		},
		{
			name:     "unknown type",
			task:     Task{ID: 2, Type: "hybrid", Config: json.RawMessage(`{}`)},
			wantCode: errors.ErrCodeCostUnsupportedType,
		},
		{
			name:     "missing config",
			task:     Task{ID: 3, Type: TypeQuantum},
			wantCode: errors.ErrCodeWorkflowInvalidTask,
		},
		{
			name:     "malformed config",
			task:     quantumTask(t, 4, `{"shots":`),
			wantCode: errors.ErrCodeWorkflowInvalidTask,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.HasCode(err, tt.wantCode) {
				t.Errorf("Validate() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestConfigAccessors(t *testing.T) {
	explicit := quantumTask(t, 0, `{"backend":"qiskit","tier":"cloud","shots":200,"depth":5,"circuit":"simple_x"}`)
	if got := explicit.Shots(); got != 200 {
		t.Errorf("Shots() = %d, want 200", got)
	}
	if got := explicit.Depth(); got != 5 {
		t.Errorf("Depth() = %d, want 5", got)
	}
	if got := explicit.Backend(); got != "qiskit" {
		t.Errorf("Backend() = %q, want qiskit", got)
	}
	if got := explicit.Tier(); got != "cloud" {
		t.Errorf("Tier() = %q, want cloud", got)
	}
	if got := explicit.Circuit(); got != "simple_x" {
		t.Errorf("Circuit() = %q, want simple_x", got)
	}
}

func TestConfigDefaults(t *testing.T) {
	bare := quantumTask(t, 0, `{}`)
	if got := bare.Shots(); got != DefaultShots {
		t.Errorf("Shots() = %d, want default %d", got, DefaultShots)
	}
	if got := bare.Depth(); got != DefaultDepth {
		t.Errorf("Depth() = %d, want default %d", got, DefaultDepth)
	}
	if got := bare.Backend(); got != DefaultQuantumBackend {
		t.Errorf("Backend() = %q, want default %q", got, DefaultQuantumBackend)
	}
	if got := bare.Tier(); got != DefaultTier {
		t.Errorf("Tier() = %q, want default %q", got, DefaultTier)
	}

	classical := Task{ID: 1, Type: TypeClassical, Config: json.RawMessage(`{"backend":"cirq"}`)}
	if got := classical.Backend(); got != ClassicalBackend {
		t.Errorf("classical Backend() = %q, want %q regardless of config", got, ClassicalBackend)
	}
	if got := classical.DataSize(); got != 0 {
		t.Errorf("DataSize() = %d, want 0 for absent data", got)
	}
}

func TestData(t *testing.T) {
	task := Task{ID: 0, Type: TypeClassical, Config: json.RawMessage(`{"data":[1.5,2.5,3.0]}`)}
	if got := task.DataSize(); got != 3 {
		t.Errorf("DataSize() = %d, want 3", got)
	}
	data := task.Data()
	want := []float64{1.5, 2.5, 3.0}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("Data()[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestLoadFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.yaml")
	content := `- type: quantum
  config:
    backend: cirq
    tier: simulator
    shots: 100
    depth: 5
- type: classical
  config:
    operation: preprocess
    data: [1, 2, 3]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tasks, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("LoadFile() returned %d tasks, want 2", len(tasks))
	}
	if tasks[0].ID != 0 || tasks[1].ID != 1 {
		t.Error("task IDs should be assigned from position")
	}
	if tasks[0].Type != TypeQuantum || tasks[1].Type != TypeClassical {
		t.Error("task types should follow the file order")
	}
	if got := tasks[0].Shots(); got != 100 {
		t.Errorf("YAML config should normalize to JSON, Shots() = %d", got)
	}
	if got := tasks[1].DataSize(); got != 3 {
		t.Errorf("classical DataSize() = %d, want 3", got)
	}
}

func TestLoadFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	content := `[{"type":"quantum","config":{"backend":"qiskit","tier":"cloud"}}]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tasks, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("LoadFile() returned %d tasks, want 1", len(tasks))
	}
	if got := tasks[0].Backend(); got != "qiskit" {
		t.Errorf("Backend() = %q, want qiskit", got)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.json"))
		if !errors.HasCode(err, errors.ErrCodeConfigNotFound) {
			t.Errorf("error = %v, want CONFIG-001", err)
		}
	})

	t.Run("task without config", func(t *testing.T) {
		path := filepath.Join(dir, "noconfig.json")
		if err := os.WriteFile(path, []byte(`[{"type":"quantum"}]`), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadFile(path)
		if !errors.HasCode(err, errors.ErrCodeWorkflowInvalidTask) {
			t.Errorf("error = %v, want WORKFLOW-002", err)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		path := filepath.Join(dir, "badtype.json")
		if err := os.WriteFile(path, []byte(`[{"type":"hybrid","config":{}}]`), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadFile(path)
		if !errors.HasCode(err, errors.ErrCodeCostUnsupportedType) {
			t.Errorf("error = %v, want COST-001", err)
		}
	})
}

func TestFingerprint(t *testing.T) {
	tasks := []Task{
		quantumTask(t, 0, `{"backend":"cirq","shots":100}`),
		{ID: 1, Type: TypeClassical, Config: json.RawMessage(`{"data":[1,2]}`)},
	}

	fp1, err := Fingerprint(tasks)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	fp2, err := Fingerprint(tasks)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	if fp1 != fp2 {
		t.Error("identical task lists must produce identical fingerprints")
	}

	// Key order inside a config must not matter
	reordered := []Task{
		quantumTask(t, 0, `{"shots":100,"backend":"cirq"}`),
		{ID: 1, Type: TypeClassical, Config: json.RawMessage(`{"data":[1,2]}`)},
	}
	fp3, err := Fingerprint(reordered)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	if fp1 != fp3 {
		t.Error("config key order should not change the fingerprint")
	}

	// Changed content must change the fingerprint
	changed := []Task{
		quantumTask(t, 0, `{"backend":"cirq","shots":200}`),
		{ID: 1, Type: TypeClassical, Config: json.RawMessage(`{"data":[1,2]}`)},
	}
	fp4, err := Fingerprint(changed)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	if fp1 == fp4 {
		t.Error("different task lists should produce different fingerprints")
	}
}
