package task

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/josephjilovec/quantumflow/internal/errors"
)

// taskSpec is the on-disk shape of one task in a task file. IDs are
// assigned from position, so the file carries only type and config.
type taskSpec struct {
	Type   string         `json:"type" yaml:"type"`
	Config map[string]any `json:"config" yaml:"config"`
}

// LoadFile reads an ordered task list from a JSON or YAML file. YAML input
// is normalized to canonical JSON configs so the rest of the system only
// ever sees JSON.
func LoadFile(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrCodeConfigNotFound, "task file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "read task file", err)
	}

	var specs []taskSpec
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &specs)
	default:
		err = json.Unmarshal(data, &specs)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "parse task file", err)
	}

	return fromSpecs(specs)
}

// fromSpecs converts parsed task specs into validated tasks with
// position-assigned IDs.
func fromSpecs(specs []taskSpec) ([]Task, error) {
	tasks := make([]Task, len(specs))
	for i, spec := range specs {
		if spec.Config == nil {
			return nil, errors.Newf(errors.ErrCodeWorkflowInvalidTask, "task %d has no config", i)
		}
		raw, err := json.Marshal(spec.Config)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "encode task config", err)
		}
		tasks[i] = Task{
			ID:     i,
			Type:   Type(spec.Type),
			Config: raw,
		}
		if err := tasks[i].Validate(); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}
