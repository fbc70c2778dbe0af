package backend

import (
	"context"

	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/task"
)

// Classical executes classical tasks locally. The only supported
// operation today is preprocess, which reduces config.data to summary
// statistics for downstream quantum tasks.
type Classical struct{}

// NewClassical creates the local classical executor
func NewClassical() *Classical {
	return &Classical{}
}

// Name implements Executor
func (e *Classical) Name() string { return task.ClassicalBackend }

// Execute implements Executor
func (e *Classical) Execute(ctx context.Context, t task.Task) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	op := t.Operation()
	if op == "" {
		return nil, errors.Newf(errors.ErrCodeExecUnknownOperation, "task %d has no operation", t.ID)
	}

	switch op {
	case "preprocess":
		data := t.Data()
		var sum float64
		for _, v := range data {
			sum += v
		}
		mean := 0.0
		if len(data) > 0 {
			mean = sum / float64(len(data))
		}
		return &Result{
			Backend: e.Name(),
			Payload: map[string]any{
				"operation": op,
				"count":     len(data),
				"mean":      mean,
			},
		}, nil

	default:
		return nil, errors.Newf(errors.ErrCodeExecUnknownOperation,
			"task %d has unsupported operation %q", t.ID, op)
	}
}

var _ Executor = (*Classical)(nil)
