// Package backend defines the executor interface the dispatcher routes
// tasks through, a registry of named executors, and the bundled reference
// executors. The scheduler never interprets executor internals; it only
// sees a Result or an error.
package backend

import (
	"context"

	"github.com/josephjilovec/quantumflow/internal/task"
)

// Result is the outcome of one task execution. Payload is backend-specific
// and the backend name is echoed back for the caller.
type Result struct {
	Backend string `json:"backend"`
	Payload any    `json:"payload"`
}

// Executor runs one task on a specific backend
type Executor interface {
	// Name returns the backend name tasks are routed by
	Name() string

	// Execute runs one task and returns its result, honoring ctx cancellation
	Execute(ctx context.Context, t task.Task) (*Result, error)
}
