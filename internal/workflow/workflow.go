// Package workflow stores workflow definitions: named, ordered task lists.
// The scheduler and dispatcher only ever read task lists through the Store
// interface; the file-backed implementation here is the reference
// collaborator and can be swapped for a real database.
package workflow

import (
	"time"

	"github.com/josephjilovec/quantumflow/internal/task"
)

// Workflow statuses
const (
	// StatusCreated means the workflow is defined but not fully executed
	StatusCreated = "created"
	// StatusCompleted means a dispatch run finished with every task successful
	StatusCompleted = "completed"
)

// Definition is one stored workflow
type Definition struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Status    string      `json:"status"`
	Tasks     []task.Task `json:"tasks"`
	CreatedAt time.Time   `json:"created_at"`
}

// Store provides access to workflow definitions
type Store interface {
	// Create validates and persists a new workflow, returning its ID
	Create(name string, tasks []task.Task) (int64, error)

	// Get returns a workflow definition by ID
	Get(id int64) (*Definition, error)

	// Tasks returns the ordered task list of a workflow
	Tasks(id int64) ([]task.Task, error)

	// SetStatus updates the workflow-level status
	SetStatus(id int64, status string) error

	// List returns all workflow definitions ordered by ID
	List() ([]Definition, error)
}
