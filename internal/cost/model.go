// Package cost estimates the monetary cost of workflow tasks. Estimates
// are pure functions of (type, config): quantum tasks price by shots and
// circuit depth against a per-backend pricing catalog, classical tasks by
// data volume.
package cost

import (
	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/task"
)

// FallbackPolicy controls what happens when a task cannot be estimated.
// The policy applies uniformly to every caller: the standalone estimate
// surface and the scheduling path behave identically.
type FallbackPolicy string

const (
	// FallbackError fails the estimate with the underlying error
	FallbackError FallbackPolicy = "error"
	// FallbackDefault substitutes the configured default cost
	FallbackDefault FallbackPolicy = "default"
)

// DefaultCost is the documented substitute cost under FallbackDefault
const DefaultCost = 1.0

// Options configures a Model
type Options struct {
	// Catalog is the pricing catalog; nil selects DefaultCatalog
	Catalog Catalog

	// ClassicalRate is the cost per data element for classical tasks;
	// zero selects DefaultClassicalRate
	ClassicalRate float64

	// OnError selects the fallback policy; empty selects FallbackError
	OnError FallbackPolicy

	// DefaultCost is the substitute under FallbackDefault; zero selects DefaultCost
	DefaultCost float64
}

// Model estimates task costs. It holds no mutable state and is safe for
// concurrent use.
type Model struct {
	catalog       Catalog
	classicalRate float64
	onError       FallbackPolicy
	defaultCost   float64
}

// NewModel creates a cost model from the given options
func NewModel(opts Options) *Model {
	m := &Model{
		catalog:       opts.Catalog,
		classicalRate: opts.ClassicalRate,
		onError:       opts.OnError,
		defaultCost:   opts.DefaultCost,
	}
	if m.catalog == nil {
		m.catalog = DefaultCatalog()
	}
	if m.classicalRate == 0 {
		m.classicalRate = DefaultClassicalRate
	}
	if m.onError == "" {
		m.onError = FallbackError
	}
	if m.defaultCost == 0 {
		m.defaultCost = DefaultCost
	}
	return m
}

// TaskEstimate is the per-task entry in a workflow estimate
type TaskEstimate struct {
	TaskID  int     `json:"task_id"`
	Backend string  `json:"backend"`
	Tier    string  `json:"tier"`
	Cost    float64 `json:"cost"`
}

// WorkflowEstimate aggregates the cost of a whole workflow
type WorkflowEstimate struct {
	TotalCost float64        `json:"total_cost"`
	Breakdown []TaskEstimate `json:"breakdown"`
}

// EstimateTask returns the estimated cost of one task. Unestimable tasks
// fail with a coded error under FallbackError, or yield the default cost
// under FallbackDefault.
func (m *Model) EstimateTask(t task.Task) (float64, error) {
	c, err := m.estimate(t)
	if err != nil && m.onError == FallbackDefault {
		return m.defaultCost, nil
	}
	return c, err
}

// estimate computes the raw cost with no fallback applied
func (m *Model) estimate(t task.Task) (float64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	switch t.Type {
	case task.TypeQuantum:
		backend, tier := t.Backend(), t.Tier()
		if _, ok := m.catalog[backend]; !ok {
			return 0, errors.NewUnsupportedBackendError(backend)
		}
		rate, ok := m.catalog.Lookup(backend, tier)
		if !ok {
			return 0, errors.Newf(errors.ErrCodeCostUnsupportedTier,
				"backend %s has no pricing tier %q", backend, tier)
		}
		shots, depth := t.Shots(), t.Depth()
		if shots < 0 || depth < 0 {
			return 0, errors.Newf(errors.ErrCodeCostInvalidConfig,
				"task %d has negative shots or depth", t.ID)
		}
		return float64(shots)*rate.PerShot + float64(depth)*rate.PerDepth, nil

	case task.TypeClassical:
		return float64(t.DataSize()) * m.classicalRate, nil

	default:
		return 0, errors.NewUnsupportedTypeError(t.ID, string(t.Type))
	}
}

// EstimateWorkflow estimates every task and the workflow total. The whole
// call fails if any task estimate fails; there are no partial totals.
func (m *Model) EstimateWorkflow(tasks []task.Task) (*WorkflowEstimate, error) {
	est := &WorkflowEstimate{
		Breakdown: make([]TaskEstimate, 0, len(tasks)),
	}

	for _, t := range tasks {
		c, err := m.EstimateTask(t)
		if err != nil {
			return nil, err
		}
		est.Breakdown = append(est.Breakdown, TaskEstimate{
			TaskID:  t.ID,
			Backend: t.Backend(),
			Tier:    t.Tier(),
			Cost:    c,
		})
		est.TotalCost += c
	}

	return est, nil
}
