// Package scheduler is the facade over the scheduling pipeline: it loads a
// workflow's task list, builds the dependency graph, estimates costs,
// prioritizes, and persists the resulting schedule in one call. Nothing is
// persisted unless the whole pipeline succeeds.
package scheduler

import (
	"context"

	"github.com/josephjilovec/quantumflow/internal/cost"
	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/graph"
	"github.com/josephjilovec/quantumflow/internal/log"
	"github.com/josephjilovec/quantumflow/internal/prioritize"
	"github.com/josephjilovec/quantumflow/internal/store"
	"github.com/josephjilovec/quantumflow/internal/task"
	"github.com/josephjilovec/quantumflow/internal/workflow"
)

// Options configures a Scheduler
type Options struct {
	// Model estimates task costs; nil selects the default catalog and rates
	Model *cost.Model

	// Strategy names the prioritizer; empty selects mincost
	Strategy string

	// Constraints are the soft budget and latency ceilings
	Constraints prioritize.Options

	// Logger defaults to the process-wide logger
	Logger *log.Logger
}

// Scheduler wires the pipeline stages together
type Scheduler struct {
	workflows   workflow.Store
	store       *store.Store
	model       *cost.Model
	prioritizer prioritize.Prioritizer
	constraints prioritize.Options
	logger      *log.Logger
}

// New creates a Scheduler. Fails with SCHED-002 on an unknown strategy.
func New(workflows workflow.Store, st *store.Store, opts Options) (*Scheduler, error) {
	p, err := prioritize.New(opts.Strategy)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		workflows:   workflows,
		store:       st,
		model:       opts.Model,
		prioritizer: p,
		constraints: opts.Constraints,
		logger:      opts.Logger,
	}
	if s.model == nil {
		s.model = cost.NewModel(cost.Options{})
	}
	if s.logger == nil {
		s.logger = log.DefaultLogger()
	}
	return s, nil
}

// ScheduleResult is the outcome of one scheduling pass
type ScheduleResult struct {
	WorkflowID  int64                  `json:"workflow_id"`
	Strategy    string                 `json:"strategy"`
	Fingerprint string                 `json:"fingerprint"`
	Estimate    *cost.WorkflowEstimate `json:"estimate"`
	Order       []prioritize.Placement `json:"order"`
	Warnings    []prioritize.Warning   `json:"warnings,omitempty"`
}

// ScheduleWorkflow runs the full pipeline for one workflow and persists the
// schedule. Budget and latency overruns surface as warnings on the result,
// never as errors; any pipeline failure leaves the previous schedule intact.
func (s *Scheduler) ScheduleWorkflow(ctx context.Context, workflowID int64) (*ScheduleResult, error) {
	tasks, err := s.workflows.Tasks(workflowID)
	if err != nil {
		return nil, err
	}

	g, err := graph.Build(tasks)
	if err != nil {
		return nil, err
	}

	estimate, err := s.model.EstimateWorkflow(tasks)
	if err != nil {
		return nil, err
	}

	costs := make(map[int]float64, len(estimate.Breakdown))
	for _, te := range estimate.Breakdown {
		costs[te.TaskID] = te.Cost
	}

	result, err := s.prioritizer.Prioritize(ctx, g, costs, s.constraints)
	if err != nil {
		return nil, err
	}

	fingerprint, err := task.Fingerprint(tasks)
	if err != nil {
		return nil, errors.NewOptimizerFailureError(s.prioritizer.Name(), err)
	}

	records := make([]store.Record, 0, len(result.Order))
	for _, p := range result.Order {
		t, ok := g.Task(p.TaskID)
		if !ok {
			return nil, errors.NewOptimizerFailureError(s.prioritizer.Name(),
				errors.Newf(errors.ErrCodeOptimizerFailure, "placement for unknown task %d", p.TaskID))
		}
		records = append(records, store.Record{
			TaskID:   p.TaskID,
			Backend:  t.Backend(),
			Priority: p.Priority,
			Status:   store.StatusPending,
		})
	}

	if err := s.store.Upsert(workflowID, fingerprint, records); err != nil {
		return nil, err
	}

	logger := s.logger.With("workflow_id", workflowID, "strategy", s.prioritizer.Name())
	logger.Info("workflow scheduled",
		"tasks", len(records), "total_cost", result.TotalCost)
	for _, w := range result.Warnings {
		logger.Warn("schedule constraint exceeded", "warning", w.String())
	}

	return &ScheduleResult{
		WorkflowID:  workflowID,
		Strategy:    s.prioritizer.Name(),
		Fingerprint: fingerprint,
		Estimate:    estimate,
		Order:       result.Order,
		Warnings:    result.Warnings,
	}, nil
}

// Estimate runs cost estimation for a workflow without touching the store
func (s *Scheduler) Estimate(workflowID int64) (*cost.WorkflowEstimate, error) {
	tasks, err := s.workflows.Tasks(workflowID)
	if err != nil {
		return nil, err
	}
	return s.model.EstimateWorkflow(tasks)
}

// Status returns the persisted schedule for a workflow
func (s *Scheduler) Status(workflowID int64) (*store.Schedule, error) {
	return s.store.Get(workflowID)
}

// Close releases the schedule store handle
func (s *Scheduler) Close() error {
	return s.store.Close()
}
