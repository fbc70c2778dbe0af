// Package dispatch executes persisted schedules. Records are walked in
// ascending priority order, routed to the executor matching their backend,
// and their status is advanced transactionally as each task finishes. One
// task's failure never aborts the run: the report always carries exactly
// one outcome per scheduled task.
package dispatch

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/josephjilovec/quantumflow/internal/backend"
	"github.com/josephjilovec/quantumflow/internal/graph"
	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/log"
	"github.com/josephjilovec/quantumflow/internal/store"
	"github.com/josephjilovec/quantumflow/internal/task"
	"github.com/josephjilovec/quantumflow/internal/telemetry"
	"github.com/josephjilovec/quantumflow/internal/workflow"
)

// Failure is the structured failure marker for one task outcome
type Failure struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Outcome is the result of one scheduled task within a run. Either
// Payload (success) or Failure is set. Prior marks records that were
// already terminal before this run; they are echoed, not re-executed.
type Outcome struct {
	TaskID  int           `json:"task_id"`
	Backend string        `json:"backend"`
	Status  store.Status  `json:"status"`
	Payload any           `json:"payload,omitempty"`
	Failure *Failure      `json:"failure,omitempty"`
	Prior   bool          `json:"prior,omitempty"`
	Runtime time.Duration `json:"runtime_ns"`
}

// Report aggregates one dispatch run. Outcomes holds exactly one entry
// per schedule record.
type Report struct {
	RunID      string          `json:"run_id"`
	WorkflowID int64           `json:"workflow_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Outcomes   map[int]Outcome `json:"outcomes"`
}

// Counts returns how many outcomes completed and failed
func (r *Report) Counts() (completed, failed int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case store.StatusCompleted:
			completed++
		case store.StatusFailed:
			failed++
		}
	}
	return completed, failed
}

// Options configures a Dispatcher
type Options struct {
	// Recorder receives post-hoc task metrics; nil selects telemetry.Nop
	Recorder telemetry.Recorder

	// Workers bounds intra-workflow concurrency. Values <= 1 dispatch
	// strictly serially in priority order.
	Workers int

	// Logger defaults to the process-wide logger
	Logger *log.Logger
}

// Dispatcher drives execution of persisted schedules
type Dispatcher struct {
	store     *store.Store
	workflows workflow.Store
	registry  *backend.Registry
	recorder  telemetry.Recorder
	workers   int
	logger    *log.Logger
}

// New creates a Dispatcher over the given collaborators
func New(st *store.Store, workflows workflow.Store, registry *backend.Registry, opts Options) *Dispatcher {
	d := &Dispatcher{
		store:     st,
		workflows: workflows,
		registry:  registry,
		recorder:  opts.Recorder,
		workers:   opts.Workers,
		logger:    opts.Logger,
	}
	if d.recorder == nil {
		d.recorder = telemetry.Nop{}
	}
	if d.workers < 1 {
		d.workers = 1
	}
	if d.logger == nil {
		d.logger = log.DefaultLogger()
	}
	return d
}

// Run executes the persisted schedule for a workflow. On context
// cancellation the partial report is returned alongside the context
// error; statuses already persisted stay as they are.
func (d *Dispatcher) Run(ctx context.Context, workflowID int64) (*Report, error) {
	sched, err := d.store.Get(workflowID)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeStoreNotFound) {
			return nil, errors.Wrap(errors.ErrCodeDispatchNoSchedule,
				"workflow has not been scheduled", err)
		}
		return nil, err
	}

	tasks, err := d.workflows.Tasks(workflowID)
	if err != nil {
		return nil, err
	}

	fp, err := task.Fingerprint(tasks)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDispatchStaleSchedule, "fingerprint task list", err)
	}
	if sched.Fingerprint != "" && sched.Fingerprint != fp {
		return nil, errors.Newf(errors.ErrCodeDispatchStaleSchedule,
			"schedule for workflow %d was made for a different task list", workflowID).
			WithSuggestion("Re-run 'qflow schedule' to rebuild the schedule")
	}

	byID := make(map[int]task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	report := &Report{
		RunID:      uuid.NewString(),
		WorkflowID: workflowID,
		StartedAt:  time.Now().UTC(),
		Outcomes:   make(map[int]Outcome, len(sched.Records)),
	}

	logger := d.logger.With("workflow_id", workflowID, "run_id", report.RunID)
	logger.Info("dispatch started", "tasks", len(sched.Records), "workers", d.workers)

	if d.workers > 1 {
		err = d.runConcurrent(ctx, logger, sched, byID, report)
	} else {
		err = d.runSerial(ctx, logger, sched, byID, report)
	}
	report.FinishedAt = time.Now().UTC()
	if err != nil {
		return report, err
	}

	completed, failed := report.Counts()
	logger.Info("dispatch finished", "completed", completed, "failed", failed)

	if failed == 0 && completed == len(sched.Records) {
		if err := d.workflows.SetStatus(workflowID, workflow.StatusCompleted); err != nil {
			logger.WithError(err).Warn("could not mark workflow completed")
		}
	}

	return report, nil
}

// runSerial walks records strictly in priority order, persisting each
// status before moving to the next record.
func (d *Dispatcher) runSerial(ctx context.Context, logger *log.Logger, sched *store.Schedule, byID map[int]task.Task, report *Report) error {
	for _, rec := range sched.Records {
		if err := ctx.Err(); err != nil {
			return err
		}

		if rec.Status.Terminal() {
			report.Outcomes[rec.TaskID] = priorOutcome(rec)
			continue
		}

		outcome := d.executeOne(ctx, logger, sched.WorkflowID, rec, byID)
		if err := d.store.AdvanceStatus(sched.WorkflowID, rec.TaskID, outcome.Status); err != nil {
			return err
		}
		report.Outcomes[rec.TaskID] = outcome
	}
	return nil
}

// runConcurrent dispatches mutually independent tasks concurrently under
// a bounded worker pool. A task starts only once all of its prerequisites
// are terminal; a prerequisite's failure does not cascade. Status
// persistence stays in this goroutine so the store sees one writer per run.
func (d *Dispatcher) runConcurrent(ctx context.Context, logger *log.Logger, sched *store.Schedule, byID map[int]task.Task, report *Report) error {
	g, err := graphFor(sched, byID)
	if err != nil {
		return err
	}

	recByID := make(map[int]store.Record, len(sched.Records))
	pending := make(map[int]int, len(sched.Records))
	for _, rec := range sched.Records {
		recByID[rec.TaskID] = rec
		pending[rec.TaskID] = len(g.Deps(rec.TaskID))
	}

	done := make(chan Outcome, len(sched.Records))
	sem := make(chan struct{}, d.workers)
	finished := make(map[int]bool, len(sched.Records))
	inflight := 0
	totalDone := 0

	dispatch := func(rec store.Record) {
		inflight++
		go func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			done <- d.executeOne(ctx, logger, sched.WorkflowID, rec, byID)
		}()
	}

	finish := func(taskID int) {
		finished[taskID] = true
		totalDone++
	}

	// Prior terminal records count as finished immediately so their
	// dependents can start.
	for _, rec := range sched.Records {
		if rec.Status.Terminal() {
			report.Outcomes[rec.TaskID] = priorOutcome(rec)
			finish(rec.TaskID)
			for _, succ := range g.Dependents(rec.TaskID) {
				pending[succ]--
			}
		}
	}

	// Records are priority-sorted, so ready tasks start lowest priority first
	for _, rec := range sched.Records {
		if !finished[rec.TaskID] && pending[rec.TaskID] == 0 {
			dispatch(rec)
		}
	}

	for totalDone < len(sched.Records) {
		if inflight == 0 {
			// Remaining tasks are unreachable; with an acyclic graph this
			// only happens when dispatching stopped on cancellation.
			return ctx.Err()
		}

		outcome := <-done
		inflight--
		finish(outcome.TaskID)

		if err := d.store.AdvanceStatus(sched.WorkflowID, outcome.TaskID, outcome.Status); err != nil {
			for inflight > 0 {
				<-done
				inflight--
			}
			return err
		}
		report.Outcomes[outcome.TaskID] = outcome

		if ctx.Err() != nil {
			continue // drain inflight, dispatch nothing new
		}

		for _, succ := range g.Dependents(outcome.TaskID) {
			if finished[succ] {
				continue
			}
			pending[succ]--
			if pending[succ] == 0 {
				dispatch(recByID[succ])
			}
		}
	}

	return ctx.Err()
}

// executeOne routes one record to its executor and converts any failure
// into a per-task failure marker. It never returns an error.
func (d *Dispatcher) executeOne(ctx context.Context, logger *log.Logger, workflowID int64, rec store.Record, byID map[int]task.Task) Outcome {
	outcome := Outcome{TaskID: rec.TaskID, Backend: rec.Backend}
	start := time.Now()

	t, ok := byID[rec.TaskID]
	if !ok {
		outcome.Status = store.StatusFailed
		outcome.Failure = &Failure{
			Code:    errors.ErrCodeDispatchStaleSchedule,
			Message: "no task definition for scheduled record",
		}
		return outcome
	}

	exec, ok := d.registry.Get(rec.Backend)
	if !ok {
		outcome.Status = store.StatusFailed
		outcome.Failure = &Failure{
			Code:    errors.ErrCodeDispatchUnsupportedBackend,
			Message: "no executor registered for backend " + rec.Backend,
		}
		logger.Warn("no executor for backend", "task_id", rec.TaskID, "backend", rec.Backend)
	} else if res, err := exec.Execute(ctx, t); err != nil {
		code := errors.CodeOf(err)
		if code == "" {
			code = errors.ErrCodeExecFailed
		}
		outcome.Status = store.StatusFailed
		outcome.Failure = &Failure{Code: code, Message: err.Error()}
		logger.WithError(err).Warn("task execution failed", "task_id", rec.TaskID, "backend", rec.Backend)
	} else {
		outcome.Status = store.StatusCompleted
		outcome.Payload = res.Payload
		logger.Debug("task completed", "task_id", rec.TaskID, "backend", rec.Backend)
	}

	outcome.Runtime = time.Since(start)
	d.recorder.RecordTask(telemetry.TaskMetrics{
		WorkflowID: workflowID,
		TaskID:     rec.TaskID,
		Backend:    rec.Backend,
		Status:     string(outcome.Status),
		Runtime:    outcome.Runtime,
		Shots:      t.Shots(),
		Depth:      t.Depth(),
	})

	return outcome
}

// graphFor rebuilds the dependency graph the schedule was made against.
// Task IDs are positional, so sorting by ID recovers the definition order.
func graphFor(sched *store.Schedule, byID map[int]task.Task) (*graph.Graph, error) {
	tasks := make([]task.Task, 0, len(byID))
	for _, t := range byID {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	g, err := graph.Build(tasks)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDispatchStaleSchedule,
			"rebuild dependency graph", err)
	}
	for _, rec := range sched.Records {
		if _, ok := g.Task(rec.TaskID); !ok {
			return nil, errors.Newf(errors.ErrCodeDispatchStaleSchedule,
				"scheduled task %d has no definition", rec.TaskID)
		}
	}
	return g, nil
}

func priorOutcome(rec store.Record) Outcome {
	return Outcome{
		TaskID:  rec.TaskID,
		Backend: rec.Backend,
		Status:  rec.Status,
		Prior:   true,
	}
}
