package scheduler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephjilovec/quantumflow/internal/cost"
	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/prioritize"
	"github.com/josephjilovec/quantumflow/internal/store"
	"github.com/josephjilovec/quantumflow/internal/task"
	"github.com/josephjilovec/quantumflow/internal/workflow"
)

func fixture(t *testing.T) (workflow.Store, *store.Store, int64) {
	t.Helper()
	dir := t.TempDir()

	workflows, err := workflow.NewFileStore(dir)
	require.NoError(t, err)

	st, err := store.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	id, err := workflows.Create("hybrid", []task.Task{
		{ID: 0, Type: task.TypeQuantum, Config: json.RawMessage(`{"backend":"cirq","shots":100,"depth":5}`)},
		{ID: 1, Type: task.TypeClassical, Config: json.RawMessage(`{"operation":"preprocess","data":[1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20]}`)},
	})
	require.NoError(t, err)

	return workflows, st, id
}

func TestScheduleWorkflowPersistsRecords(t *testing.T) {
	workflows, st, id := fixture(t)

	s, err := New(workflows, st, Options{})
	require.NoError(t, err)

	res, err := s.ScheduleWorkflow(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "mincost", res.Strategy)
	assert.NotEmpty(t, res.Fingerprint)
	assert.Len(t, res.Order, 2)
	// cirq simulator: 100*0.0001 + 5*0.001, classical: 20*0.1
	assert.InDelta(t, 2.015, res.Estimate.TotalCost, 1e-9)

	sched, err := st.Get(id)
	require.NoError(t, err)
	assert.Equal(t, res.Fingerprint, sched.Fingerprint)
	require.Len(t, sched.Records, 2)
	for i, rec := range sched.Records {
		assert.Equal(t, i, rec.Priority)
		assert.Equal(t, store.StatusPending, rec.Status)
	}
	assert.Equal(t, "cirq", sched.Records[0].Backend)
	assert.Equal(t, "local", sched.Records[1].Backend)
}

func TestScheduleWorkflowUnknownWorkflow(t *testing.T) {
	workflows, st, _ := fixture(t)

	s, err := New(workflows, st, Options{})
	require.NoError(t, err)

	_, err = s.ScheduleWorkflow(context.Background(), 999)
	assert.True(t, errors.HasCode(err, errors.ErrCodeWorkflowNotFound))
}

func TestScheduleWorkflowWarnsOverBudget(t *testing.T) {
	workflows, st, id := fixture(t)

	s, err := New(workflows, st, Options{
		Constraints: prioritize.Options{MaxBudget: 0.5},
	})
	require.NoError(t, err)

	res, err := s.ScheduleWorkflow(context.Background(), id)
	require.NoError(t, err, "budget overruns warn, they never fail the schedule")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, prioritize.WarnBudgetExceeded, res.Warnings[0].Kind)

	_, err = st.Get(id)
	assert.NoError(t, err, "the schedule is persisted despite the warning")
}

func TestScheduleWorkflowEstimateFailureLeavesStoreUntouched(t *testing.T) {
	workflows, st, id := fixture(t)

	s, err := New(workflows, st, Options{
		Model: cost.NewModel(cost.Options{
			Catalog: cost.Catalog{}, // no rates: every quantum estimate fails
			OnError: cost.FallbackError,
		}),
	})
	require.NoError(t, err)

	_, err = s.ScheduleWorkflow(context.Background(), id)
	require.Error(t, err)

	_, err = st.Get(id)
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreNotFound),
		"a failed pipeline must not persist a partial schedule")
}

func TestNewUnknownStrategy(t *testing.T) {
	workflows, st, _ := fixture(t)

	_, err := New(workflows, st, Options{Strategy: "genetic"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownStrategy))
}

func TestEstimateDoesNotPersist(t *testing.T) {
	workflows, st, id := fixture(t)

	s, err := New(workflows, st, Options{Strategy: prioritize.StrategyCritical})
	require.NoError(t, err)

	est, err := s.Estimate(id)
	require.NoError(t, err)
	assert.InDelta(t, 2.015, est.TotalCost, 1e-9)

	_, err = st.Get(id)
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreNotFound))
}

func TestStatusWithoutSchedule(t *testing.T) {
	workflows, st, id := fixture(t)

	s, err := New(workflows, st, Options{})
	require.NoError(t, err)

	_, err = s.Status(id)
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreNotFound))
}
