// Package store persists workflow schedules. Each workflow's schedule is
// one JSON document under the data directory, written atomically so a
// batch upsert never leaves a mix of old and new priorities. The store is
// the only owner of schedule state; all mutation goes through Upsert and
// AdvanceStatus.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/josephjilovec/quantumflow/internal/errors"
)

// Status is the lifecycle state of a scheduled task
type Status string

const (
	// StatusPending means the task has not been dispatched yet
	StatusPending Status = "pending"
	// StatusCompleted means the task executed successfully
	StatusCompleted Status = "completed"
	// StatusFailed means the task execution failed
	StatusFailed Status = "failed"
)

// Valid reports whether the status is one of the known states
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusFailed
}

// Terminal reports whether the status is absorbing. Terminal records never
// change status again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Record is one scheduled task. The primary key is (workflowID, taskID);
// lower priorities dispatch earlier.
type Record struct {
	TaskID   int    `json:"task_id"`
	Backend  string `json:"backend"`
	Priority int    `json:"priority"`
	Status   Status `json:"status"`
}

// Schedule is the full set of records for one workflow
type Schedule struct {
	WorkflowID  int64     `json:"workflow_id"`
	Fingerprint string    `json:"fingerprint"`
	UpdatedAt   time.Time `json:"updated_at"`
	Records     []Record  `json:"records"`
}

// Store is a durable schedule store backed by JSON files. A single mutex
// serializes writers; the whole document is the critical section, so the
// last committed write wins.
type Store struct {
	mu  sync.Mutex
	dir string
}

// Open acquires a store handle rooted at the given directory, creating it
// if needed. The handle should be passed explicitly into each component
// that needs it and released with Close at session end.
func Open(dir string) (*Store, error) {
	schedDir := filepath.Join(dir, "schedules")
	if err := os.MkdirAll(schedDir, 0755); err != nil {
		return nil, errors.NewStorageFailureError("open", err)
	}
	return &Store{dir: schedDir}, nil
}

// Close releases the store handle. File-backed stores hold no open
// resources, but callers must treat the handle as invalid afterwards.
func (s *Store) Close() error {
	return nil
}

// Upsert replaces the schedule for a workflow with the given records.
// Records keyed by an existing (workflowID, taskID) are overwritten, not
// appended; the write is atomic for the whole batch.
func (s *Store) Upsert(workflowID int64, fingerprint string, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]bool, len(records))
	for _, r := range records {
		if seen[r.TaskID] {
			return errors.Newf(errors.ErrCodeStoreInvalidRecord,
				"duplicate task id %d in upsert batch", r.TaskID)
		}
		seen[r.TaskID] = true
		if !r.Status.Valid() {
			return errors.Newf(errors.ErrCodeStoreInvalidRecord,
				"task %d has invalid status %q", r.TaskID, r.Status)
		}
	}

	sched := &Schedule{
		WorkflowID:  workflowID,
		Fingerprint: fingerprint,
		UpdatedAt:   time.Now().UTC(),
		Records:     sortedByPriority(records),
	}

	return s.write(sched)
}

// Get returns the schedule for a workflow, records ordered by ascending
// priority. Returns STORE-001 when no schedule exists.
func (s *Store) Get(workflowID int64) (*Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(workflowID)
}

// AdvanceStatus moves one record to a new status and persists the change
// before returning. Transitions out of a terminal state, and transitions
// back to pending, are rejected with STORE-002 and leave the record
// unchanged.
func (s *Store) AdvanceStatus(workflowID int64, taskID int, next Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !next.Valid() {
		return errors.Newf(errors.ErrCodeStoreInvalidRecord, "invalid status %q", next)
	}

	sched, err := s.read(workflowID)
	if err != nil {
		return err
	}

	idx := -1
	for i, r := range sched.Records {
		if r.TaskID == taskID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errors.Newf(errors.ErrCodeStoreNotFound,
			"workflow %d has no scheduled task %d", workflowID, taskID)
	}

	current := sched.Records[idx].Status
	if current.Terminal() {
		return errors.Newf(errors.ErrCodeStoreInvalidTransition,
			"task %d is already %s", taskID, current)
	}
	if next == StatusPending {
		return errors.Newf(errors.ErrCodeStoreInvalidTransition,
			"task %d cannot revert to pending", taskID)
	}

	sched.Records[idx].Status = next
	sched.UpdatedAt = time.Now().UTC()

	return s.write(sched)
}

// path returns the document path for a workflow
func (s *Store) path(workflowID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.json", workflowID))
}

// read loads a schedule document. Callers must hold the mutex.
func (s *Store) read(workflowID int64) (*Schedule, error) {
	data, err := os.ReadFile(s.path(workflowID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewScheduleNotFoundError(workflowID)
		}
		return nil, errors.NewStorageFailureError("read", err)
	}

	var sched Schedule
	if err := json.Unmarshal(data, &sched); err != nil {
		return nil, errors.NewStorageFailureError("decode", err)
	}
	sched.Records = sortedByPriority(sched.Records)

	return &sched, nil
}

// write persists a schedule document atomically: the document is written
// to a temp file in the same directory and renamed over the target.
// Callers must hold the mutex.
func (s *Store) write(sched *Schedule) error {
	data, err := json.MarshalIndent(sched, "", "  ")
	if err != nil {
		return errors.NewStorageFailureError("encode", err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".%d-*.tmp", sched.WorkflowID))
	if err != nil {
		return errors.NewStorageFailureError("write", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewStorageFailureError("write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewStorageFailureError("write", err)
	}

	if err := os.Rename(tmpName, s.path(sched.WorkflowID)); err != nil {
		os.Remove(tmpName)
		return errors.NewStorageFailureError("commit", err)
	}

	return nil
}

func sortedByPriority(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}
