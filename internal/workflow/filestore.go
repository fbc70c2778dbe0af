package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/graph"
	"github.com/josephjilovec/quantumflow/internal/task"
)

// FileStore is the reference Store implementation: one JSON document per
// workflow under <dir>/workflows. IDs are assigned sequentially.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore opens a file-backed workflow store rooted at dir
func NewFileStore(dir string) (*FileStore, error) {
	wfDir := filepath.Join(dir, "workflows")
	if err := os.MkdirAll(wfDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeWorkflowStorage, "open workflow store", err)
	}
	return &FileStore{dir: wfDir}, nil
}

// Create implements Store. Every task must carry a type and a config, and
// the task list must form a valid dependency graph; nothing is persisted
// when validation fails.
func (s *FileStore) Create(name string, tasks []task.Task) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, errors.New(errors.ErrCodeWorkflowInvalidTask, "workflow name is required")
	}
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return 0, err
		}
	}
	if _, err := graph.Build(tasks); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextID()
	if err != nil {
		return 0, err
	}

	def := &Definition{
		ID:        id,
		Name:      name,
		Status:    StatusCreated,
		Tasks:     tasks,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.write(def); err != nil {
		return 0, err
	}

	return id, nil
}

// Get implements Store
func (s *FileStore) Get(id int64) (*Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// Tasks implements Store
func (s *FileStore) Tasks(id int64) ([]task.Task, error) {
	def, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return def.Tasks, nil
}

// SetStatus implements Store
func (s *FileStore) SetStatus(id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, err := s.read(id)
	if err != nil {
		return err
	}
	def.Status = status
	return s.write(def)
}

// List implements Store
func (s *FileStore) List() ([]Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeWorkflowStorage, "list workflows", err)
	}

	var defs []Definition
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(entry.Name(), ".json"), 10, 64)
		if err != nil {
			continue
		}
		def, err := s.read(id)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}

// nextID scans existing documents for the highest ID. Callers must hold
// the mutex.
func (s *FileStore) nextID() (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeWorkflowStorage, "scan workflows", err)
	}

	var max int64
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(entry.Name(), ".json"), 10, 64)
		if err == nil && id > max {
			max = id
		}
	}
	return max + 1, nil
}

func (s *FileStore) path(id int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.json", id))
}

// read loads one definition. Callers must hold the mutex.
func (s *FileStore) read(id int64) (*Definition, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewWorkflowNotFoundError(id)
		}
		return nil, errors.Wrap(errors.ErrCodeWorkflowStorage, "read workflow", err)
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrap(errors.ErrCodeWorkflowStorage, "decode workflow", err)
	}
	return &def, nil
}

// write persists one definition atomically. Callers must hold the mutex.
func (s *FileStore) write(def *Definition) error {
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeWorkflowStorage, "encode workflow", err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".%d-*.tmp", def.ID))
	if err != nil {
		return errors.Wrap(errors.ErrCodeWorkflowStorage, "write workflow", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeWorkflowStorage, "write workflow", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeWorkflowStorage, "write workflow", err)
	}

	if err := os.Rename(tmpName, s.path(def.ID)); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.ErrCodeWorkflowStorage, "commit workflow", err)
	}

	return nil
}

// Compile-time verification that FileStore implements Store
var _ Store = (*FileStore)(nil)
