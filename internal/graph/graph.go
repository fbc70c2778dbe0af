package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/task"
)

// Graph is a directed acyclic dependency graph over a workflow's tasks.
// Nodes are task IDs; an edge u -> v means v depends on u. The graph is
// read-only once built.
type Graph struct {
	tasks      []task.Task
	deps       map[int][]int // task -> prerequisites
	dependents map[int][]int // task -> tasks depending on it
	order      []int         // cached topological order
}

// Build constructs the linear-chain graph: each task depends on its
// immediate predecessor in submission order.
func Build(tasks []task.Task) (*Graph, error) {
	deps := make(map[int][]int, len(tasks))
	for i := range tasks {
		if i > 0 {
			deps[tasks[i].ID] = []int{tasks[i-1].ID}
		}
	}
	return BuildWithDeps(tasks, deps)
}

// BuildWithDeps constructs a graph with an explicit prerequisite list per
// task. The linear chain produced by Build is one valid instance. Fails on
// an empty task list, duplicate task IDs, prerequisites that name unknown
// tasks, and any cycle.
func BuildWithDeps(tasks []task.Task, deps map[int][]int) (*Graph, error) {
	if len(tasks) == 0 {
		return nil, errors.NewEmptyTaskListError()
	}

	known := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		if known[t.ID] {
			return nil, errors.Newf(errors.ErrCodeGraphDuplicateTask, "duplicate task id %d", t.ID)
		}
		known[t.ID] = true
	}

	g := &Graph{
		tasks:      tasks,
		deps:       make(map[int][]int, len(tasks)),
		dependents: make(map[int][]int, len(tasks)),
	}
	for id, prereqs := range deps {
		if !known[id] {
			return nil, errors.Newf(errors.ErrCodeGraphUnknownDep, "dependency list names unknown task %d", id)
		}
		for _, dep := range prereqs {
			if !known[dep] {
				return nil, errors.Newf(errors.ErrCodeGraphUnknownDep, "task %d depends on unknown task %d", id, dep)
			}
			g.deps[id] = append(g.deps[id], dep)
			g.dependents[dep] = append(g.dependents[dep], id)
		}
	}
	for id := range g.deps {
		sort.Ints(g.deps[id])
	}
	for id := range g.dependents {
		sort.Ints(g.dependents[id])
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	g.order = order

	return g, nil
}

// Len returns the number of tasks in the graph
func (g *Graph) Len() int {
	return len(g.tasks)
}

// Tasks returns the tasks in submission order
func (g *Graph) Tasks() []task.Task {
	return g.tasks
}

// Task returns the task with the given ID
func (g *Graph) Task(id int) (task.Task, bool) {
	for _, t := range g.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// Deps returns the prerequisite task IDs of the given task
func (g *Graph) Deps(id int) []int {
	return g.deps[id]
}

// Dependents returns the IDs of tasks that depend on the given task
func (g *Graph) Dependents(id int) []int {
	return g.dependents[id]
}

// TopoOrder returns a deterministic topological order of the task IDs.
// Ready tasks are emitted smallest ID first.
func (g *Graph) TopoOrder() []int {
	return g.order
}

// checkAcyclic runs a DFS over the dependency edges and reports the first
// cycle found, with the cycle path in the error message.
func (g *Graph) checkAcyclic() error {
	visited := make(map[int]bool)
	recStack := make(map[int]bool)

	var visit func(id int, path []int) error
	visit = func(id int, path []int) error {
		visited[id] = true
		recStack[id] = true
		path = append(path, id)

		for _, dep := range g.deps[id] {
			if !visited[dep] {
				if err := visit(dep, path); err != nil {
					return err
				}
			} else if recStack[dep] {
				cycle := append(path, dep)
				parts := make([]string, len(cycle))
				for i, n := range cycle {
					parts[i] = fmt.Sprintf("%d", n)
				}
				return errors.NewCyclicDependencyError(strings.Join(parts, " -> "))
			}
		}

		recStack[id] = false
		return nil
	}

	for _, t := range g.tasks {
		if !visited[t.ID] {
			if err := visit(t.ID, nil); err != nil {
				return err
			}
		}
	}

	return nil
}

// topoSort performs Kahn's algorithm, keeping the ready set sorted by
// task ID for determinism.
func (g *Graph) topoSort() ([]int, error) {
	inDegree := make(map[int]int, len(g.tasks))
	for _, t := range g.tasks {
		inDegree[t.ID] = len(g.deps[t.ID])
	}

	var ready []int
	for _, t := range g.tasks {
		if inDegree[t.ID] == 0 {
			ready = append(ready, t.ID)
		}
	}
	sort.Ints(ready)

	order := make([]int, 0, len(g.tasks))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var newReady []int
		for _, succ := range g.dependents[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		sort.Ints(newReady)
		ready = append(ready, newReady...)
	}

	if len(order) != len(g.tasks) {
		return nil, errors.Newf(errors.ErrCodeGraphCyclicDep,
			"topological sort failed: %d of %d tasks sorted", len(order), len(g.tasks))
	}

	return order, nil
}
