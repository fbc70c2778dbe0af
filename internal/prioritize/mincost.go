package prioritize

import (
	"container/heap"
	"context"

	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/graph"
)

// MinCost is the default strategy: a Kahn loop with a ready min-heap keyed
// by (cost, task ID). Cheap tasks dispatch first, so partial budget is
// spent on the most results, and dependencies are always respected because
// only ready tasks ever enter the heap.
type MinCost struct{}

// Name implements Prioritizer
func (s *MinCost) Name() string { return StrategyMinCost }

// Prioritize implements Prioritizer
func (s *MinCost) Prioritize(ctx context.Context, g *graph.Graph, costs map[int]float64, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	if err := checkCosts(g, costs); err != nil {
		return nil, errors.NewOptimizerFailureError(s.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewOptimizerFailureError(s.Name(), err)
	}

	order, err := orderByKey(g, func(id int) float64 { return costs[id] })
	if err != nil {
		return nil, errors.NewOptimizerFailureError(s.Name(), err)
	}

	var total float64
	for _, c := range costs {
		total += c
	}

	return &Result{
		Order:     order,
		TotalCost: total,
		Warnings:  collectWarnings(total, opts),
	}, nil
}

// orderByKey runs Kahn's algorithm with a ready min-heap keyed by
// (key(id), id). The tie-break on task ID makes the order deterministic.
func orderByKey(g *graph.Graph, key func(id int) float64) ([]Placement, error) {
	inDegree := make(map[int]int, g.Len())
	ready := &readyHeap{key: key}
	for _, t := range g.Tasks() {
		inDegree[t.ID] = len(g.Deps(t.ID))
		if inDegree[t.ID] == 0 {
			heap.Push(ready, t.ID)
		}
	}

	order := make([]Placement, 0, g.Len())
	for ready.Len() > 0 {
		id := heap.Pop(ready).(int)
		order = append(order, Placement{TaskID: id, Priority: len(order)})

		for _, succ := range g.Dependents(id) {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				heap.Push(ready, succ)
			}
		}
	}

	if len(order) != g.Len() {
		return nil, errors.Newf(errors.ErrCodeGraphCyclicDep,
			"ordering incomplete: %d of %d tasks placed", len(order), g.Len())
	}

	return order, nil
}

// readyHeap is a min-heap of ready task IDs ordered by (key, id)
type readyHeap struct {
	ids []int
	key func(id int) float64
}

func (h *readyHeap) Len() int { return len(h.ids) }

func (h *readyHeap) Less(i, j int) bool {
	ki, kj := h.key(h.ids[i]), h.key(h.ids[j])
	if ki != kj {
		return ki < kj
	}
	return h.ids[i] < h.ids[j]
}

func (h *readyHeap) Swap(i, j int) { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }

func (h *readyHeap) Push(x any) { h.ids = append(h.ids, x.(int)) }

func (h *readyHeap) Pop() any {
	old := h.ids
	n := len(old)
	id := old[n-1]
	h.ids = old[:n-1]
	return id
}
