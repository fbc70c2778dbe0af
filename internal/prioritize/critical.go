package prioritize

import (
	"context"

	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/graph"
)

// Critical orders tasks by critical-path slack: a forward/backward pass
// over projected per-task latencies computes how much each task can be
// delayed without delaying the workflow, and tasks with the least slack
// dispatch first. On a linear chain this matches submission order; on
// wider graphs it minimizes makespan when the dispatcher runs independent
// tasks concurrently.
type Critical struct{}

// Name implements Prioritizer
func (s *Critical) Name() string { return StrategyCritical }

// Prioritize implements Prioritizer
func (s *Critical) Prioritize(ctx context.Context, g *graph.Graph, costs map[int]float64, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	if err := checkCosts(g, costs); err != nil {
		return nil, errors.NewOptimizerFailureError(s.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewOptimizerFailureError(s.Name(), err)
	}

	slack := computeSlack(g, costs, opts.LatencyScale)

	order, err := orderByKey(g, func(id int) float64 { return slack[id] })
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

// computeSlack runs the critical path method over projected latencies.
// Latency per task is cost * scale; slack = latest start - earliest start.
func computeSlack(g *graph.Graph, costs map[int]float64, scale float64) map[int]float64 {
	topo := g.TopoOrder()
	duration := make(map[int]float64, len(topo))
	for _, id := range topo {
		duration[id] = costs[id] * scale
	}

	// Forward pass: earliest start and finish
	earliestStart := make(map[int]float64, len(topo))
	earliestFinish := make(map[int]float64, len(topo))
	var makespan float64
	for _, id := range topo {
		var es float64
		for _, dep := range g.Deps(id) {
			if earliestFinish[dep] > es {
				es = earliestFinish[dep]
			}
		}
		earliestStart[id] = es
		earliestFinish[id] = es + duration[id]
		if earliestFinish[id] > makespan {
			makespan = earliestFinish[id]
		}
	}

	// Backward pass: latest finish and start
	latestFinish := make(map[int]float64, len(topo))
	slack := make(map[int]float64, len(topo))
	for i := len(topo) - 1; i >= 0; i-- {
		id := topo[i]
		lf := makespan
		for _, succ := range g.Dependents(id) {
			succLS := latestFinish[succ] - duration[succ]
			if succLS < lf {
				lf = succLS
			}
		}
		latestFinish[id] = lf
		slack[id] = lf - duration[id] - earliestStart[id]
	}

	return slack
}
