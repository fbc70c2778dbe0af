// Package prioritize turns a task graph and per-task costs into a total
// execution order. Strategies are pluggable black boxes behind the
// Prioritizer interface; every strategy must emit a valid topological
// order, deterministically, and treat budget and latency ceilings as soft
// constraints reported through warnings.
package prioritize

import (
	"context"
	"fmt"
	"time"

	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/graph"
)

// Default option values
const (
	// DefaultMaxLatency is the advisory latency ceiling
	DefaultMaxLatency = 600 * time.Second
	// DefaultLatencyScale converts a cost unit into projected seconds
	DefaultLatencyScale = 10.0
)

// Strategy names
const (
	StrategyMinCost  = "mincost"
	StrategyCritical = "critical"
)

// Options carries the scheduling constraints
type Options struct {
	// MaxLatency is a soft ceiling on projected completion time, used as
	// a scheduling hint. Zero selects DefaultMaxLatency.
	MaxLatency time.Duration

	// MaxBudget is a soft ceiling on total cost. Zero means unlimited.
	MaxBudget float64

	// LatencyScale converts cost into projected seconds per task.
	// Zero selects DefaultLatencyScale.
	LatencyScale float64
}

func (o Options) withDefaults() Options {
	if o.MaxLatency == 0 {
		o.MaxLatency = DefaultMaxLatency
	}
	if o.LatencyScale == 0 {
		o.LatencyScale = DefaultLatencyScale
	}
	return o
}

// Placement assigns one task its priority; lower priorities dispatch earlier
type Placement struct {
	TaskID   int `json:"task_id"`
	Priority int `json:"priority"`
}

// WarningKind classifies a soft-constraint overrun
type WarningKind string

const (
	// WarnBudgetExceeded means the total cost is over the budget ceiling
	WarnBudgetExceeded WarningKind = "budget_exceeded"
	// WarnLatencyExceeded means projected latency is over the latency ceiling
	WarnLatencyExceeded WarningKind = "latency_exceeded"
)

// Warning reports a soft-constraint overrun. The schedule is still usable;
// the caller decides whether to proceed.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Actual float64     `json:"actual"`
	Limit  float64     `json:"limit"`
}

// String renders the warning for logs and CLI output
func (w Warning) String() string {
	switch w.Kind {
	case WarnBudgetExceeded:
		return fmt.Sprintf("estimated cost %.4f exceeds budget %.4f", w.Actual, w.Limit)
	case WarnLatencyExceeded:
		return fmt.Sprintf("projected latency %.1fs exceeds ceiling %.1fs", w.Actual, w.Limit)
	default:
		return string(w.Kind)
	}
}

// Result is a complete prioritization outcome
type Result struct {
	Order     []Placement `json:"order"`
	TotalCost float64     `json:"total_cost"`
	Warnings  []Warning   `json:"warnings,omitempty"`
}

// Prioritizer produces a total execution order for a task graph
type Prioritizer interface {
	// Name returns the strategy name
	Name() string

	// Prioritize emits a topological total order over the graph. For every
	// dependency edge u -> v, priority(u) < priority(v). Identical inputs
	// yield identical output.
	Prioritize(ctx context.Context, g *graph.Graph, costs map[int]float64, opts Options) (*Result, error)
}

// New returns the built-in strategy with the given name
func New(strategy string) (Prioritizer, error) {
	switch strategy {
	case "", StrategyMinCost:
		return &MinCost{}, nil
	case StrategyCritical:
		return &Critical{}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownStrategy, "unknown prioritizer strategy %q", strategy).
			WithSuggestion("Use one of: mincost, critical")
	}
}

// checkCosts verifies every graph node has a cost. A gap is an internal
// contract breach between the cost model and the prioritizer.
func checkCosts(g *graph.Graph, costs map[int]float64) error {
	for _, t := range g.Tasks() {
		if _, ok := costs[t.ID]; !ok {
			return fmt.Errorf("no cost estimate for task %d", t.ID)
		}
	}
	return nil
}

// collectWarnings compares totals against the soft ceilings
func collectWarnings(totalCost float64, opts Options) []Warning {
	var warnings []Warning

	if opts.MaxBudget > 0 && totalCost > opts.MaxBudget {
		warnings = append(warnings, Warning{
			Kind:   WarnBudgetExceeded,
			Actual: totalCost,
			Limit:  opts.MaxBudget,
		})
	}

	projected := totalCost * opts.LatencyScale
	if opts.MaxLatency > 0 && projected > opts.MaxLatency.Seconds() {
		warnings = append(warnings, Warning{
			Kind:   WarnLatencyExceeded,
			Actual: projected,
			Limit:  opts.MaxLatency.Seconds(),
		})
	}

	return warnings
}
