// Package eval scores solutions and candidate moves. Cost is a weighted sum
// of distance, vehicle usage, and constraint-violation penalties; the penalty
// weights dominate plausible distance savings so the search can pass through
// infeasible intermediate states while still preferring feasible results.
//
// The evaluator also carries the guided-local-search arc penalties the
// improver uses for diversification. Guided costs are for move selection
// only; best-solution tracking always uses the true cost.
package eval

import (
	"lpgroute/internal/config"
	"lpgroute/internal/problem"
	"lpgroute/internal/solution"
)

type arc struct{ from, to int }

// Evaluator scores routes and solutions for one problem instance.
type Evaluator struct {
	in        *problem.Instance
	w         config.Costs
	lambda    float64
	penalties map[arc]int
}

// New builds an evaluator with empty diversification penalties.
func New(in *problem.Instance) *Evaluator {
	return &Evaluator{
		in:        in,
		w:         in.Config.Costs,
		lambda:    in.Config.Solver.PenaltyLambda,
		penalties: make(map[arc]int),
	}
}

// RouteCost is the true cost of one route: weighted distance plus violation
// penalties. Vehicle and unassigned costs live at the solution level.
func (e *Evaluator) RouteCost(r *solution.Route) float64 {
	c := e.w.DistanceWeight * r.DistanceKm
	for _, v := range r.Violations {
		c += e.violationCost(v)
	}
	return c
}

func (e *Evaluator) violationCost(v solution.Violation) float64 {
	switch v.Kind {
	case solution.ViolationTimeWindow:
		return e.w.LatenessPenalty * v.Amount
	case solution.ViolationCapacity:
		return e.w.CapacityPenalty * v.Amount
	case solution.ViolationDuration:
		return e.w.DurationPenalty * v.Amount
	default:
		return 0
	}
}

// SolutionCost is the true cost of a whole solution.
func (e *Evaluator) SolutionCost(s *solution.Solution) float64 {
	c := 0.0
	for i := range s.Routes {
		c += e.RouteCost(&s.Routes[i])
	}
	c += e.w.VehicleCost * float64(s.VehiclesUsed())
	c += e.w.UnassignedPenalty * float64(len(s.Unassigned))
	return c
}

// GuidedRouteCost adds the diversification term for the route's arcs,
// including the implicit depot legs.
func (e *Evaluator) GuidedRouteCost(r *solution.Route) float64 {
	c := e.RouteCost(r)
	if len(e.penalties) == 0 {
		return c
	}
	eachArc(r, func(a arc) {
		if p := e.penalties[a]; p > 0 {
			c += e.lambda * float64(p) * e.in.Matrix.Arc(a.from, a.to).DistanceKm
		}
	})
	return c
}

// GuidedSolutionCost is SolutionCost plus the diversification term.
func (e *Evaluator) GuidedSolutionCost(s *solution.Solution) float64 {
	c := e.w.VehicleCost * float64(s.VehiclesUsed())
	c += e.w.UnassignedPenalty * float64(len(s.Unassigned))
	for i := range s.Routes {
		c += e.GuidedRouteCost(&s.Routes[i])
	}
	return c
}

// Penalize implements the guided-local-search escalation step: among the arcs
// the solution currently uses, the ones with maximal utility
// cost/(1+penalty) get their penalty counter incremented, making them more
// expensive in guided costs and pushing the next neighborhood scan to
// restructure around them. Returns the number of arcs penalized.
func (e *Evaluator) Penalize(s *solution.Solution) int {
	const eps = 1e-9
	maxUtil := 0.0
	var worst []arc
	for i := range s.Routes {
		eachArc(&s.Routes[i], func(a arc) {
			d := e.in.Matrix.Arc(a.from, a.to).DistanceKm
			util := d / float64(1+e.penalties[a])
			switch {
			case util > maxUtil+eps:
				maxUtil = util
				worst = worst[:0]
				worst = append(worst, a)
			case util > maxUtil-eps:
				worst = append(worst, a)
			}
		})
	}
	for _, a := range worst {
		e.penalties[a]++
	}
	return len(worst)
}

// ResetPenalties clears the diversification state.
func (e *Evaluator) ResetPenalties() {
	e.penalties = make(map[arc]int)
}

func eachArc(r *solution.Route, fn func(arc)) {
	if len(r.Stops) == 0 {
		return
	}
	prev := problem.DepotID
	for _, id := range r.Stops {
		fn(arc{prev, id})
		prev = id
	}
	fn(arc{prev, problem.DepotID})
}
