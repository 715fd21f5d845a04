// Package construct builds initial solutions: a naive baseline used as the
// "before" reference and a greedy cheapest-insertion seed for the improver.
// Both are deterministic.
package construct

import (
	"math"

	"lpgroute/internal/eval"
	"lpgroute/internal/problem"
	"lpgroute/internal/solution"
)

// Baseline assigns stops in input order, one vehicle after another in
// rotation, skipping vehicles whose capacity the stop would exceed. Time
// windows are ignored on purpose; the violations show up in the feasibility
// report and make the baseline an honest unoptimized reference. Stops too
// large for any vehicle go to the unassigned set.
func Baseline(in *problem.Instance) *solution.Solution {
	sol := solution.Empty(in)
	if len(sol.Routes) == 0 {
		for _, st := range in.Stops {
			sol.Unassigned = append(sol.Unassigned, st.ID)
		}
		return sol
	}
	loads := make([]int, len(sol.Routes))
	vi := 0
	for _, st := range in.Stops {
		target := -1
		for k := 0; k < len(sol.Routes); k++ {
			j := (vi + k) % len(sol.Routes)
			if v, _ := in.Vehicle(sol.Routes[j].VehicleID); v != nil && loads[j]+st.Demand <= v.Capacity {
				target = j
				break
			}
		}
		if target == -1 {
			sol.Unassigned = append(sol.Unassigned, st.ID)
			continue
		}
		sol.Routes[target].Stops = append(sol.Routes[target].Stops, st.ID)
		loads[target] += st.Demand
		vi = (target + 1) % len(sol.Routes)
	}
	sol.Recompute(in)
	return sol
}

// Greedy builds the seed solution by repeated cheapest feasible insertion:
// each step inserts the stop whose best (route, position) has the minimum
// feasible cost increase across all routes, opening an idle vehicle when
// nothing else accepts the stop. Ties break on higher priority tier, then
// lower stop id. Stops with no feasible position at all, even on an empty
// route, end up unassigned.
func Greedy(in *problem.Instance, ev *eval.Evaluator) *solution.Solution {
	sol := solution.Empty(in)
	remaining := make([]problem.Stop, len(in.Stops))
	copy(remaining, in.Stops)

	for len(remaining) > 0 {
		const eps = 1e-9
		bestDelta := math.MaxFloat64
		bestStop := -1
		bestRoute := -1
		bestPos := -1
		for si, st := range remaining {
			for ri := range sol.Routes {
				r := &sol.Routes[ri]
				base := ev.RouteCost(r)
				opening := 0.0
				if len(r.Stops) == 0 {
					opening = in.Config.Costs.VehicleCost
				}
				for pos := 0; pos <= len(r.Stops); pos++ {
					cand := insertedCopy(r, st.ID, pos)
					solution.RecomputeRoute(in, &cand)
					if !cand.Feasible {
						continue
					}
					delta := ev.RouteCost(&cand) - base + opening
					if delta < bestDelta-eps {
						bestDelta, bestStop, bestRoute, bestPos = delta, si, ri, pos
					} else if delta < bestDelta+eps && bestStop >= 0 && preferStop(st, remaining[bestStop]) {
						bestDelta, bestStop, bestRoute, bestPos = delta, si, ri, pos
					}
				}
			}
		}
		if bestStop == -1 {
			// no remaining stop fits anywhere; more insertions never help
			for _, st := range remaining {
				sol.Unassigned = append(sol.Unassigned, st.ID)
			}
			break
		}
		r := &sol.Routes[bestRoute]
		r.Stops = insertID(r.Stops, remaining[bestStop].ID, bestPos)
		solution.RecomputeRoute(in, r)
		remaining = append(remaining[:bestStop], remaining[bestStop+1:]...)
	}
	sol.Recompute(in)
	return sol
}

// preferStop resolves exact cost ties: higher priority tier first, then lower
// stop id for determinism.
func preferStop(a, b problem.Stop) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ID < b.ID
}

func insertedCopy(r *solution.Route, id, pos int) solution.Route {
	cand := solution.Route{VehicleID: r.VehicleID}
	cand.Stops = insertID(append([]int(nil), r.Stops...), id, pos)
	return cand
}

func insertID(stops []int, id, pos int) []int {
	stops = append(stops, 0)
	copy(stops[pos+1:], stops[pos:])
	stops[pos] = id
	return stops
}
