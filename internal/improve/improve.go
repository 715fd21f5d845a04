// Package improve is the local-search engine. It mutates one working solution
// under a wall-clock or iteration budget, scanning neighborhoods in a fixed
// priority order (intra-route relocation, inter-route relocation, pairwise
// swap) and applying the best improving move found. When no move improves,
// guided-local-search penalties on the most expensive in-use arcs reshape the
// cost surface and re-open the search instead of a random restart.
package improve

import (
	"context"
	"math"
	"time"

	"lpgroute/internal/eval"
	"lpgroute/internal/problem"
	"lpgroute/internal/solution"
)

const eps = 1e-9

// Stats summarizes one search run.
type Stats struct {
	Iterations    int           `json:"iterations"`
	Moves         int           `json:"moves"`
	Penalizations int           `json:"penalizations"`
	Converged     bool          `json:"converged"`
	FoundFeasible bool          `json:"foundFeasible"`
	BestCost      float64       `json:"bestCost"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Improver owns one working solution per Improve call. A single Improver must
// not run concurrent searches; parallelism belongs at the whole-run level.
type Improver struct {
	in *problem.Instance
	ev *eval.Evaluator

	TimeBudget    time.Duration
	MaxIterations int

	// OnBest, when set, is called each time the search finds a new best
	// solution by true cost. Called from the search goroutine; keep it cheap.
	OnBest func(cost float64, iteration int)
}

// New builds an improver with the instance's configured budget.
func New(in *problem.Instance, ev *eval.Evaluator) *Improver {
	return &Improver{
		in:            in,
		ev:            ev,
		TimeBudget:    time.Duration(in.Config.Solver.TimeLimitSec * float64(time.Second)),
		MaxIterations: in.Config.Solver.MaxIterations,
	}
}

type moveKind int

const (
	relocate moveKind = iota
	swap
)

type move struct {
	kind     moveKind
	fromR, fromPos int
	toR, toPos     int
}

// Improve runs the search from the given seed and returns the best feasible
// solution observed, or the best infeasible one with its violations intact if
// no feasible solution was ever seen. The seed is not mutated. Cancelling the
// context stops the search at the next iteration boundary and discards the
// in-flight candidate.
func (im *Improver) Improve(ctx context.Context, seed *solution.Solution) (*solution.Solution, Stats) {
	start := time.Now()
	var stats Stats

	work := seed.Clone()
	work.Recompute(im.in)

	bestAny := work.Clone()
	bestAnyCost := im.ev.SolutionCost(work)
	var bestFeasible *solution.Solution
	bestFeasibleCost := math.MaxFloat64
	if work.Feasible() {
		bestFeasible = work.Clone()
		bestFeasibleCost = bestAnyCost
	}

	im.ev.ResetPenalties()
	deadline := start.Add(im.TimeBudget)
	for {
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			break // Stopped: budget exhausted or cancelled
		}
		if im.MaxIterations > 0 && stats.Iterations >= im.MaxIterations {
			break
		}
		stats.Iterations++

		mv, ok := im.bestMove(work)
		if !ok {
			// Converged on the guided landscape; escalate penalties to
			// re-open the search.
			if im.ev.Penalize(work) == 0 {
				stats.Converged = true
				break
			}
			stats.Penalizations++
			continue
		}
		im.apply(work, mv)
		stats.Moves++

		c := im.ev.SolutionCost(work)
		if c < bestAnyCost-eps {
			bestAny = work.Clone()
			bestAnyCost = c
			if im.OnBest != nil {
				im.OnBest(c, stats.Iterations)
			}
		}
		if work.Feasible() && c < bestFeasibleCost-eps {
			bestFeasible = work.Clone()
			bestFeasibleCost = c
		}
	}

	stats.Elapsed = time.Since(start)
	if bestFeasible != nil {
		stats.FoundFeasible = true
		stats.BestCost = bestFeasibleCost
		return bestFeasible, stats
	}
	stats.BestCost = bestAnyCost
	return bestAny, stats
}

// bestMove scans the neighborhoods in priority order and returns the best
// improving move of the first neighborhood that has one.
func (im *Improver) bestMove(s *solution.Solution) (move, bool) {
	if mv, ok := im.bestIntraRelocate(s); ok {
		return mv, true
	}
	if mv, ok := im.bestInterRelocate(s); ok {
		return mv, true
	}
	if mv, ok := im.bestSwap(s); ok {
		return mv, true
	}
	return move{}, false
}

func (im *Improver) bestIntraRelocate(s *solution.Solution) (move, bool) {
	best := move{}
	bestDelta := -eps
	found := false
	for ri := range s.Routes {
		r := &s.Routes[ri]
		if len(r.Stops) < 2 {
			continue
		}
		base := im.ev.GuidedRouteCost(r)
		for i := 0; i < len(r.Stops); i++ {
			for j := 0; j < len(r.Stops); j++ {
				if j == i {
					continue
				}
				cand := relocatedWithin(r, i, j)
				solution.RecomputeRoute(im.in, &cand)
				delta := im.ev.GuidedRouteCost(&cand) - base
				if delta < bestDelta {
					bestDelta = delta
					best = move{kind: relocate, fromR: ri, fromPos: i, toR: ri, toPos: j}
					found = true
				}
			}
		}
	}
	return best, found
}

func (im *Improver) bestInterRelocate(s *solution.Solution) (move, bool) {
	best := move{}
	bestDelta := -eps
	found := false
	vehicleCost := im.in.Config.Costs.VehicleCost
	for ri := range s.Routes {
		src := &s.Routes[ri]
		if len(src.Stops) == 0 {
			continue
		}
		srcBase := im.ev.GuidedRouteCost(src)
		for i := 0; i < len(src.Stops); i++ {
			candSrc := removedAt(src, i)
			solution.RecomputeRoute(im.in, &candSrc)
			srcDelta := im.ev.GuidedRouteCost(&candSrc) - srcBase
			if len(candSrc.Stops) == 0 {
				srcDelta -= vehicleCost // closing a vehicle
			}
			for rj := range s.Routes {
				if rj == ri {
					continue
				}
				dst := &s.Routes[rj]
				dstBase := im.ev.GuidedRouteCost(dst)
				opening := 0.0
				if len(dst.Stops) == 0 {
					opening = vehicleCost
				}
				for pos := 0; pos <= len(dst.Stops); pos++ {
					candDst := insertedAt(dst, src.Stops[i], pos)
					solution.RecomputeRoute(im.in, &candDst)
					delta := srcDelta + im.ev.GuidedRouteCost(&candDst) - dstBase + opening
					if delta < bestDelta {
						bestDelta = delta
						best = move{kind: relocate, fromR: ri, fromPos: i, toR: rj, toPos: pos}
						found = true
					}
				}
			}
		}
	}
	return best, found
}

func (im *Improver) bestSwap(s *solution.Solution) (move, bool) {
	best := move{}
	bestDelta := -eps
	found := false
	for ri := range s.Routes {
		ra := &s.Routes[ri]
		for rj := ri; rj < len(s.Routes); rj++ {
			rb := &s.Routes[rj]
			for i := 0; i < len(ra.Stops); i++ {
				jStart := 0
				if ri == rj {
					jStart = i + 1
				}
				for j := jStart; j < len(rb.Stops); j++ {
					delta := im.swapDelta(ra, rb, ri == rj, i, j)
					if delta < bestDelta {
						bestDelta = delta
						best = move{kind: swap, fromR: ri, fromPos: i, toR: rj, toPos: j}
						found = true
					}
				}
			}
		}
	}
	return best, found
}

func (im *Improver) swapDelta(ra, rb *solution.Route, same bool, i, j int) float64 {
	if same {
		base := im.ev.GuidedRouteCost(ra)
		cand := copyRoute(ra)
		cand.Stops[i], cand.Stops[j] = cand.Stops[j], cand.Stops[i]
		solution.RecomputeRoute(im.in, &cand)
		return im.ev.GuidedRouteCost(&cand) - base
	}
	base := im.ev.GuidedRouteCost(ra) + im.ev.GuidedRouteCost(rb)
	ca, cb := copyRoute(ra), copyRoute(rb)
	ca.Stops[i], cb.Stops[j] = cb.Stops[j], ca.Stops[i]
	solution.RecomputeRoute(im.in, &ca)
	solution.RecomputeRoute(im.in, &cb)
	return im.ev.GuidedRouteCost(&ca) + im.ev.GuidedRouteCost(&cb) - base
}

// apply mutates the working solution in place and recomputes only the touched
// routes.
func (im *Improver) apply(s *solution.Solution, mv move) {
	switch mv.kind {
	case relocate:
		src := &s.Routes[mv.fromR]
		id := src.Stops[mv.fromPos]
		if mv.fromR == mv.toR {
			*src = relocatedWithin(src, mv.fromPos, mv.toPos)
			solution.RecomputeRoute(im.in, src)
			return
		}
		*src = removedAt(src, mv.fromPos)
		dst := &s.Routes[mv.toR]
		*dst = insertedAt(dst, id, mv.toPos)
		solution.RecomputeRoute(im.in, src)
		solution.RecomputeRoute(im.in, dst)
	case swap:
		ra := &s.Routes[mv.fromR]
		rb := &s.Routes[mv.toR]
		ra.Stops[mv.fromPos], rb.Stops[mv.toPos] = rb.Stops[mv.toPos], ra.Stops[mv.fromPos]
		solution.RecomputeRoute(im.in, ra)
		if mv.fromR != mv.toR {
			solution.RecomputeRoute(im.in, rb)
		}
	}
}

func copyRoute(r *solution.Route) solution.Route {
	return solution.Route{VehicleID: r.VehicleID, Stops: append([]int(nil), r.Stops...)}
}

func removedAt(r *solution.Route, i int) solution.Route {
	out := copyRoute(r)
	out.Stops = append(out.Stops[:i], out.Stops[i+1:]...)
	return out
}

func insertedAt(r *solution.Route, id, pos int) solution.Route {
	out := copyRoute(r)
	out.Stops = append(out.Stops, 0)
	copy(out.Stops[pos+1:], out.Stops[pos:])
	out.Stops[pos] = id
	return out
}

func relocatedWithin(r *solution.Route, i, j int) solution.Route {
	out := copyRoute(r)
	id := out.Stops[i]
	out.Stops = append(out.Stops[:i], out.Stops[i+1:]...)
	if j > len(out.Stops) {
		j = len(out.Stops)
	}
	out.Stops = append(out.Stops[:j], append([]int{id}, out.Stops[j:]...)...)
	return out
}
