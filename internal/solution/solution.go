// Package solution holds the mutable-during-search representation of a route
// set plus the schedule propagation that keeps per-route totals and the
// feasibility report current. Feasibility violations are data on the solution,
// never errors.
package solution

import (
	"sort"

	"lpgroute/internal/problem"
)

// ViolationKind names a constraint class.
type ViolationKind string

const (
	ViolationTimeWindow ViolationKind = "time_window"
	ViolationCapacity   ViolationKind = "capacity"
	ViolationDuration   ViolationKind = "duration"
)

// Violation is one recorded constraint breach. Amount is minutes late for
// time-window and duration violations and overflow units for capacity.
type Violation struct {
	Kind      ViolationKind `json:"kind"`
	VehicleID int           `json:"vehicleId"`
	StopID    int           `json:"stopId,omitempty"`
	Amount    float64       `json:"amount"`
}

// Route is the ordered visit sequence of one vehicle. The depot legs are
// implicit: every route starts and ends there. Derived fields are maintained
// by Recompute.
type Route struct {
	VehicleID int   `json:"vehicleId"`
	Stops     []int `json:"stops"` // stop ids in visit order

	Load       int         `json:"load"`
	DistanceKm float64     `json:"distanceKm"`
	DurationMin float64    `json:"durationMin"`
	Arrivals   []float64   `json:"arrivals"` // arrival minute per position
	Feasible   bool        `json:"feasible"`
	Violations []Violation `json:"violations,omitempty"`
}

// Solution is a set of routes plus the stops no vehicle could take. A
// non-empty unassigned set is a reportable outcome, not an error.
type Solution struct {
	Routes     []Route `json:"routes"`
	Unassigned []int   `json:"unassigned,omitempty"`
}

// Empty returns a solution with one empty route per fleet vehicle.
func Empty(in *problem.Instance) *Solution {
	s := &Solution{Routes: make([]Route, len(in.Fleet))}
	for i, v := range in.Fleet {
		s.Routes[i] = Route{VehicleID: v.ID, Feasible: true}
	}
	return s
}

// Clone deep-copies the solution so a search can mutate its working copy
// while the best-so-far stays intact.
func (s *Solution) Clone() *Solution {
	out := &Solution{
		Routes:     make([]Route, len(s.Routes)),
		Unassigned: append([]int(nil), s.Unassigned...),
	}
	for i, r := range s.Routes {
		out.Routes[i] = r
		out.Routes[i].Stops = append([]int(nil), r.Stops...)
		out.Routes[i].Arrivals = append([]float64(nil), r.Arrivals...)
		out.Routes[i].Violations = append([]Violation(nil), r.Violations...)
	}
	return out
}

// Recompute walks every route through the matrix.
func (s *Solution) Recompute(in *problem.Instance) {
	for i := range s.Routes {
		RecomputeRoute(in, &s.Routes[i])
	}
}

// RecomputeRoute rebuilds one route's schedule from scratch: departure from
// the depot at workday open, travel legs from the matrix, early arrivals
// clamped to each stop's earliest, service time after the clamp, and the
// return leg to the depot. Capacity, lateness, and max-duration breaches are
// recorded as violations.
func RecomputeRoute(in *problem.Instance, r *Route) {
	r.Load = 0
	r.DistanceKm = 0
	r.DurationMin = 0
	r.Arrivals = r.Arrivals[:0]
	r.Violations = r.Violations[:0]
	r.Feasible = true
	if len(r.Stops) == 0 {
		return
	}

	start := in.Depot.OpenMin
	t := start
	cur := problem.DepotID
	for _, id := range r.Stops {
		st, ok := in.Stop(id)
		if !ok {
			// unreachable after Validate; keep the route inert rather than lie
			continue
		}
		leg := in.Matrix.Arc(cur, id)
		r.DistanceKm += leg.DistanceKm
		t += leg.TravelMin
		if t < st.EarliestMin {
			t = st.EarliestMin // wait for the window to open
		}
		if t > st.LatestMin {
			r.Violations = append(r.Violations, Violation{
				Kind: ViolationTimeWindow, VehicleID: r.VehicleID, StopID: id, Amount: t - st.LatestMin,
			})
		}
		r.Arrivals = append(r.Arrivals, t)
		t += st.ServiceMin
		r.Load += st.Demand
		cur = id
	}
	back := in.Matrix.Arc(cur, problem.DepotID)
	r.DistanceKm += back.DistanceKm
	t += back.TravelMin
	r.DurationMin = t - start

	if v, ok := in.Vehicle(r.VehicleID); ok {
		if r.Load > v.Capacity {
			r.Violations = append(r.Violations, Violation{
				Kind: ViolationCapacity, VehicleID: r.VehicleID, Amount: float64(r.Load - v.Capacity),
			})
		}
		if r.DurationMin > v.MaxRouteMin {
			r.Violations = append(r.Violations, Violation{
				Kind: ViolationDuration, VehicleID: r.VehicleID, Amount: r.DurationMin - v.MaxRouteMin,
			})
		}
	}
	r.Feasible = len(r.Violations) == 0
}

// Feasible reports whether every route is violation-free. Unassigned stops do
// not make a solution infeasible; they are reported separately.
func (s *Solution) Feasible() bool {
	for i := range s.Routes {
		if !s.Routes[i].Feasible {
			return false
		}
	}
	return true
}

// FeasibilityReport collects the violations of all routes.
func (s *Solution) FeasibilityReport() []Violation {
	var out []Violation
	for i := range s.Routes {
		out = append(out, s.Routes[i].Violations...)
	}
	return out
}

// TotalDistanceKm sums route distances.
func (s *Solution) TotalDistanceKm() float64 {
	total := 0.0
	for i := range s.Routes {
		total += s.Routes[i].DistanceKm
	}
	return total
}

// TotalDurationMin sums route durations.
func (s *Solution) TotalDurationMin() float64 {
	total := 0.0
	for i := range s.Routes {
		total += s.Routes[i].DurationMin
	}
	return total
}

// VehiclesUsed counts routes that visit at least one stop.
func (s *Solution) VehiclesUsed() int {
	n := 0
	for i := range s.Routes {
		if len(s.Routes[i].Stops) > 0 {
			n++
		}
	}
	return n
}

// AssignedStops returns every stop id present on a route, sorted, with
// duplicates preserved so partition checks can detect them.
func (s *Solution) AssignedStops() []int {
	var ids []int
	for i := range s.Routes {
		ids = append(ids, s.Routes[i].Stops...)
	}
	sort.Ints(ids)
	return ids
}
