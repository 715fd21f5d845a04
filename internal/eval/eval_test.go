package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpgroute/internal/config"
	"lpgroute/internal/matrix"
	"lpgroute/internal/problem"
	"lpgroute/internal/solution"
)

func testInstance(t *testing.T) *problem.Instance {
	t.Helper()
	cfg := config.Default()
	depot := problem.Depot{Lat: cfg.Geo.CenterLat, Lng: cfg.Geo.CenterLng, OpenMin: 480, CloseMin: 1080}
	stops := []problem.Stop{
		{ID: 1, Lat: depot.Lat + 0.02, Lng: depot.Lng, Demand: 5, EarliestMin: 480, LatestMin: 1080, ServiceMin: 15},
		{ID: 2, Lat: depot.Lat, Lng: depot.Lng + 0.03, Demand: 5, EarliestMin: 480, LatestMin: 1080, ServiceMin: 15},
	}
	nodes := []matrix.Node{{ID: problem.DepotID, Lat: depot.Lat, Lng: depot.Lng}}
	for _, s := range stops {
		nodes = append(nodes, matrix.Node{ID: s.ID, Lat: s.Lat, Lng: s.Lng})
	}
	m, err := matrix.Build(cfg, nodes)
	require.NoError(t, err)
	fleet := []problem.Vehicle{{ID: 1, Capacity: 80, MaxRouteMin: 600}, {ID: 2, Capacity: 80, MaxRouteMin: 600}}
	in := problem.New(depot, stops, fleet, m, cfg)
	require.NoError(t, in.Validate())
	return in
}

func TestSolutionCost_DistanceAndVehicles(t *testing.T) {
	in := testInstance(t)
	ev := New(in)

	s := solution.Empty(in)
	s.Routes[0].Stops = []int{1, 2}
	s.Recompute(in)

	want := in.Config.Costs.DistanceWeight*s.TotalDistanceKm() + in.Config.Costs.VehicleCost
	assert.InDelta(t, want, ev.SolutionCost(s), 1e-9)
}

func TestSolutionCost_UnassignedPenaltyDominates(t *testing.T) {
	in := testInstance(t)
	ev := New(in)

	served := solution.Empty(in)
	served.Routes[0].Stops = []int{1, 2}
	served.Recompute(in)

	dropped := solution.Empty(in)
	dropped.Routes[0].Stops = []int{1}
	dropped.Unassigned = []int{2}
	dropped.Recompute(in)

	assert.Greater(t, ev.SolutionCost(dropped), ev.SolutionCost(served))
}

func TestRouteCost_ViolationPenalty(t *testing.T) {
	in := testInstance(t)
	ev := New(in)

	r := solution.Route{VehicleID: 1, Stops: []int{1}}
	solution.RecomputeRoute(in, &r)
	clean := ev.RouteCost(&r)

	r.Violations = append(r.Violations, solution.Violation{Kind: solution.ViolationTimeWindow, VehicleID: 1, StopID: 1, Amount: 10})
	assert.InDelta(t, clean+10*in.Config.Costs.LatenessPenalty, ev.RouteCost(&r), 1e-9)
}

func TestGuidedCost_PenalizeRaisesInUseArcs(t *testing.T) {
	in := testInstance(t)
	ev := New(in)

	s := solution.Empty(in)
	s.Routes[0].Stops = []int{1, 2}
	s.Recompute(in)

	base := ev.GuidedSolutionCost(s)
	assert.InDelta(t, ev.SolutionCost(s), base, 1e-9) // no penalties yet

	n := ev.Penalize(s)
	require.Greater(t, n, 0)
	assert.Greater(t, ev.GuidedSolutionCost(s), base)
	// true cost is unaffected by diversification state
	assert.InDelta(t, ev.SolutionCost(s), base, 1e-9)

	ev.ResetPenalties()
	assert.InDelta(t, base, ev.GuidedSolutionCost(s), 1e-9)
}

func TestPenalize_TargetsMostExpensiveArc(t *testing.T) {
	in := testInstance(t)
	ev := New(in)

	s := solution.Empty(in)
	s.Routes[0].Stops = []int{1, 2}
	s.Recompute(in)

	first := ev.Penalize(s)
	require.Greater(t, first, 0)
	guided1 := ev.GuidedSolutionCost(s)
	second := ev.Penalize(s)
	require.Greater(t, second, 0)
	assert.Greater(t, ev.GuidedSolutionCost(s), guided1)
}

func TestPenalize_EmptySolution(t *testing.T) {
	in := testInstance(t)
	ev := New(in)
	s := solution.Empty(in)
	assert.Zero(t, ev.Penalize(s))
}
