package improve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpgroute/internal/config"
	"lpgroute/internal/construct"
	"lpgroute/internal/eval"
	"lpgroute/internal/matrix"
	"lpgroute/internal/problem"
	"lpgroute/internal/scenario"
	"lpgroute/internal/solution"
)

func seededInstance(t *testing.T, seed int64, stops, vehicles int) *problem.Instance {
	t.Helper()
	in, err := scenario.New(config.Default(), seed).Instance(stops, vehicles)
	require.NoError(t, err)
	return in
}

func checkPartition(t *testing.T, in *problem.Instance, s *solution.Solution) {
	t.Helper()
	seen := map[int]bool{}
	for _, id := range s.AssignedStops() {
		require.False(t, seen[id], "stop %d assigned twice", id)
		seen[id] = true
	}
	for _, id := range s.Unassigned {
		require.False(t, seen[id], "stop %d both assigned and unassigned", id)
		seen[id] = true
	}
	assert.Len(t, seen, len(in.Stops))
}

func TestImprove_NeverWorseThanSeed(t *testing.T) {
	in := seededInstance(t, 11, 20, 5)
	ev := eval.New(in)
	seed := construct.Greedy(in, ev)
	seedCost := ev.SolutionCost(seed)

	im := New(in, ev)
	im.TimeBudget = 2 * time.Second

	got, stats := im.Improve(context.Background(), seed)
	assert.LessOrEqual(t, ev.SolutionCost(got), seedCost)
	assert.InDelta(t, ev.SolutionCost(got), stats.BestCost, 1e-9)
	assert.Positive(t, stats.Iterations)
	checkPartition(t, in, got)
}

func TestImprove_KeepsSeedFeasibility(t *testing.T) {
	in := seededInstance(t, 3, 15, 4)
	ev := eval.New(in)
	seed := construct.Greedy(in, ev)
	require.True(t, seed.Feasible())

	im := New(in, ev)
	im.TimeBudget = time.Second

	got, stats := im.Improve(context.Background(), seed)
	assert.True(t, got.Feasible())
	assert.True(t, stats.FoundFeasible)
}

func TestImprove_DoesNotMutateSeed(t *testing.T) {
	in := seededInstance(t, 5, 12, 3)
	ev := eval.New(in)
	seed := construct.Greedy(in, ev)
	before := seed.Clone()

	im := New(in, ev)
	im.TimeBudget = 500 * time.Millisecond
	im.Improve(context.Background(), seed)

	assert.Equal(t, before, seed)
}

func TestImprove_CancelledContext(t *testing.T) {
	in := seededInstance(t, 9, 25, 5)
	ev := eval.New(in)
	seed := construct.Greedy(in, ev)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	im := New(in, ev)
	im.TimeBudget = time.Hour // cancellation must win

	got, stats := im.Improve(ctx, seed)
	assert.Zero(t, stats.Iterations)
	assert.Zero(t, stats.Moves)
	checkPartition(t, in, got)
	// best-so-far is the recomputed seed
	assert.InDelta(t, ev.SolutionCost(seed), ev.SolutionCost(got), 1e-9)
}

func TestImprove_IterationBudget(t *testing.T) {
	in := seededInstance(t, 13, 20, 5)
	ev := eval.New(in)
	seed := construct.Greedy(in, ev)

	im := New(in, ev)
	im.TimeBudget = time.Hour
	im.MaxIterations = 10

	_, stats := im.Improve(context.Background(), seed)
	assert.LessOrEqual(t, stats.Iterations, 10)
}

func TestImprove_DegenerateSolution(t *testing.T) {
	cfg := config.Default()
	depot := problem.Depot{Lat: cfg.Geo.CenterLat, Lng: cfg.Geo.CenterLng, OpenMin: 480, CloseMin: 1080}
	m, err := matrix.Build(cfg, []matrix.Node{{ID: problem.DepotID, Lat: depot.Lat, Lng: depot.Lng}})
	require.NoError(t, err)
	in := problem.New(depot, nil, []problem.Vehicle{
		{ID: 1, Capacity: 10, MaxRouteMin: 600},
		{ID: 2, Capacity: 10, MaxRouteMin: 600},
	}, m, cfg)
	ev := eval.New(in)
	seed := solution.Empty(in)

	im := New(in, ev)
	im.TimeBudget = 100 * time.Millisecond

	got, stats := im.Improve(context.Background(), seed)
	assert.Zero(t, got.VehiclesUsed())
	assert.True(t, stats.Converged)
}

func TestImprove_BeatsBaseline(t *testing.T) {
	in := seededInstance(t, 17, 30, 6)
	ev := eval.New(in)
	base := construct.Baseline(in)
	seed := construct.Greedy(in, ev)

	im := New(in, ev)
	im.TimeBudget = 3 * time.Second

	got, _ := im.Improve(context.Background(), seed)
	assert.LessOrEqual(t, got.TotalDistanceKm(), base.TotalDistanceKm())
}
