// Package compare runs the baseline and seed+improve pipelines against the
// same problem instance and reports before/after metrics. Both pipelines see
// the identical instance — same matrix object, same stop slice — so the
// comparison is never confounded by regenerated inputs.
package compare

import (
	"context"
	"fmt"

	"lpgroute/internal/construct"
	"lpgroute/internal/eval"
	"lpgroute/internal/improve"
	"lpgroute/internal/problem"
	"lpgroute/internal/solution"
)

// MoneyCosts is the dollar model used for reporting only: fuel from distance,
// driver wages from time, fixed per-day vehicle cost.
type MoneyCosts struct {
	Fuel    float64 `json:"fuel"`
	Driver  float64 `json:"driver"`
	Vehicle float64 `json:"vehicle"`
	Total   float64 `json:"total"`
}

// Metrics is the before/after summary consumed by reporting collaborators.
type Metrics struct {
	DistanceBeforeKm float64 `json:"distanceBeforeKm"`
	DistanceAfterKm  float64 `json:"distanceAfterKm"`
	CostBefore       float64 `json:"costBefore"`
	CostAfter        float64 `json:"costAfter"`
	VehiclesBefore   int     `json:"vehiclesBefore"`
	VehiclesAfter    int     `json:"vehiclesAfter"`
	TimeBeforeMin    float64 `json:"timeBeforeMin"`
	TimeAfterMin     float64 `json:"timeAfterMin"`

	DistanceReductionKm  float64 `json:"distanceReductionKm"`
	DistanceReductionPct float64 `json:"distanceReductionPct"`
	CostSavings          float64 `json:"costSavings"`
	CostSavingsPct       float64 `json:"costSavingsPct"`
	VehicleReduction     int     `json:"vehicleReduction"`
	TimeReductionMin     float64 `json:"timeReductionMin"`

	MoneyBefore MoneyCosts `json:"moneyBefore"`
	MoneyAfter  MoneyCosts `json:"moneyAfter"`

	Search improve.Stats `json:"search"`
}

// Comparison holds both finalized solutions and the deltas between them. The
// solutions are read-only from here on.
type Comparison struct {
	Baseline  *solution.Solution `json:"baseline"`
	Optimized *solution.Solution `json:"optimized"`
	Metrics   Metrics            `json:"metrics"`
}

// Run validates the instance, builds the baseline and the greedy seed,
// improves the seed, and computes improvement metrics. A degenerate instance
// (no stops or no vehicles) yields empty solutions, not an error.
func Run(ctx context.Context, in *problem.Instance) (*Comparison, error) {
	return RunWithProgress(ctx, in, nil)
}

// RunWithProgress is Run with a callback invoked each time the search finds a
// better solution.
func RunWithProgress(ctx context.Context, in *problem.Instance, onBest func(cost float64, iteration int)) (*Comparison, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	ev := eval.New(in)
	baseline := construct.Baseline(in)

	seed := construct.Greedy(in, ev)
	im := improve.New(in, ev)
	im.OnBest = onBest
	optimized, stats := im.Improve(ctx, seed)

	c := &Comparison{Baseline: baseline, Optimized: optimized}
	c.Metrics = buildMetrics(in, ev, baseline, optimized, stats)
	return c, nil
}

func buildMetrics(in *problem.Instance, ev *eval.Evaluator, before, after *solution.Solution, stats improve.Stats) Metrics {
	m := Metrics{
		DistanceBeforeKm: before.TotalDistanceKm(),
		DistanceAfterKm:  after.TotalDistanceKm(),
		CostBefore:       ev.SolutionCost(before),
		CostAfter:        ev.SolutionCost(after),
		VehiclesBefore:   before.VehiclesUsed(),
		VehiclesAfter:    after.VehiclesUsed(),
		TimeBeforeMin:    before.TotalDurationMin(),
		TimeAfterMin:     after.TotalDurationMin(),
		MoneyBefore:      RouteMoney(in, before),
		MoneyAfter:       RouteMoney(in, after),
		Search:           stats,
	}
	m.DistanceReductionKm = m.DistanceBeforeKm - m.DistanceAfterKm
	if m.DistanceBeforeKm > 0 {
		m.DistanceReductionPct = m.DistanceReductionKm / m.DistanceBeforeKm * 100
	}
	m.CostSavings = m.MoneyBefore.Total - m.MoneyAfter.Total
	if m.MoneyBefore.Total > 0 {
		m.CostSavingsPct = m.CostSavings / m.MoneyBefore.Total * 100
	}
	m.VehicleReduction = m.VehiclesBefore - m.VehiclesAfter
	m.TimeReductionMin = m.TimeBeforeMin - m.TimeAfterMin
	return m
}

// RouteMoney prices a solution with the configured money model.
func RouteMoney(in *problem.Instance, s *solution.Solution) MoneyCosts {
	cfg := in.Config.Costs
	distKm := s.TotalDistanceKm()
	const milesPerKm = 0.621371
	gallons := 0.0
	if cfg.FuelEfficiencyMpg > 0 {
		gallons = distKm * milesPerKm / cfg.FuelEfficiencyMpg
	}
	mc := MoneyCosts{
		Fuel:    gallons * cfg.FuelCostPerGallon,
		Driver:  s.TotalDurationMin() / 60 * cfg.DriverHourlyCost,
		Vehicle: float64(s.VehiclesUsed()) * cfg.VehicleDailyCost,
	}
	mc.Total = mc.Fuel + mc.Driver + mc.Vehicle
	return mc
}
