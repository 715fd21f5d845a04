// Package model holds the API wire types: the optimize request and the
// persisted run record. The solver packages have their own internal types;
// this package is the translation boundary for everything that crosses HTTP
// or the store.
package model

import (
	"time"

	"lpgroute/internal/compare"
	"lpgroute/internal/problem"
	"lpgroute/internal/solution"
)

// StopIn is one caller-supplied delivery. Optional fields fall back to
// configured defaults when zero.
type StopIn struct {
	ID          int     `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Demand      int     `json:"demand"`
	EarliestMin float64 `json:"earliestMin"`
	LatestMin   float64 `json:"latestMin"`
	ServiceMin  float64 `json:"serviceMin,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	Address     string  `json:"address,omitempty"`
}

// DepotIn overrides the configured depot location.
type DepotIn struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	OpenMin  float64 `json:"openMin,omitempty"`
	CloseMin float64 `json:"closeMin,omitempty"`
}

// OptimizeRequest drives one optimization run. Stops may be supplied
// explicitly; otherwise NumDeliveries stops are generated from Seed.
type OptimizeRequest struct {
	Seed          int64    `json:"seed,omitempty"`
	NumDeliveries int      `json:"numDeliveries,omitempty"`
	NumVehicles   int      `json:"numVehicles,omitempty"`
	TimeBudgetMs  int      `json:"timeBudgetMs,omitempty"`
	MaxIterations int      `json:"maxIterations,omitempty"`
	Depot         *DepotIn `json:"depot,omitempty"`
	Stops         []StopIn `json:"stops,omitempty"`
}

// ToStop converts a wire stop to the solver type, applying defaults.
func (s StopIn) ToStop(baseServiceMin, perUnitMin float64) problem.Stop {
	svc := s.ServiceMin
	if svc <= 0 {
		svc = baseServiceMin + float64(s.Demand)*perUnitMin
	}
	return problem.Stop{
		ID:          s.ID,
		Lat:         s.Lat,
		Lng:         s.Lng,
		Demand:      s.Demand,
		EarliestMin: s.EarliestMin,
		LatestMin:   s.LatestMin,
		ServiceMin:  svc,
		Priority:    problem.ParsePriority(s.Priority),
		Address:     s.Address,
	}
}

// RunRecord is a completed optimization run as persisted by the store.
type RunRecord struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Request   OptimizeRequest    `json:"request"`
	Metrics   compare.Metrics    `json:"metrics"`
	Baseline  *solution.Solution `json:"baseline,omitempty"`
	Optimized *solution.Solution `json:"optimized,omitempty"`
}

// RunSummary is the list-view projection of a run.
type RunSummary struct {
	ID                   string    `json:"id"`
	CreatedAt            time.Time `json:"createdAt"`
	Stops                int       `json:"stops"`
	DistanceBeforeKm     float64   `json:"distanceBeforeKm"`
	DistanceAfterKm      float64   `json:"distanceAfterKm"`
	DistanceReductionPct float64   `json:"distanceReductionPct"`
	CostSavings          float64   `json:"costSavings"`
}

// Summary projects the record into its list view.
func (r RunRecord) Summary() RunSummary {
	stops := len(r.Request.Stops)
	if stops == 0 {
		stops = r.Request.NumDeliveries
	}
	return RunSummary{
		ID:                   r.ID,
		CreatedAt:            r.CreatedAt,
		Stops:                stops,
		DistanceBeforeKm:     r.Metrics.DistanceBeforeKm,
		DistanceAfterKm:      r.Metrics.DistanceAfterKm,
		DistanceReductionPct: r.Metrics.DistanceReductionPct,
		CostSavings:          r.Metrics.CostSavings,
	}
}
