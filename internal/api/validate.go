package api

import (
	"fmt"

	"lpgroute/internal/model"
)

func validateOptimizeRequest(req *model.OptimizeRequest) error {
	if req.NumDeliveries < 0 {
		return fmt.Errorf("numDeliveries must be >= 0")
	}
	if req.NumVehicles < 0 {
		return fmt.Errorf("numVehicles must be >= 0")
	}
	if req.TimeBudgetMs < 0 {
		return fmt.Errorf("timeBudgetMs must be >= 0")
	}
	if req.MaxIterations < 0 {
		return fmt.Errorf("maxIterations must be >= 0")
	}
	if len(req.Stops) > 0 && req.NumDeliveries > 0 {
		return fmt.Errorf("stops and numDeliveries are mutually exclusive")
	}
	seen := map[int]struct{}{}
	for i, s := range req.Stops {
		if s.ID <= 0 {
			return fmt.Errorf("stops[%d]: id must be a positive integer", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("stops[%d]: duplicate id %d", i, s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.Demand <= 0 {
			return fmt.Errorf("stops[%d]: demand must be > 0", i)
		}
		if s.LatestMin <= s.EarliestMin {
			return fmt.Errorf("stops[%d]: latestMin must be after earliestMin", i)
		}
	}
	if req.Depot != nil && req.Depot.CloseMin != 0 && req.Depot.CloseMin <= req.Depot.OpenMin {
		return fmt.Errorf("depot: closeMin must be after openMin")
	}
	return nil
}
