// Package scenario generates mock LPG delivery scenarios: a tight urban
// cluster plus a wide rural spread around a configured depot. Generation is
// fully seeded so the same seed always reproduces the same scenario.
package scenario

import (
	"fmt"
	"math"
	"math/rand"

	"lpgroute/internal/config"
	"lpgroute/internal/matrix"
	"lpgroute/internal/problem"
)

// Generator produces delivery stops and fleets for one configuration.
type Generator struct {
	cfg config.Config
	rng *rand.Rand
}

// New returns a seeded generator. The same seed yields identical scenarios.
func New(cfg config.Config, seed int64) *Generator {
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// Depot returns the depot at the configured center, open for the work day.
func (g *Generator) Depot() problem.Depot {
	return problem.Depot{
		Lat:      g.cfg.Geo.CenterLat,
		Lng:      g.cfg.Geo.CenterLng,
		OpenMin:  g.cfg.Delivery.WorkdayStartMin,
		CloseMin: g.cfg.Delivery.WorkdayEndMin,
	}
}

// Stops generates n delivery stops with ids 1..n. The urban share is placed
// by a normal scatter around the urban center, the rest uniformly across the
// rural bounds away from the center.
func (g *Generator) Stops(n int) []problem.Stop {
	if n <= 0 {
		n = g.cfg.Generation.DefaultDeliveries
	}
	numUrban := int(float64(n) * g.cfg.Generation.UrbanShare)
	stops := make([]problem.Stop, 0, n)
	for i := 0; i < n; i++ {
		var lat, lng float64
		area := "urban"
		if i < numUrban {
			lat, lng = g.urbanPoint()
		} else {
			lat, lng = g.ruralPoint()
			area = "rural"
		}
		demand := g.demand()
		earliest, latest := g.window()
		stops = append(stops, problem.Stop{
			ID:          i + 1, // 0 is the depot
			Lat:         lat,
			Lng:         lng,
			Demand:      demand,
			EarliestMin: earliest,
			LatestMin:   latest,
			ServiceMin:  g.cfg.Delivery.BaseServiceMin + float64(demand)*g.cfg.Delivery.ServicePerUnit,
			Priority:    g.priority(),
			Address:     g.address(area),
			AreaType:    area,
		})
	}
	return stops
}

// Fleet returns n identical vehicles with the configured capacity and shift
// length. n defaults to a size proportional to the stop count, capped by
// config.
func (g *Generator) Fleet(n, numStops int) []problem.Vehicle {
	if n <= 0 {
		n = numStops / 5
		if n < 3 {
			n = 3
		}
		if max := g.cfg.Generation.MaxVehicles; n > max {
			n = max
		}
	}
	fleet := make([]problem.Vehicle, n)
	for i := range fleet {
		fleet[i] = problem.Vehicle{
			ID:          i + 1,
			Capacity:    g.cfg.Delivery.VehicleCapacity,
			MaxRouteMin: g.cfg.Delivery.MaxRouteMinutes,
		}
	}
	return fleet
}

// Instance generates a complete, matrix-backed problem instance.
func (g *Generator) Instance(numStops, numVehicles int) (*problem.Instance, error) {
	depot := g.Depot()
	stops := g.Stops(numStops)
	fleet := g.Fleet(numVehicles, len(stops))

	nodes := make([]matrix.Node, 0, len(stops)+1)
	nodes = append(nodes, matrix.Node{ID: problem.DepotID, Lat: depot.Lat, Lng: depot.Lng})
	for _, s := range stops {
		nodes = append(nodes, matrix.Node{ID: s.ID, Lat: s.Lat, Lng: s.Lng})
	}
	m, err := matrix.Build(g.cfg, nodes)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	return problem.New(depot, stops, fleet, m, g.cfg), nil
}

func (g *Generator) urbanPoint() (float64, float64) {
	geo := g.cfg.Geo
	angle := g.rng.Float64() * 2 * math.Pi
	dist := math.Abs(g.rng.NormFloat64() * geo.UrbanRadiusKm / 3)
	if dist > geo.UrbanRadiusKm {
		dist = geo.UrbanRadiusKm
	}
	// ~111.32 km per degree of latitude
	lat := geo.CenterLat + dist*math.Cos(angle)/111.32
	lng := geo.CenterLng + dist*math.Sin(angle)/(111.32*math.Cos(geo.CenterLat*math.Pi/180))
	return lat, lng
}

func (g *Generator) ruralPoint() (float64, float64) {
	geo := g.cfg.Geo
	lat := geo.LatMin + g.rng.Float64()*(geo.LatMax-geo.LatMin)
	lng := geo.LngMin + g.rng.Float64()*(geo.LngMax-geo.LngMin)
	// one retry to keep rural points out of the urban core
	if centerDistKm(geo, lat, lng) < geo.UrbanRadiusKm*1.5 {
		lat = geo.LatMin + g.rng.Float64()*(geo.LatMax-geo.LatMin)
		lng = geo.LngMin + g.rng.Float64()*(geo.LngMax-geo.LngMin)
	}
	return lat, lng
}

// demand is bucketed: most deliveries are small, a few large.
func (g *Generator) demand() int {
	ranges := [4][2]int{{1, 5}, {6, 10}, {11, 15}, {16, 20}}
	weights := [4]float64{0.6, 0.25, 0.1, 0.05}
	r := g.rng.Float64()
	acc := 0.0
	pick := ranges[0]
	for i, w := range weights {
		acc += w
		if r <= acc {
			pick = ranges[i]
			break
		}
	}
	return pick[0] + g.rng.Intn(pick[1]-pick[0]+1)
}

func (g *Generator) window() (float64, float64) {
	gen := g.cfg.Generation
	span := gen.WindowEndHour - gen.WindowStartHour - int(gen.WindowHours)
	if span < 1 {
		span = 1
	}
	startHour := gen.WindowStartHour + g.rng.Intn(span)
	minute := 0
	if g.rng.Intn(2) == 1 {
		minute = 30
	}
	start := float64(startHour*60 + minute)
	return start, start + gen.WindowHours*60
}

func (g *Generator) priority() problem.Priority {
	r := g.rng.Float64()
	switch {
	case r < 0.05:
		return problem.Emergency
	case r < 0.20:
		return problem.High
	default:
		return problem.Normal
	}
}

var streetNames = []string{"Main", "Oak", "Cedar", "Elm", "Maple", "Hickory", "Pecan", "Mesquite"}
var streetTypes = []string{"St", "Ave", "Dr", "Rd", "Blvd", "Ln"}
var counties = []string{"Dallas", "Tarrant", "Collin", "Denton", "Johnson"}

func (g *Generator) address(area string) string {
	if area == "urban" {
		return fmt.Sprintf("%d %s %s",
			100+g.rng.Intn(9900),
			streetNames[g.rng.Intn(len(streetNames))],
			streetTypes[g.rng.Intn(len(streetTypes))])
	}
	n := 1 + g.rng.Intn(999)
	return fmt.Sprintf("%d County Road %d, %s County", n, n, counties[g.rng.Intn(len(counties))])
}

// centerDistKm is the haversine distance from the configured geo center.
func centerDistKm(geo config.Geographic, lat, lng float64) float64 {
	const R = 6371.0
	dLat := (lat - geo.CenterLat) * math.Pi / 180
	dLon := (lng - geo.CenterLng) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(geo.CenterLat*math.Pi/180)*math.Cos(lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
