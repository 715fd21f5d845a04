// Package config holds the explicit configuration consumed by the optimization
// core and the scenario generator. Nothing in the solver reads ambient globals;
// a Config travels inside the problem instance.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// Geographic describes the delivery area: a dense urban cluster inside a wider
// rural bounding box. Coordinates default to the Dallas, TX test area.
type Geographic struct {
	CenterLat float64 `yaml:"centerLat"`
	CenterLng float64 `yaml:"centerLng"`

	LatMin float64 `yaml:"latMin"`
	LatMax float64 `yaml:"latMax"`
	LngMin float64 `yaml:"lngMin"`
	LngMax float64 `yaml:"lngMax"`

	UrbanRadiusKm float64 `yaml:"urbanRadiusKm"`
}

// Travel holds the speed and detour constants used to turn great-circle
// distances into road distances and drive times. Detour factors are fixed per
// area class so that matrix construction is deterministic.
type Travel struct {
	UrbanSpeedKmh float64 `yaml:"urbanSpeedKmh"`
	RuralSpeedKmh float64 `yaml:"ruralSpeedKmh"`

	UrbanDetourFactor float64 `yaml:"urbanDetourFactor"`
	RuralDetourFactor float64 `yaml:"ruralDetourFactor"`
	MixedDetourFactor float64 `yaml:"mixedDetourFactor"`

	// Weight of the urban speed when a leg crosses both area classes.
	MixedUrbanWeight float64 `yaml:"mixedUrbanWeight"`
}

// Delivery holds fleet and service-time defaults.
type Delivery struct {
	VehicleCapacity  int     `yaml:"vehicleCapacity"` // LPG cylinders per truck
	MaxRouteMinutes  float64 `yaml:"maxRouteMinutes"`
	WorkdayStartMin  float64 `yaml:"workdayStartMin"` // minutes since midnight
	WorkdayEndMin    float64 `yaml:"workdayEndMin"`
	BaseServiceMin   float64 `yaml:"baseServiceMin"`
	ServicePerUnit   float64 `yaml:"servicePerUnit"` // minutes per cylinder
}

// Costs holds the evaluator weights. Penalty weights must dominate plausible
// distance savings so the improver prefers feasible solutions.
type Costs struct {
	DistanceWeight    float64 `yaml:"distanceWeight"`    // per km
	VehicleCost       float64 `yaml:"vehicleCost"`       // per used vehicle
	LatenessPenalty   float64 `yaml:"latenessPenalty"`   // per minute late
	CapacityPenalty   float64 `yaml:"capacityPenalty"`   // per overflow unit
	DurationPenalty   float64 `yaml:"durationPenalty"`   // per overtime minute
	UnassignedPenalty float64 `yaml:"unassignedPenalty"` // per unserved stop

	// Money model used for before/after reporting only.
	FuelCostPerGallon  float64 `yaml:"fuelCostPerGallon"`
	FuelEfficiencyMpg  float64 `yaml:"fuelEfficiencyMpg"`
	DriverHourlyCost   float64 `yaml:"driverHourlyCost"`
	VehicleDailyCost   float64 `yaml:"vehicleDailyCost"`
}

// Solver bounds the local-search run.
type Solver struct {
	TimeLimitSec  float64 `yaml:"timeLimitSec"`
	MaxIterations int     `yaml:"maxIterations"` // 0 = unbounded, stop on time only

	// Guided-local-search scaling of accumulated arc penalties.
	PenaltyLambda float64 `yaml:"penaltyLambda"`
}

// Generation holds scenario-generator defaults.
type Generation struct {
	DefaultDeliveries int     `yaml:"defaultDeliveries"`
	MinDemand         int     `yaml:"minDemand"`
	MaxDemand         int     `yaml:"maxDemand"`
	WindowHours       float64 `yaml:"windowHours"`
	WindowStartHour   int     `yaml:"windowStartHour"`
	WindowEndHour     int     `yaml:"windowEndHour"`
	UrbanShare        float64 `yaml:"urbanShare"`
	MaxVehicles       int     `yaml:"maxVehicles"`
}

type Config struct {
	Geo        Geographic `yaml:"geo"`
	Travel     Travel     `yaml:"travel"`
	Delivery   Delivery   `yaml:"delivery"`
	Costs      Costs      `yaml:"costs"`
	Solver     Solver     `yaml:"solver"`
	Generation Generation `yaml:"generation"`
}

// Default returns the stock configuration for the Dallas mixed urban/rural
// test area.
func Default() Config {
	return Config{
		Geo: Geographic{
			CenterLat:     32.7767,
			CenterLng:     -96.7970,
			LatMin:        32.5,
			LatMax:        33.0,
			LngMin:        -97.1,
			LngMax:        -96.5,
			UrbanRadiusKm: 10.0,
		},
		Travel: Travel{
			UrbanSpeedKmh:     30.0,
			RuralSpeedKmh:     60.0,
			UrbanDetourFactor: 1.45,
			RuralDetourFactor: 1.2,
			MixedDetourFactor: 1.3,
			MixedUrbanWeight:  0.6,
		},
		Delivery: Delivery{
			VehicleCapacity: 80,
			MaxRouteMinutes: 8 * 60,
			WorkdayStartMin: 8 * 60,
			WorkdayEndMin:   18 * 60,
			BaseServiceMin:  15,
			ServicePerUnit:  0.75,
		},
		Costs: Costs{
			DistanceWeight:    1.0,
			VehicleCost:       25.0,
			LatenessPenalty:   50.0,
			CapacityPenalty:   100.0,
			DurationPenalty:   50.0,
			UnassignedPenalty: 1000.0,
			FuelCostPerGallon: 3.50,
			FuelEfficiencyMpg: 8.0,
			DriverHourlyCost:  25.0,
			VehicleDailyCost:  150.0,
		},
		Solver: Solver{
			TimeLimitSec:  30,
			MaxIterations: 0,
			PenaltyLambda: 0.2,
		},
		Generation: Generation{
			DefaultDeliveries: 30,
			MinDemand:         1,
			MaxDemand:         20,
			WindowHours:       2,
			WindowStartHour:   8,
			WindowEndHour:     16,
			UrbanShare:        0.6,
			MaxVehicles:       10,
		},
	}
}

// Load reads a YAML config file over the defaults. Missing keys keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv returns Default overridden by a CONFIG_FILE if set.
func FromEnv() (Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return Load(path)
	}
	return Default(), nil
}
