// Package problem defines the immutable input contract of the optimization
// core: stops, fleet, matrix, and configuration, validated once before any
// search starts.
package problem

import (
	"errors"
	"fmt"

	"lpgroute/internal/config"
	"lpgroute/internal/matrix"
)

// DepotID is the node id reserved for the depot.
const DepotID = 0

// Priority is a soft tie-break weight, never a hard constraint.
type Priority int

const (
	Normal Priority = iota
	High
	Emergency
)

func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Emergency:
		return "emergency"
	default:
		return "normal"
	}
}

// ParsePriority maps the wire spelling to a Priority. Unknown values are
// treated as normal.
func ParsePriority(s string) Priority {
	switch s {
	case "high":
		return High
	case "emergency":
		return Emergency
	default:
		return Normal
	}
}

// Stop is one delivery location. Immutable once generated.
type Stop struct {
	ID          int
	Lat         float64
	Lng         float64
	Demand      int     // LPG cylinders
	EarliestMin float64 // minutes since midnight
	LatestMin   float64
	ServiceMin  float64
	Priority    Priority
	Address     string
	AreaType    string // urban or rural, informational
}

// Vehicle is one truck in the fleet. Immutable for the life of a run.
type Vehicle struct {
	ID          int
	Capacity    int
	MaxRouteMin float64
}

// Depot is the shared start and end of every route.
type Depot struct {
	Lat     float64
	Lng     float64
	OpenMin float64
	CloseMin float64
}

// Instance is the fully-resolved problem handed to constructors and the
// improver. Build one with New so lookups by id work.
type Instance struct {
	Depot  Depot
	Stops  []Stop
	Fleet  []Vehicle
	Matrix *matrix.Matrix
	Config config.Config

	stopByID    map[int]*Stop
	vehicleByID map[int]*Vehicle
}

// InputError reports a malformed instance. It fails fast, before any search.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return "invalid problem instance: " + e.Reason }

func inputErrf(format string, args ...any) error {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}

// New assembles an Instance and builds its id indexes. Call Validate before
// solving.
func New(depot Depot, stops []Stop, fleet []Vehicle, m *matrix.Matrix, cfg config.Config) *Instance {
	in := &Instance{
		Depot:       depot,
		Stops:       stops,
		Fleet:       fleet,
		Matrix:      m,
		Config:      cfg,
		stopByID:    make(map[int]*Stop, len(stops)),
		vehicleByID: make(map[int]*Vehicle, len(fleet)),
	}
	for i := range stops {
		in.stopByID[stops[i].ID] = &in.Stops[i]
	}
	for i := range fleet {
		in.vehicleByID[fleet[i].ID] = &in.Fleet[i]
	}
	return in
}

// Stop returns the stop with the given id.
func (in *Instance) Stop(id int) (*Stop, bool) {
	s, ok := in.stopByID[id]
	return s, ok
}

// Vehicle returns the vehicle with the given id.
func (in *Instance) Vehicle(id int) (*Vehicle, bool) {
	v, ok := in.vehicleByID[id]
	return v, ok
}

// Validate rejects malformed instances: nil or incomplete matrix, negative
// demand, zero-capacity vehicles, inverted time windows, duplicate ids. A
// valid instance with zero stops or zero vehicles is degenerate but legal.
func (in *Instance) Validate() error {
	if in.Matrix == nil {
		return inputErrf("matrix is nil")
	}
	if !in.Matrix.Has(DepotID) {
		return inputErrf("matrix is missing the depot node")
	}
	if in.Depot.CloseMin < in.Depot.OpenMin {
		return inputErrf("depot window closes before it opens")
	}
	seen := make(map[int]bool, len(in.Stops))
	for _, s := range in.Stops {
		if s.ID == DepotID {
			return inputErrf("stop id %d collides with the depot", s.ID)
		}
		if seen[s.ID] {
			return inputErrf("duplicate stop id %d", s.ID)
		}
		seen[s.ID] = true
		if s.Demand < 0 {
			return inputErrf("stop %d has negative demand %d", s.ID, s.Demand)
		}
		if s.ServiceMin < 0 {
			return inputErrf("stop %d has negative service time", s.ID)
		}
		if s.LatestMin < s.EarliestMin {
			return inputErrf("stop %d window closes before it opens", s.ID)
		}
		if _, err := in.Matrix.At(DepotID, s.ID); err != nil {
			return inputErrf("matrix is missing stop %d: %v", s.ID, err)
		}
	}
	vseen := make(map[int]bool, len(in.Fleet))
	for _, v := range in.Fleet {
		if vseen[v.ID] {
			return inputErrf("duplicate vehicle id %d", v.ID)
		}
		vseen[v.ID] = true
		if v.Capacity <= 0 {
			return inputErrf("vehicle %d has non-positive capacity %d", v.ID, v.Capacity)
		}
		if v.MaxRouteMin <= 0 {
			return inputErrf("vehicle %d has non-positive max route duration", v.ID)
		}
	}
	return nil
}

// IsInputError reports whether err is an instance-validation failure.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
