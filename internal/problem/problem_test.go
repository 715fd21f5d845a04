package problem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpgroute/internal/config"
	"lpgroute/internal/matrix"
)

func buildInstance(t *testing.T, stops []Stop, fleet []Vehicle) *Instance {
	t.Helper()
	cfg := config.Default()
	depot := Depot{Lat: cfg.Geo.CenterLat, Lng: cfg.Geo.CenterLng, OpenMin: 480, CloseMin: 1080}
	nodes := []matrix.Node{{ID: DepotID, Lat: depot.Lat, Lng: depot.Lng}}
	for _, s := range stops {
		nodes = append(nodes, matrix.Node{ID: s.ID, Lat: s.Lat, Lng: s.Lng})
	}
	m, err := matrix.Build(cfg, nodes)
	require.NoError(t, err)
	return New(depot, stops, fleet, m, cfg)
}

func someStop(id int) Stop {
	cfg := config.Default()
	return Stop{
		ID: id, Lat: cfg.Geo.CenterLat + 0.01*float64(id), Lng: cfg.Geo.CenterLng,
		Demand: 5, EarliestMin: 480, LatestMin: 1080, ServiceMin: 15,
	}
}

func TestValidate_OK(t *testing.T) {
	in := buildInstance(t, []Stop{someStop(1), someStop(2)}, []Vehicle{{ID: 1, Capacity: 80, MaxRouteMin: 480}})
	assert.NoError(t, in.Validate())
}

func TestValidate_Degenerate(t *testing.T) {
	// zero stops and zero vehicles are legal inputs
	in := buildInstance(t, nil, nil)
	assert.NoError(t, in.Validate())
}

func TestValidate_NegativeDemand(t *testing.T) {
	bad := someStop(1)
	bad.Demand = -1
	in := buildInstance(t, []Stop{bad}, []Vehicle{{ID: 1, Capacity: 80, MaxRouteMin: 480}})
	err := in.Validate()
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}

func TestValidate_ZeroCapacityVehicle(t *testing.T) {
	in := buildInstance(t, []Stop{someStop(1)}, []Vehicle{{ID: 1, Capacity: 0, MaxRouteMin: 480}})
	assert.True(t, IsInputError(in.Validate()))
}

func TestValidate_InvertedWindow(t *testing.T) {
	bad := someStop(1)
	bad.EarliestMin, bad.LatestMin = 600, 500
	in := buildInstance(t, []Stop{bad}, []Vehicle{{ID: 1, Capacity: 80, MaxRouteMin: 480}})
	assert.True(t, IsInputError(in.Validate()))
}

func TestValidate_MissingMatrixEntry(t *testing.T) {
	in := buildInstance(t, []Stop{someStop(1)}, []Vehicle{{ID: 1, Capacity: 80, MaxRouteMin: 480}})
	// add a stop the matrix was not built with
	in.Stops = append(in.Stops, someStop(7))
	in = New(in.Depot, in.Stops, in.Fleet, in.Matrix, in.Config)
	err := in.Validate()
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}

func TestValidate_DuplicateStopID(t *testing.T) {
	in := buildInstance(t, []Stop{someStop(1)}, []Vehicle{{ID: 1, Capacity: 80, MaxRouteMin: 480}})
	dup := New(in.Depot, []Stop{someStop(1), someStop(1)}, in.Fleet, in.Matrix, in.Config)
	assert.True(t, IsInputError(dup.Validate()))
}

func TestPriorityParsing(t *testing.T) {
	assert.Equal(t, High, ParsePriority("high"))
	assert.Equal(t, Emergency, ParsePriority("emergency"))
	assert.Equal(t, Normal, ParsePriority("anything"))
	assert.Equal(t, "emergency", Emergency.String())
}

func TestLookups(t *testing.T) {
	in := buildInstance(t, []Stop{someStop(1)}, []Vehicle{{ID: 3, Capacity: 80, MaxRouteMin: 480}})
	s, ok := in.Stop(1)
	require.True(t, ok)
	assert.Equal(t, 1, s.ID)
	v, ok := in.Vehicle(3)
	require.True(t, ok)
	assert.Equal(t, 3, v.ID)
	_, ok = in.Stop(9)
	assert.False(t, ok)
}
