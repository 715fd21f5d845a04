package matrix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpgroute/internal/config"
)

func testNodes() []Node {
	cfg := config.Default()
	return []Node{
		{ID: 0, Lat: cfg.Geo.CenterLat, Lng: cfg.Geo.CenterLng},           // depot, urban core
		{ID: 1, Lat: cfg.Geo.CenterLat + 0.02, Lng: cfg.Geo.CenterLng},    // urban
		{ID: 2, Lat: cfg.Geo.LatMax - 0.01, Lng: cfg.Geo.LngMax - 0.01},   // rural edge
		{ID: 3, Lat: cfg.Geo.LatMin + 0.01, Lng: cfg.Geo.LngMin + 0.01},   // rural edge
	}
}

func TestBuild_DiagonalZeroAndFinite(t *testing.T) {
	m, err := Build(config.Default(), testNodes())
	require.NoError(t, err)

	for _, from := range []int{0, 1, 2, 3} {
		for _, to := range []int{0, 1, 2, 3} {
			leg, err := m.At(from, to)
			require.NoError(t, err)
			if from == to {
				assert.Zero(t, leg.DistanceKm)
				assert.Zero(t, leg.TravelMin)
			} else {
				assert.Greater(t, leg.DistanceKm, 0.0)
				assert.Greater(t, leg.TravelMin, 0.0)
			}
		}
	}
}

func TestBuild_DefaultGeneratorIsSymmetric(t *testing.T) {
	m, err := Build(config.Default(), testNodes())
	require.NoError(t, err)

	for _, from := range []int{0, 1, 2, 3} {
		for _, to := range []int{0, 1, 2, 3} {
			ab, err := m.At(from, to)
			require.NoError(t, err)
			ba, err := m.At(to, from)
			require.NoError(t, err)
			assert.InDelta(t, ab.DistanceKm, ba.DistanceKm, 1e-9)
			assert.InDelta(t, ab.TravelMin, ba.TravelMin, 1e-9)
		}
	}
}

func TestAt_UnknownNode(t *testing.T) {
	m, err := Build(config.Default(), testNodes())
	require.NoError(t, err)

	_, err = m.At(0, 99)
	assert.True(t, errors.Is(err, ErrUnknownNode))
	_, err = m.At(99, 0)
	assert.True(t, errors.Is(err, ErrUnknownNode))
	assert.False(t, m.Has(99))
	assert.True(t, m.Has(0))
}

func TestBuild_UrbanLegsSlowerPerKm(t *testing.T) {
	cfg := config.Default()
	m, err := Build(cfg, testNodes())
	require.NoError(t, err)

	urban, err := m.At(0, 1) // both inside the urban radius
	require.NoError(t, err)
	rural, err := m.At(2, 3) // both far outside
	require.NoError(t, err)

	urbanSpeed := urban.DistanceKm / urban.TravelMin
	ruralSpeed := rural.DistanceKm / rural.TravelMin
	assert.Less(t, urbanSpeed, ruralSpeed)
}

func TestBuild_DuplicateNodeID(t *testing.T) {
	nodes := testNodes()
	nodes[1].ID = 0
	_, err := Build(config.Default(), nodes)
	assert.Error(t, err)
}
