// Package matrix precomputes pairwise road distances and drive times between
// the depot and all delivery stops. Great-circle distances are scaled by a
// detour factor that depends on whether the leg is urban, rural, or mixed, and
// drive time follows from the area speed. The build is deterministic: the same
// coordinates and config always produce the same matrix.
package matrix

import (
	"errors"
	"fmt"
	"math"

	"lpgroute/internal/config"
)

// ErrUnknownNode is returned when a lookup names a node the matrix was not
// built with. The matrix never fabricates a distance.
var ErrUnknownNode = errors.New("matrix: unknown node")

// Leg is one directed matrix entry.
type Leg struct {
	DistanceKm float64
	TravelMin  float64
}

// Node is a coordinate participating in the matrix build.
type Node struct {
	ID  int
	Lat float64
	Lng float64
}

// Matrix holds the precomputed entries. Lookups are constant time.
type Matrix struct {
	index  map[int]int
	ids    []int
	dist   [][]float64
	travel [][]float64
}

// Build computes the full pairwise matrix for the given nodes.
func Build(cfg config.Config, nodes []Node) (*Matrix, error) {
	n := len(nodes)
	m := &Matrix{
		index:  make(map[int]int, n),
		ids:    make([]int, n),
		dist:   make([][]float64, n),
		travel: make([][]float64, n),
	}
	for i, nd := range nodes {
		if _, dup := m.index[nd.ID]; dup {
			return nil, fmt.Errorf("matrix: duplicate node id %d", nd.ID)
		}
		m.index[nd.ID] = i
		m.ids[i] = nd.ID
		m.dist[i] = make([]float64, n)
		m.travel[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			a, b := nodes[i], nodes[j]
			straight := haversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
			class := legClass(cfg.Geo, a, b)
			road := straight * detourFactor(cfg.Travel, class)
			speed := legSpeed(cfg.Travel, class)
			m.dist[i][j] = road
			m.travel[i][j] = road / speed * 60
		}
	}
	return m, nil
}

// Len returns the number of nodes in the matrix.
func (m *Matrix) Len() int { return len(m.ids) }

// Has reports whether the node participated in the build.
func (m *Matrix) Has(id int) bool {
	_, ok := m.index[id]
	return ok
}

// At returns the directed entry from one node to another. Looking up a node
// the matrix was not built with yields ErrUnknownNode.
func (m *Matrix) At(from, to int) (Leg, error) {
	i, ok := m.index[from]
	if !ok {
		return Leg{}, fmt.Errorf("%w: %d", ErrUnknownNode, from)
	}
	j, ok := m.index[to]
	if !ok {
		return Leg{}, fmt.Errorf("%w: %d", ErrUnknownNode, to)
	}
	return Leg{DistanceKm: m.dist[i][j], TravelMin: m.travel[i][j]}, nil
}

// Arc is the hot-path lookup used after instance validation has established
// that both nodes exist. It panics on an unknown node, which indicates a bug
// in the caller, not bad input.
func (m *Matrix) Arc(from, to int) Leg {
	i, ok := m.index[from]
	if !ok {
		panic(fmt.Sprintf("matrix: unknown node %d", from))
	}
	j, ok := m.index[to]
	if !ok {
		panic(fmt.Sprintf("matrix: unknown node %d", to))
	}
	return Leg{DistanceKm: m.dist[i][j], TravelMin: m.travel[i][j]}
}

type areaClass int

const (
	classUrban areaClass = iota
	classRural
	classMixed
)

// legClass classifies a leg by the distance of both endpoints from the urban
// center: inside the urban radius on both ends is urban, well outside on both
// ends is rural, anything else mixed.
func legClass(geo config.Geographic, a, b Node) areaClass {
	da := haversineKm(geo.CenterLat, geo.CenterLng, a.Lat, a.Lng)
	db := haversineKm(geo.CenterLat, geo.CenterLng, b.Lat, b.Lng)
	switch {
	case da <= geo.UrbanRadiusKm && db <= geo.UrbanRadiusKm:
		return classUrban
	case da > geo.UrbanRadiusKm*1.5 && db > geo.UrbanRadiusKm*1.5:
		return classRural
	default:
		return classMixed
	}
}

func detourFactor(t config.Travel, c areaClass) float64 {
	switch c {
	case classUrban:
		return t.UrbanDetourFactor
	case classRural:
		return t.RuralDetourFactor
	default:
		return t.MixedDetourFactor
	}
}

func legSpeed(t config.Travel, c areaClass) float64 {
	switch c {
	case classUrban:
		return t.UrbanSpeedKmh
	case classRural:
		return t.RuralSpeedKmh
	default:
		return t.UrbanSpeedKmh*t.MixedUrbanWeight + t.RuralSpeedKmh*(1-t.MixedUrbanWeight)
	}
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
