package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare() Polygon {
	return Polygon{
		Type: "Polygon",
		Coordinates: [][][2]float64{{
			{0, 0},
			{1, 0},
			{1, 1},
			{0, 1},
			{0, 0},
		}},
	}
}

func TestIsPointInPolygon(t *testing.T) {
	square := unitSquare()

	assert.True(t, IsPointInPolygon(Point{Lat: 0.5, Lng: 0.5}, square))
	assert.False(t, IsPointInPolygon(Point{Lat: 2, Lng: 2}, square))
	assert.False(t, IsPointInPolygon(Point{Lat: -0.1, Lng: 0.5}, square))
}

func TestIsPointInPolygon_VertexIsStable(t *testing.T) {
	square := unitSquare()
	vertex := Point{Lat: 0, Lng: 0}

	first := IsPointInPolygon(vertex, square)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, IsPointInPolygon(vertex, square))
	}
}

func TestIsPointInPolygon_Degenerate(t *testing.T) {
	assert.False(t, IsPointInPolygon(Point{Lat: 0.5, Lng: 0.5}, Polygon{}))

	twoPoints := Polygon{
		Type:        "Polygon",
		Coordinates: [][][2]float64{{{0, 0}, {1, 1}}},
	}
	assert.False(t, IsPointInPolygon(Point{Lat: 0.5, Lng: 0.5}, twoPoints))
}

func TestHaversineDistance(t *testing.T) {
	a := Point{Lat: 14.5995, Lng: 120.9842}
	b := Point{Lat: 14.6760, Lng: 121.0437}

	assert.Equal(t, HaversineDistance(a, b), HaversineDistance(b, a))
	assert.Zero(t, HaversineDistance(a, a))

	// One degree of latitude at the equator is ~111.195 km.
	d := HaversineDistance(Point{Lat: 0, Lng: 0}, Point{Lat: 1, Lng: 0})
	assert.InEpsilon(t, 111195, d, 0.01)
}

func TestGenerateCorridorBoundary_Degenerate(t *testing.T) {
	p := Point{Lat: 14.6, Lng: 121.0}
	polygon := GenerateCorridorBoundary(p, p, 100)

	require.Len(t, polygon.Coordinates, 1)
	ring := polygon.Coordinates[0]
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])

	// Square of side 2×buffer in degree-equivalents, centered on p.
	wantLat := 100.0 / metersPerDegreeLat
	assert.InDelta(t, p.Lat-wantLat, ring[0][1], 1e-9)
	assert.InDelta(t, p.Lat+wantLat, ring[2][1], 1e-9)
	assert.InDelta(t, p.Lng, (ring[0][0]+ring[2][0])/2, 1e-9)

	assert.True(t, IsPointInPolygon(p, polygon))
}

func TestGenerateCorridorBoundary_ContainsRoute(t *testing.T) {
	from := Point{Lat: 14.5995, Lng: 120.9842}
	to := Point{Lat: 14.6091, Lng: 120.9794}
	polygon := GenerateCorridorBoundary(from, to, 100)

	ring := polygon.Coordinates[0]
	require.Len(t, ring, 5)
	assert.Equal(t, ring[0], ring[4])

	// Both endpoints and the midpoint sit inside the corridor.
	assert.True(t, IsPointInPolygon(from, polygon))
	assert.True(t, IsPointInPolygon(to, polygon))
	mid := Point{Lat: (from.Lat + to.Lat) / 2, Lng: (from.Lng + to.Lng) / 2}
	assert.True(t, IsPointInPolygon(mid, polygon))

	// A point a kilometer off the segment is outside.
	far := Point{Lat: from.Lat + 0.01, Lng: from.Lng + 0.01}
	assert.False(t, IsPointInPolygon(far, polygon))
}

func TestParseBoundary(t *testing.T) {
	polygon, ok := ParseBoundary([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`))
	require.True(t, ok)
	assert.True(t, IsPointInPolygon(Point{Lat: 0.5, Lng: 0.5}, polygon))

	_, ok = ParseBoundary(nil)
	assert.False(t, ok)

	_, ok = ParseBoundary([]byte(`not json`))
	assert.False(t, ok)

	_, ok = ParseBoundary([]byte(`{"type":"Point","coordinates":[0,0]}`))
	assert.False(t, ok)

	_, ok = ParseBoundary([]byte(`{"type":"Polygon","coordinates":[]}`))
	assert.False(t, ok)
}

func TestHaversineDistance_SmallMovement(t *testing.T) {
	// ~1.1m step in latitude.
	a := Point{Lat: 14.600000, Lng: 121.000000}
	b := Point{Lat: 14.600010, Lng: 121.000000}

	d := HaversineDistance(a, b)
	assert.Greater(t, d, 1.0)
	assert.Less(t, d, 1.3)
	assert.False(t, math.IsNaN(d))
}
