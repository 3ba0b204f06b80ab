// Package geo implements the point-in-polygon geofence engine.
// Pure math over GeoJSON polygons, no PostGIS required.
package geo

import (
	"encoding/json"
	"math"
)

const earthRadiusMeters = 6371000

// Degrees-per-meter approximations used for corridor buffers.
const metersPerDegreeLat = 111320

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Polygon is a GeoJSON polygon. Coordinates are [ring][vertex][lng, lat];
// only the outer ring is evaluated.
type Polygon struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// IsPointInPolygon reports whether p falls inside the polygon's outer ring,
// using the ray-casting algorithm. Polygons with fewer than 3 ring points
// are treated as empty (always outside).
func IsPointInPolygon(p Point, polygon Polygon) bool {
	if len(polygon.Coordinates) == 0 {
		return false
	}

	ring := polygon.Coordinates[0]

	if len(ring) < 3 {
		return false
	}

	inside := false

	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][1], ring[i][0] // lat, lng
		xj, yj := ring[j][1], ring[j][0]

		intersect := (yi > p.Lng) != (yj > p.Lng) &&
			p.Lat < (xj-xi)*(p.Lng-yi)/(yj-yi)+xi

		if intersect {
			inside = !inside
		}
	}

	return inside
}

// HaversineDistance returns the great-circle distance between two points in
// meters.
func HaversineDistance(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*sinLng*sinLng

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// GenerateCorridorBoundary builds a rectangular corridor polygon around the
// from→to segment, offset perpendicular to it by bufferMeters and extended
// past both endpoints by the same buffer. When from and to coincide it emits
// an axis-aligned square of side 2×buffer centered on the point. The returned
// ring is closed (first vertex repeated as last).
func GenerateCorridorBoundary(from, to Point, bufferMeters float64) Polygon {
	bufferLat := bufferMeters / metersPerDegreeLat
	bufferLng := bufferMeters / (metersPerDegreeLat * math.Cos(toRadians((from.Lat+to.Lat)/2)))

	dx := to.Lng - from.Lng
	dy := to.Lat - from.Lat
	length := math.Sqrt(dx*dx + dy*dy)

	if length == 0 {
		return Polygon{
			Type: "Polygon",
			Coordinates: [][][2]float64{{
				{from.Lng - bufferLng, from.Lat - bufferLat},
				{from.Lng + bufferLng, from.Lat - bufferLat},
				{from.Lng + bufferLng, from.Lat + bufferLat},
				{from.Lng - bufferLng, from.Lat + bufferLat},
				{from.Lng - bufferLng, from.Lat - bufferLat},
			}},
		}
	}

	// Perpendicular offset.
	px := -dy / length * bufferLng
	py := dx / length * bufferLat

	// Extension along the segment axis.
	ax := dx / length * bufferLng
	ay := dy / length * bufferLat

	return Polygon{
		Type: "Polygon",
		Coordinates: [][][2]float64{{
			{from.Lng - px - ax, from.Lat - py - ay},
			{to.Lng - px + ax, to.Lat - py + ay},
			{to.Lng + px + ax, to.Lat + py + ay},
			{from.Lng + px - ax, from.Lat + py - ay},
			{from.Lng - px - ax, from.Lat - py - ay},
		}},
	}
}

// ParseBoundary decodes a boundary GeoJSON document from storage. Malformed
// or non-polygon input yields ok=false and is treated by callers as the
// absence of a boundary, never as an error.
func ParseBoundary(raw []byte) (Polygon, bool) {
	if len(raw) == 0 {
		return Polygon{}, false
	}

	var polygon Polygon

	if err := json.Unmarshal(raw, &polygon); err != nil {
		return Polygon{}, false
	}

	if polygon.Type != "Polygon" || len(polygon.Coordinates) == 0 {
		return Polygon{}, false
	}

	return polygon, true
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
