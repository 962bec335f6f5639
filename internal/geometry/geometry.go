// Package geometry provides the derived geometric summaries of a polygon's
// vertex list: centroid and bounding box. Both use a planar approximation
// (arithmetic means and per-axis min/max on raw degrees), which is acceptable
// at dashboard scale but degrades for polygons spanning large latitude
// ranges.
package geometry

import (
	"errors"

	"polyshade/internal/types"
)

// ErrNoVertices is returned when a geometric summary is requested for an
// empty point list. Callers guarantee at least three vertices before
// invocation; the drawing gesture enforces this upstream.
var ErrNoVertices = errors.New("geometry: no vertices")

// Centroid returns the arithmetic mean of the latitudes and longitudes.
// This is a planar approximation, not a geodesic centroid.
func Centroid(pts []types.LatLng) (types.LatLng, error) {
	if len(pts) == 0 {
		return types.LatLng{}, ErrNoVertices
	}

	var sumLat, sumLng float64
	for _, p := range pts {
		sumLat += p.Lat
		sumLng += p.Lng
	}

	n := float64(len(pts))
	return types.LatLng{Lat: sumLat / n, Lng: sumLng / n}, nil
}

// BoundingBox returns the per-axis min/max bounds of the point list.
func BoundingBox(pts []types.LatLng) (types.Bounds, error) {
	if len(pts) == 0 {
		return types.Bounds{}, ErrNoVertices
	}

	b := types.Bounds{
		MinLat: pts[0].Lat,
		MaxLat: pts[0].Lat,
		MinLng: pts[0].Lng,
		MaxLng: pts[0].Lng,
	}
	for _, p := range pts[1:] {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lng < b.MinLng {
			b.MinLng = p.Lng
		}
		if p.Lng > b.MaxLng {
			b.MaxLng = p.Lng
		}
	}
	return b, nil
}
