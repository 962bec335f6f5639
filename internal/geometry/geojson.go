package geometry

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"

	"polyshade/internal/types"
)

// ToFeature converts a polygon into a GeoJSON feature. The vertex ring is
// closed (first point repeated last) per RFC 7946, coordinates are [lng, lat],
// and the polygon's identity and assignment travel as feature properties.
func ToFeature(p *types.Polygon) *geojson.Feature {
	ring := make([][]float64, 0, len(p.Vertices)+1)
	for _, v := range p.Vertices {
		ring = append(ring, []float64{v.Lng, v.Lat})
	}
	if len(ring) > 0 {
		ring = append(ring, []float64{p.Vertices[0].Lng, p.Vertices[0].Lat})
	}

	f := geojson.NewPolygonFeature([][][]float64{ring})
	f.SetProperty("id", p.ID)
	f.SetProperty("name", p.Name)
	if p.DataSourceID != "" {
		f.SetProperty("data_source_id", p.DataSourceID)
	}
	return f
}

// FeatureCollection converts all polygons into a GeoJSON feature collection
// for the map layer.
func FeatureCollection(polygons []*types.Polygon) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range polygons {
		fc.AddFeature(ToFeature(p))
	}
	return fc
}

// VerticesFromFeature extracts the outer ring of a GeoJSON polygon feature as
// a vertex list, dropping the closing point if the ring is closed. Vertex
// count invariants are enforced by the caller via types.Polygon.Validate.
func VerticesFromFeature(f *geojson.Feature) ([]types.LatLng, error) {
	if f == nil || f.Geometry == nil || !f.Geometry.IsPolygon() {
		return nil, fmt.Errorf("feature geometry is not a polygon")
	}
	if len(f.Geometry.Polygon) == 0 {
		return nil, fmt.Errorf("polygon feature has no rings")
	}

	ring := f.Geometry.Polygon[0]
	vertices := make([]types.LatLng, 0, len(ring))
	for _, coord := range ring {
		if len(coord) < 2 {
			return nil, fmt.Errorf("polygon coordinate has %d components, want 2", len(coord))
		}
		vertices = append(vertices, types.LatLng{Lat: coord[1], Lng: coord[0]})
	}

	// Drop the closing point of a closed ring.
	if len(vertices) > 1 && vertices[0] == vertices[len(vertices)-1] {
		vertices = vertices[:len(vertices)-1]
	}
	return vertices, nil
}
