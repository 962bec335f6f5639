package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyshade/internal/types"
)

func unitSquare() []types.LatLng {
	return []types.LatLng{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 2},
		{Lat: 2, Lng: 2},
		{Lat: 2, Lng: 0},
	}
}

func TestCentroid_Square(t *testing.T) {
	c, err := Centroid(unitSquare())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.Lat, 1e-9)
	assert.InDelta(t, 1.0, c.Lng, 1e-9)
}

func TestCentroid_SinglePoint(t *testing.T) {
	c, err := Centroid([]types.LatLng{{Lat: 35.68, Lng: 139.77}})
	require.NoError(t, err)
	assert.InDelta(t, 35.68, c.Lat, 1e-9)
	assert.InDelta(t, 139.77, c.Lng, 1e-9)
}

func TestCentroid_Empty(t *testing.T) {
	_, err := Centroid(nil)
	assert.ErrorIs(t, err, ErrNoVertices)
}

func TestBoundingBox_Square(t *testing.T) {
	b, err := BoundingBox(unitSquare())
	require.NoError(t, err)
	assert.Equal(t, types.Bounds{MinLat: 0, MaxLat: 2, MinLng: 0, MaxLng: 2}, b)
}

func TestBoundingBox_NegativeCoordinates(t *testing.T) {
	b, err := BoundingBox([]types.LatLng{
		{Lat: -10, Lng: -170},
		{Lat: 5, Lng: 20},
		{Lat: -3, Lng: 179},
	})
	require.NoError(t, err)
	assert.Equal(t, types.Bounds{MinLat: -10, MaxLat: 5, MinLng: -170, MaxLng: 179}, b)
}

func TestBoundingBox_Empty(t *testing.T) {
	_, err := BoundingBox([]types.LatLng{})
	assert.ErrorIs(t, err, ErrNoVertices)
}

func TestFeatureRoundTrip(t *testing.T) {
	p := &types.Polygon{
		ID:           "poly_1",
		Name:         "Paddock",
		Vertices:     unitSquare(),
		DataSourceID: "ds_1",
	}

	f := ToFeature(p)
	require.NotNil(t, f.Geometry)
	require.True(t, f.Geometry.IsPolygon())
	// Ring is closed: 4 vertices plus repeated first point.
	assert.Len(t, f.Geometry.Polygon[0], 5)

	id, err := f.PropertyString("id")
	require.NoError(t, err)
	assert.Equal(t, "poly_1", id)

	vertices, err := VerticesFromFeature(f)
	require.NoError(t, err)
	assert.Equal(t, p.Vertices, vertices)
}

func TestVerticesFromFeature_NotAPolygon(t *testing.T) {
	_, err := VerticesFromFeature(nil)
	assert.Error(t, err)
}

func TestFeatureCollection(t *testing.T) {
	fc := FeatureCollection([]*types.Polygon{
		{ID: "a", Vertices: unitSquare()},
		{ID: "b", Vertices: unitSquare()},
	})
	assert.Len(t, fc.Features, 2)
}
