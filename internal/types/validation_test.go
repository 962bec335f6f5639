package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() []LatLng {
	return []LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 2}, {Lat: 2, Lng: 2}, {Lat: 2, Lng: 0}}
}

func TestPolygonValidate_VertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices int
		wantCode ErrorCode
	}{
		{"two vertices rejected", 2, ErrCodeValidationVertexCount},
		{"three vertices accepted", 3, ""},
		{"twelve vertices accepted", 12, ""},
		{"thirteen vertices rejected", 13, ErrCodeValidationVertexCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Polygon{ID: "poly_1", Name: "test"}
			for i := 0; i < tt.vertices; i++ {
				p.Vertices = append(p.Vertices, LatLng{Lat: float64(i) * 0.01, Lng: float64(i) * 0.01})
			}

			err := p.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestPolygonValidate_CoordinateRange(t *testing.T) {
	p := &Polygon{ID: "poly_1", Vertices: square()}
	p.Vertices[1].Lat = 91

	var appErr *AppError
	require.ErrorAs(t, p.Validate(), &appErr)
	assert.Equal(t, ErrCodeValidationInvalidLat, appErr.Code)

	p = &Polygon{ID: "poly_1", Vertices: square()}
	p.Vertices[2].Lng = -181
	require.ErrorAs(t, p.Validate(), &appErr)
	assert.Equal(t, ErrCodeValidationInvalidLng, appErr.Code)
}

func TestDataSourceValidate(t *testing.T) {
	ds := &DataSource{
		ID:    "ds_1",
		Name:  "Rain",
		Field: FieldPrecipitation,
		Rules: []ColorRule{
			{Operator: OpLessThan, Threshold: 1, Color: "#22c55e"},
			{Operator: OpGreaterThanEq, Threshold: 1, Color: "#ef4444"},
		},
	}
	assert.NoError(t, ds.Validate())

	ds.Field = "snow_depth_probably"
	var appErr *AppError
	require.ErrorAs(t, ds.Validate(), &appErr)
	assert.Equal(t, ErrCodeValidationInvalidField, appErr.Code)

	ds.Field = FieldPrecipitation
	ds.Rules[0].Operator = "!="
	require.ErrorAs(t, ds.Validate(), &appErr)
	assert.Equal(t, ErrCodeValidationInvalidOperator, appErr.Code)

	ds.Rules[0].Operator = OpLessThan
	ds.Rules[1].Color = ""
	require.ErrorAs(t, ds.Validate(), &appErr)
	assert.Equal(t, ErrCodeValidationMissingField, appErr.Code)
}

func TestTimelineSelectionValidate(t *testing.T) {
	base := NewDate(2024, time.June, 15)

	tests := []struct {
		name     string
		sel      TimelineSelection
		wantCode ErrorCode
	}{
		{"valid single", TimelineSelection{Mode: ModeSingle, Offset: 360, BaseDate: base}, ""},
		{"single offset zero", TimelineSelection{Mode: ModeSingle, Offset: 0, BaseDate: base}, ""},
		{"single offset max", TimelineSelection{Mode: ModeSingle, Offset: MaxHourOffset, BaseDate: base}, ""},
		{"single offset negative", TimelineSelection{Mode: ModeSingle, Offset: -1, BaseDate: base}, ErrCodeValidationInvalidOffset},
		{"single offset too large", TimelineSelection{Mode: ModeSingle, Offset: WindowHours, BaseDate: base}, ErrCodeValidationInvalidOffset},
		{"valid range", TimelineSelection{Mode: ModeRange, Range: &OffsetRange{Start: 100, End: 200}, BaseDate: base}, ""},
		{"range missing pair", TimelineSelection{Mode: ModeRange, BaseDate: base}, ErrCodeValidationInvalidRange},
		{"range inverted", TimelineSelection{Mode: ModeRange, Range: &OffsetRange{Start: 300, End: 299}, BaseDate: base}, ErrCodeValidationInvalidRange},
		{"range end beyond window", TimelineSelection{Mode: ModeRange, Range: &OffsetRange{Start: 0, End: WindowHours}, BaseDate: base}, ErrCodeValidationInvalidRange},
		{"unknown mode", TimelineSelection{Mode: "scrub", Offset: 1, BaseDate: base}, ErrCodeValidationMissingField},
		{"missing base date", TimelineSelection{Mode: ModeSingle, Offset: 1}, ErrCodeValidationMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestAppError_UnwrapAndStatus(t *testing.T) {
	inner := errors.New("boom")
	err := NewAppError(ErrCodeUpstreamArchive, "archive unavailable", inner)

	assert.Equal(t, 502, err.HTTPStatus())
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "upstream_archive_unavailable")

	withDetails := err.WithDetails(map[string]any{"polygon_id": "poly_1"})
	assert.Equal(t, "poly_1", withDetails.Details["polygon_id"])
	// Original remains untouched.
	assert.Nil(t, err.Details)
}

func TestErrorCode_HTTPStatus(t *testing.T) {
	assert.Equal(t, 400, ErrCodeValidationVertexCount.HTTPStatus())
	assert.Equal(t, 400, ErrCodeValidationDateWindow.HTTPStatus())
	assert.Equal(t, 404, ErrCodeNotFoundPolygon.HTTPStatus())
	assert.Equal(t, 409, ErrCodeConflictDataSourceInUse.HTTPStatus())
	assert.Equal(t, 502, ErrCodeUpstreamRateLimited.HTTPStatus())
	assert.Equal(t, 500, ErrCodeInternalState.HTTPStatus())
	assert.Equal(t, 500, ErrorCode("something_else").HTTPStatus())
}
