package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyshade/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New("", nil)
}

func seedDataSource(t *testing.T, s *Store) *types.DataSource {
	t.Helper()
	ds, err := s.CreateDataSource(&types.DataSource{
		Name:  "Temperature",
		Field: types.FieldTemperature,
		Rules: []types.ColorRule{
			{Operator: types.OpLessThan, Threshold: 0, Color: "#60a5fa"},
			{Operator: types.OpGreaterThanEq, Threshold: 30, Color: "#ef4444"},
		},
	})
	require.NoError(t, err)
	return ds
}

func validPolygon(dsID string) *types.Polygon {
	return &types.Polygon{
		Name:         "Field A",
		DataSourceID: dsID,
		Vertices: []types.LatLng{
			{Lat: 0, Lng: 0}, {Lat: 0, Lng: 2}, {Lat: 2, Lng: 2}, {Lat: 2, Lng: 0},
		},
	}
}

func TestCreatePolygon_AssignsIDAndTimestamps(t *testing.T) {
	s := newTestStore(t)
	ds := seedDataSource(t, s)

	p, err := s.CreatePolygon(validPolygon(ds.ID))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestCreatePolygon_RequiresExistingDataSource(t *testing.T) {
	s := newTestStore(t)

	var appErr *types.AppError
	_, err := s.CreatePolygon(validPolygon(""))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationMissingDataSource, appErr.Code)

	_, err = s.CreatePolygon(validPolygon("ds_missing"))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationMissingDataSource, appErr.Code)
}

func TestCreatePolygon_RejectsBadVertexCount(t *testing.T) {
	s := newTestStore(t)
	ds := seedDataSource(t, s)

	p := validPolygon(ds.ID)
	p.Vertices = p.Vertices[:2]

	var appErr *types.AppError
	_, err := s.CreatePolygon(p)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationVertexCount, appErr.Code)
}

func TestUpdatePolygon_PartialUpdate(t *testing.T) {
	s := newTestStore(t)
	ds := seedDataSource(t, s)
	created, err := s.CreatePolygon(validPolygon(ds.ID))
	require.NoError(t, err)

	name := "Renamed"
	updated, err := s.UpdatePolygon(created.ID, PolygonUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, created.Vertices, updated.Vertices)

	// Vertex drag.
	moved := append([]types.LatLng(nil), created.Vertices...)
	moved[0].Lat = 1.5
	updated, err = s.UpdatePolygon(created.ID, PolygonUpdate{Vertices: moved})
	require.NoError(t, err)
	assert.Equal(t, 1.5, updated.Vertices[0].Lat)
}

func TestUpdatePolygon_InvalidUpdateLeavesStateUntouched(t *testing.T) {
	s := newTestStore(t)
	ds := seedDataSource(t, s)
	created, err := s.CreatePolygon(validPolygon(ds.ID))
	require.NoError(t, err)

	_, err = s.UpdatePolygon(created.ID, PolygonUpdate{Vertices: created.Vertices[:2]})
	require.Error(t, err)

	got, err := s.GetPolygon(created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Vertices, 4)
}

func TestUpdatePolygon_NotFound(t *testing.T) {
	s := newTestStore(t)
	var appErr *types.AppError
	_, err := s.UpdatePolygon("missing", PolygonUpdate{})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundPolygon, appErr.Code)
}

func TestListPolygons_OrderedByCreation(t *testing.T) {
	s := newTestStore(t)
	ds := seedDataSource(t, s)

	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.nowFn = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first, err := s.CreatePolygon(validPolygon(ds.ID))
	require.NoError(t, err)
	second, err := s.CreatePolygon(validPolygon(ds.ID))
	require.NoError(t, err)

	list := s.ListPolygons()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestDeletePolygon(t *testing.T) {
	s := newTestStore(t)
	ds := seedDataSource(t, s)
	p, err := s.CreatePolygon(validPolygon(ds.ID))
	require.NoError(t, err)

	require.NoError(t, s.DeletePolygon(p.ID))
	_, err = s.GetPolygon(p.ID)
	assert.Error(t, err)
	assert.Error(t, s.DeletePolygon(p.ID))
}

func TestDeleteDataSource_InUseConflict(t *testing.T) {
	s := newTestStore(t)
	ds := seedDataSource(t, s)
	p, err := s.CreatePolygon(validPolygon(ds.ID))
	require.NoError(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, s.DeleteDataSource(ds.ID), &appErr)
	assert.Equal(t, types.ErrCodeConflictDataSourceInUse, appErr.Code)

	require.NoError(t, s.DeletePolygon(p.ID))
	assert.NoError(t, s.DeleteDataSource(ds.ID))
}

func TestUpdateDataSource_ReplacesRuleSet(t *testing.T) {
	s := newTestStore(t)
	ds := seedDataSource(t, s)

	rules := []types.ColorRule{{Operator: types.OpGreaterThan, Threshold: 5, Color: "#000"}}
	updated, err := s.UpdateDataSource(ds.ID, DataSourceUpdate{Rules: &rules})
	require.NoError(t, err)
	require.Len(t, updated.Rules, 1)
	assert.Equal(t, 5.0, updated.Rules[0].Threshold)

	badField := types.WeatherField("sunspots")
	_, err = s.UpdateDataSource(ds.ID, DataSourceUpdate{Field: &badField})
	assert.Error(t, err)
}

func TestSetSelection_ReportsBaseDateChange(t *testing.T) {
	s := newTestStore(t)
	sel := s.Selection()

	// Same base date, different offset: no refetch needed.
	sel.Offset = 100
	changed, err := s.SetSelection(sel)
	require.NoError(t, err)
	assert.False(t, changed)

	// New base date: all series must be refetched.
	sel.BaseDate = types.NewDate(2024, time.March, 1)
	changed, err = s.SetSelection(sel)
	require.NoError(t, err)
	assert.True(t, changed)

	sel.Offset = types.WindowHours
	_, err = s.SetSelection(sel)
	assert.Error(t, err)
}

func TestDefaultSelection_WindowFullyArchived(t *testing.T) {
	now := time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)
	sel := DefaultSelection(now)

	require.NoError(t, sel.Validate())
	assert.Equal(t, types.ModeSingle, sel.Mode)
	// Window end (base + 14d) must not pass the archive's publication lag
	// (now - 5d).
	windowEnd := sel.BaseDate.AddDate(0, 0, types.WindowDaysAhead-1)
	assert.False(t, windowEnd.After(now.AddDate(0, 0, -5)))
}

func TestSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "polyshade.json.zst")

	s := New(path, nil)
	ds := seedDataSource(t, s)
	p, err := s.CreatePolygon(validPolygon(ds.ID))
	require.NoError(t, err)

	sel := s.Selection()
	sel.Mode = types.ModeRange
	sel.Range = &types.OffsetRange{Start: 10, End: 20}
	_, err = s.SetSelection(sel)
	require.NoError(t, err)

	// Reload from disk: polygons, data sources, and selection survive.
	reloaded := New(path, nil)

	gotPolygon, err := reloaded.GetPolygon(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, gotPolygon.Name)
	assert.Equal(t, p.Vertices, gotPolygon.Vertices)
	assert.Equal(t, p.DataSourceID, gotPolygon.DataSourceID)

	gotDS, err := reloaded.GetDataSource(ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.Rules, gotDS.Rules)

	gotSel := reloaded.Selection()
	assert.Equal(t, types.ModeRange, gotSel.Mode)
	require.NotNil(t, gotSel.Range)
	assert.Equal(t, 10, gotSel.Range.Start)
}

func TestSnapshot_MissingFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json.zst")
	s := New(path, nil)
	assert.Empty(t, s.ListPolygons())
}
