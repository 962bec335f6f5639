// Package store holds the mutable application state behind the dashboard:
// polygons, data sources, and the timeline selection. It is the
// local-storage equivalent of the browser client: state survives restarts
// via a compressed JSON snapshot, while the weather cache and transient UI
// flags are deliberately not persisted.
package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"polyshade/internal/types"
)

// Store is the concurrency-safe state container. All mutations go through
// its methods; a best-effort snapshot save follows every successful
// mutation.
type Store struct {
	mu     sync.RWMutex
	logger *slog.Logger
	nowFn  func() time.Time

	polygons    map[string]*types.Polygon
	dataSources map[string]*types.DataSource
	selection   types.TimelineSelection

	snapshotPath string // empty disables persistence
}

// New creates a Store. If snapshotPath is non-empty and a snapshot exists
// there, state is restored from it; a missing or unreadable snapshot starts
// fresh (with a warning) rather than failing startup.
func New(snapshotPath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		logger:       logger,
		nowFn:        time.Now,
		polygons:     make(map[string]*types.Polygon),
		dataSources:  make(map[string]*types.DataSource),
		snapshotPath: snapshotPath,
	}
	s.selection = DefaultSelection(s.nowFn())

	if snapshotPath != "" {
		if err := s.restore(); err != nil {
			logger.Warn("state snapshot not restored, starting fresh",
				"path", snapshotPath, "error", err)
		}
	}
	return s
}

// DefaultSelection is the timeline state for a fresh session: single mode at
// the window center, anchored far enough in the past that the whole 720-hour
// window is inside the archive's published range.
func DefaultSelection(now time.Time) types.TimelineSelection {
	return types.TimelineSelection{
		Mode:     types.ModeSingle,
		Offset:   types.WindowHours / 2,
		BaseDate: types.DateOf(now.AddDate(0, 0, -(types.WindowDaysAhead + 5))),
	}
}

// --- Polygons ---

// CreatePolygon validates and stores a new polygon, assigning an id and
// timestamps. The referenced data source must exist.
func (s *Store) CreatePolygon(p *types.Polygon) (*types.Polygon, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDataSourceRef(p.DataSourceID); err != nil {
		return nil, err
	}

	now := s.nowFn().UTC()
	stored := clonePolygon(p)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.polygons[stored.ID] = stored
	s.saveLocked()
	return clonePolygon(stored), nil
}

// PolygonUpdate carries the mutable polygon fields for a partial update.
// Nil fields are left unchanged.
type PolygonUpdate struct {
	Name         *string        `json:"name,omitempty"`
	Vertices     []types.LatLng `json:"vertices,omitempty"`
	DataSourceID *string        `json:"data_source_id,omitempty"`
}

// UpdatePolygon applies a partial update (rename, vertex drag, data source
// reassignment) and returns the updated polygon.
func (s *Store) UpdatePolygon(id string, upd PolygonUpdate) (*types.Polygon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.polygons[id]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundPolygon, "polygon not found", nil)
	}

	candidate := clonePolygon(existing)
	if upd.Name != nil {
		candidate.Name = *upd.Name
	}
	if upd.Vertices != nil {
		candidate.Vertices = append([]types.LatLng(nil), upd.Vertices...)
	}
	if upd.DataSourceID != nil {
		candidate.DataSourceID = *upd.DataSourceID
	}

	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkDataSourceRef(candidate.DataSourceID); err != nil {
		return nil, err
	}

	candidate.UpdatedAt = s.nowFn().UTC()
	s.polygons[id] = candidate
	s.saveLocked()
	return clonePolygon(candidate), nil
}

// GetPolygon returns the polygon with the given id.
func (s *Store) GetPolygon(id string) (*types.Polygon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.polygons[id]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundPolygon, "polygon not found", nil)
	}
	return clonePolygon(p), nil
}

// ListPolygons returns all polygons ordered by creation time, oldest first.
func (s *Store) ListPolygons() []*types.Polygon {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Polygon, 0, len(s.polygons))
	for _, p := range s.polygons {
		out = append(out, clonePolygon(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// DeletePolygon removes a polygon. The caller is responsible for dropping
// the polygon's cached series.
func (s *Store) DeletePolygon(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polygons[id]; !ok {
		return types.NewAppError(types.ErrCodeNotFoundPolygon, "polygon not found", nil)
	}
	delete(s.polygons, id)
	s.saveLocked()
	return nil
}

// --- Data sources ---

// CreateDataSource validates and stores a new data source.
func (s *Store) CreateDataSource(ds *types.DataSource) (*types.DataSource, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn().UTC()
	stored := cloneDataSource(ds)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.dataSources[stored.ID] = stored
	s.saveLocked()
	return cloneDataSource(stored), nil
}

// DataSourceUpdate carries the mutable data source fields for a partial
// update. Nil fields are left unchanged; Rules replaces the whole rule set.
type DataSourceUpdate struct {
	Name  *string             `json:"name,omitempty"`
	Field *types.WeatherField `json:"field,omitempty"`
	Rules *[]types.ColorRule  `json:"rules,omitempty"`
}

// UpdateDataSource applies a partial update and returns the updated source.
func (s *Store) UpdateDataSource(id string, upd DataSourceUpdate) (*types.DataSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.dataSources[id]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundDataSource, "data source not found", nil)
	}

	candidate := cloneDataSource(existing)
	if upd.Name != nil {
		candidate.Name = *upd.Name
	}
	if upd.Field != nil {
		candidate.Field = *upd.Field
	}
	if upd.Rules != nil {
		candidate.Rules = append([]types.ColorRule(nil), (*upd.Rules)...)
	}

	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	candidate.UpdatedAt = s.nowFn().UTC()
	s.dataSources[id] = candidate
	s.saveLocked()
	return cloneDataSource(candidate), nil
}

// GetDataSource returns the data source with the given id.
func (s *Store) GetDataSource(id string) (*types.DataSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.dataSources[id]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundDataSource, "data source not found", nil)
	}
	return cloneDataSource(ds), nil
}

// ListDataSources returns all data sources ordered by creation time.
func (s *Store) ListDataSources() []*types.DataSource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.DataSource, 0, len(s.dataSources))
	for _, ds := range s.dataSources {
		out = append(out, cloneDataSource(ds))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// DeleteDataSource removes a data source unless a polygon still references
// it.
func (s *Store) DeleteDataSource(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dataSources[id]; !ok {
		return types.NewAppError(types.ErrCodeNotFoundDataSource, "data source not found", nil)
	}
	for _, p := range s.polygons {
		if p.DataSourceID == id {
			return types.NewAppErrorWithDetails(
				types.ErrCodeConflictDataSourceInUse,
				"data source is assigned to a polygon",
				nil,
				map[string]any{"polygon_id": p.ID},
			)
		}
	}
	delete(s.dataSources, id)
	s.saveLocked()
	return nil
}

// --- Timeline selection ---

// Selection returns the current timeline selection.
func (s *Store) Selection() types.TimelineSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// SetSelection validates and stores a new timeline selection. The returned
// flag reports whether the base date changed, which is the caller's signal
// to re-fetch all series.
func (s *Store) SetSelection(sel types.TimelineSelection) (baseChanged bool, err error) {
	if err := sel.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	baseChanged = !s.selection.BaseDate.Equal(sel.BaseDate.Time)
	s.selection = sel
	s.saveLocked()
	return baseChanged, nil
}

// --- Internals ---

// checkDataSourceRef requires a non-empty, existing data source reference.
// Callers hold the lock.
func (s *Store) checkDataSourceRef(id string) error {
	if id == "" {
		return types.NewAppError(
			types.ErrCodeValidationMissingDataSource,
			"polygon must be assigned a data source",
			nil,
		)
	}
	if _, ok := s.dataSources[id]; !ok {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationMissingDataSource,
			"assigned data source does not exist",
			nil,
			map[string]any{"data_source_id": id},
		)
	}
	return nil
}

func clonePolygon(p *types.Polygon) *types.Polygon {
	out := *p
	out.Vertices = append([]types.LatLng(nil), p.Vertices...)
	return &out
}

func cloneDataSource(ds *types.DataSource) *types.DataSource {
	out := *ds
	out.Rules = append([]types.ColorRule(nil), ds.Rules...)
	return &out
}
