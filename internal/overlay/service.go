// Package overlay orchestrates the polygon-to-color pipeline: it drives
// series fetches for all polygons, falls back to synthetic data on failure,
// and resolves each polygon's current value and display color from the
// cached series, the timeline selection, and the assigned rule set.
package overlay

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"polyshade/internal/cache"
	"polyshade/internal/geometry"
	"polyshade/internal/rules"
	"polyshade/internal/store"
	"polyshade/internal/telemetry"
	"polyshade/internal/timeline"
	"polyshade/internal/types"
	"polyshade/internal/weather"
)

// maxConcurrentFetches bounds parallel archive requests during a
// refresh-all pass.
const maxConcurrentFetches = 8

// SeriesFetcher abstracts the archive client for testability.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, loc types.LatLng, w timeline.Window, field types.WeatherField) ([]types.TimeSeriesPoint, error)
}

// PolygonState is one polygon's entry in an overlay snapshot: the resolved
// value (nil when absent) and the display color, plus enough metadata for
// the map layer to flag fallback data.
type PolygonState struct {
	PolygonID string             `json:"polygon_id"`
	Name      string             `json:"name"`
	Field     types.WeatherField `json:"field,omitempty"`
	Value     *float64           `json:"value,omitempty"`
	Color     string             `json:"color"`
	Synthetic bool               `json:"synthetic"`
	Centroid  *types.LatLng      `json:"centroid,omitempty"`
}

// Service wires the store, series cache, and fetch adapter together.
type Service struct {
	store   *store.Store
	cache   *cache.SeriesCache
	fetcher SeriesFetcher
	logger  *slog.Logger
	nowFn   func() time.Time
}

// NewService creates the overlay service.
func NewService(st *store.Store, c *cache.SeriesCache, fetcher SeriesFetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   st,
		cache:   c,
		fetcher: fetcher,
		logger:  logger,
		nowFn:   time.Now,
	}
}

// RefreshAll fetches series for every polygon concurrently and waits for all
// of them to land (all-complete barrier). There is no ordering guarantee
// between polygons; each polygon's cache update is an atomic whole-entry
// replace. Per-polygon failures degrade to a synthetic fallback series and a
// warning, never an error: after RefreshAll every polygon has a cache entry.
func (s *Service) RefreshAll(ctx context.Context) {
	polygons := s.store.ListPolygons()
	baseDate := s.store.Selection().BaseDate

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for _, p := range polygons {
		p := p
		g.Go(func() error {
			s.refreshOne(ctx, p, baseDate)
			return nil
		})
	}
	// Goroutines never return errors; Wait is purely the completion barrier.
	_ = g.Wait()

	s.logger.InfoContext(ctx, "overlay refresh complete",
		"polygons", len(polygons),
		"base_date", baseDate.String(),
	)
}

// RefreshPolygon fetches a single polygon's series, e.g. after a draw or a
// vertex drag.
func (s *Service) RefreshPolygon(ctx context.Context, polygonID string) error {
	p, err := s.store.GetPolygon(polygonID)
	if err != nil {
		return err
	}
	s.refreshOne(ctx, p, s.store.Selection().BaseDate)
	return nil
}

// refreshOne performs one guarded fetch-and-store cycle. The generation
// counter taken before the fetch lets a response superseded by a newer
// request be discarded instead of overwriting fresher data.
func (s *Service) refreshOne(ctx context.Context, p *types.Polygon, baseDate types.Date) {
	ds, err := s.store.GetDataSource(p.DataSourceID)
	if err != nil {
		s.logger.WarnContext(ctx, "polygon has no resolvable data source, skipping fetch",
			"polygon_id", p.ID, "data_source_id", p.DataSourceID)
		return
	}

	centroid, err := geometry.Centroid(p.Vertices)
	if err != nil {
		s.logger.WarnContext(ctx, "polygon centroid undefined, skipping fetch",
			"polygon_id", p.ID, "error", err)
		return
	}

	w := timeline.NewWindow(baseDate)
	generation := s.cache.Begin(p.ID)

	series, fetchErr := s.fetcher.FetchSeries(ctx, centroid, w, ds.Field)
	synthetic := false
	if fetchErr != nil {
		// Degrade to a deterministic synthetic series so the polygon stays
		// populated; the entry is flagged as non-authoritative.
		s.logger.WarnContext(ctx, "series fetch failed, using synthetic fallback",
			"polygon_id", p.ID,
			"field", string(ds.Field),
			"error", fetchErr,
		)
		series = weather.FallbackSeries(p.ID, w, ds.Field)
		synthetic = true
		telemetry.CountFallback()
	}

	stored := s.cache.StoreIfCurrent(p.ID, generation, cache.Entry{
		Series:    series,
		Field:     ds.Field,
		BaseDate:  baseDate,
		Synthetic: synthetic,
		FetchedAt: s.nowFn().UTC(),
	})
	if !stored {
		telemetry.CountStaleDiscard()
		s.logger.DebugContext(ctx, "discarded superseded series response",
			"polygon_id", p.ID, "generation", generation)
	}
}

// DropPolygon removes a deleted polygon's cached series.
func (s *Service) DropPolygon(polygonID string) {
	s.cache.Delete(polygonID)
}

// Series returns the cached entry for one polygon.
func (s *Service) Series(polygonID string) (cache.Entry, bool) {
	return s.cache.Get(polygonID)
}

// Snapshot resolves value and color for every polygon against the current
// timeline selection. Resolution is total: a polygon with no cached series
// or no matching hour gets the no-data color, one whose value matches no
// rule gets the default color. No polygon is ever left uncolored.
func (s *Service) Snapshot(ctx context.Context) []PolygonState {
	start := time.Now()
	defer func() { telemetry.ObserveOverlayResolve(time.Since(start)) }()

	sel := s.store.Selection()
	polygons := s.store.ListPolygons()

	states := make([]PolygonState, 0, len(polygons))
	for _, p := range polygons {
		state := PolygonState{
			PolygonID: p.ID,
			Name:      p.Name,
			Color:     rules.ColorNoData,
		}
		if c, err := geometry.Centroid(p.Vertices); err == nil {
			state.Centroid = &c
		}

		var ruleSet []types.ColorRule
		if ds, err := s.store.GetDataSource(p.DataSourceID); err == nil {
			state.Field = ds.Field
			ruleSet = ds.Rules
		}

		entry, cached := s.cache.Get(p.ID)
		if cached {
			state.Synthetic = entry.Synthetic
		}

		value, present := timeline.ResolveValue(entry.Series, sel)
		if present {
			state.Value = &value
		}
		state.Color = rules.ColorFor(value, present, ruleSet)

		states = append(states, state)
	}
	return states
}
