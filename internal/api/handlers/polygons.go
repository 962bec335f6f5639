// Package handlers contains the HTTP handler implementations for the
// dashboard API: polygons, data sources, the timeline selection, and the
// overlay snapshot.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"polyshade/internal/cache"
	"polyshade/internal/core"
	"polyshade/internal/geometry"
	"polyshade/internal/store"
	"polyshade/internal/types"
)

// OverlayService is the orchestration contract the handlers depend on.
// Defined locally so handler tests can substitute a fake.
type OverlayService interface {
	RefreshAll(ctx context.Context)
	RefreshPolygon(ctx context.Context, polygonID string) error
	DropPolygon(polygonID string)
	Series(polygonID string) (cache.Entry, bool)
}

// CreatePolygonRequest is the request body for POST /v1/polygons.
type CreatePolygonRequest struct {
	Name         string         `json:"name" validate:"required,max=120"`
	DataSourceID string         `json:"data_source_id" validate:"required"`
	Vertices     []types.LatLng `json:"vertices" validate:"required"`
}

// UpdatePolygonRequest is the request body for PATCH /v1/polygons/{id}.
// Nil fields are left unchanged.
type UpdatePolygonRequest struct {
	Name         *string        `json:"name,omitempty" validate:"omitempty,max=120"`
	DataSourceID *string        `json:"data_source_id,omitempty"`
	Vertices     []types.LatLng `json:"vertices,omitempty"`
}

// SeriesResponse is the body for GET /v1/polygons/{id}/series.
type SeriesResponse struct {
	PolygonID string                  `json:"polygon_id"`
	Field     types.WeatherField      `json:"field"`
	BaseDate  types.Date              `json:"base_date"`
	Synthetic bool                    `json:"synthetic"`
	Points    []types.TimeSeriesPoint `json:"points"`
}

// PolygonHandler manages polygon CRUD and the per-polygon series view.
type PolygonHandler struct {
	store     *store.Store
	overlay   OverlayService
	validator *core.Validator
	logger    *slog.Logger
}

// NewPolygonHandler creates a PolygonHandler.
func NewPolygonHandler(st *store.Store, overlay OverlayService, v *core.Validator, l *slog.Logger) *PolygonHandler {
	if l == nil {
		l = slog.Default()
	}
	return &PolygonHandler{
		store:     st,
		overlay:   overlay,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts polygon routes on the provided chi.Router.
func (h *PolygonHandler) RegisterRoutes(r chi.Router) {
	r.Route("/polygons", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/geojson", h.GeoJSON)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
			r.Get("/series", h.GetSeries)
		})
	})
}

// Create handles POST /v1/polygons. The new polygon's series is fetched
// before the response returns, so the overlay can color it immediately.
func (h *PolygonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePolygonRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	p, err := h.store.CreatePolygon(&types.Polygon{
		Name:         req.Name,
		DataSourceID: req.DataSourceID,
		Vertices:     req.Vertices,
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.overlay.RefreshPolygon(r.Context(), p.ID); err != nil {
		h.logger.WarnContext(r.Context(), "initial series fetch failed",
			"polygon_id", p.ID, "error", err)
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: p})
}

// List handles GET /v1/polygons.
func (h *PolygonHandler) List(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: h.store.ListPolygons()})
}

// Get handles GET /v1/polygons/{id}.
func (h *PolygonHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetPolygon(chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: p})
}

// Update handles PATCH /v1/polygons/{id}. A vertex or data source change
// invalidates the cached series, so the polygon is re-fetched before the
// response returns.
func (h *PolygonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdatePolygonRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	p, err := h.store.UpdatePolygon(id, store.PolygonUpdate{
		Name:         req.Name,
		Vertices:     req.Vertices,
		DataSourceID: req.DataSourceID,
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if req.Vertices != nil || req.DataSourceID != nil {
		if err := h.overlay.RefreshPolygon(r.Context(), p.ID); err != nil {
			h.logger.WarnContext(r.Context(), "series re-fetch after update failed",
				"polygon_id", p.ID, "error", err)
		}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: p})
}

// Delete handles DELETE /v1/polygons/{id} and drops the cached series.
func (h *PolygonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeletePolygon(id); err != nil {
		core.Error(w, r, err)
		return
	}
	h.overlay.DropPolygon(id)

	w.WriteHeader(http.StatusNoContent)
}

// GetSeries handles GET /v1/polygons/{id}/series, returning the cached
// hourly series backing the polygon's overlay color.
func (h *PolygonHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.store.GetPolygon(id); err != nil {
		core.Error(w, r, err)
		return
	}

	entry, ok := h.overlay.Series(id)
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeNotFoundSeries,
			"no series has been fetched for this polygon yet",
			nil,
		))
		return
	}

	resp := SeriesResponse{
		PolygonID: id,
		Field:     entry.Field,
		BaseDate:  entry.BaseDate,
		Synthetic: entry.Synthetic,
		Points:    entry.Series,
	}
	var meta *core.ResponseMeta
	if entry.Synthetic {
		meta = &core.ResponseMeta{Warnings: []string{"series is synthetic fallback data"}}
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp, Meta: meta})
}

// GeoJSON handles GET /v1/polygons/geojson, exporting every polygon as a
// GeoJSON FeatureCollection for map tooling.
func (h *PolygonHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, geometry.FeatureCollection(h.store.ListPolygons()))
}
