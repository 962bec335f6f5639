package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"polyshade/internal/core"
	"polyshade/internal/store"
	"polyshade/internal/types"
)

// CreateDataSourceRequest is the request body for POST /v1/datasources.
type CreateDataSourceRequest struct {
	Name  string             `json:"name" validate:"required,max=120"`
	Field types.WeatherField `json:"field" validate:"required"`
	Rules []types.ColorRule  `json:"rules"`
}

// UpdateDataSourceRequest is the request body for PATCH /v1/datasources/{id}.
// Nil fields are left unchanged; Rules replaces the whole rule set.
type UpdateDataSourceRequest struct {
	Name  *string             `json:"name,omitempty" validate:"omitempty,max=120"`
	Field *types.WeatherField `json:"field,omitempty"`
	Rules *[]types.ColorRule  `json:"rules,omitempty"`
}

// FieldsResponse lists the weather fields a data source can observe.
type FieldsResponse struct {
	Fields []types.WeatherField `json:"fields"`
}

// DataSourceHandler manages data source CRUD. A field or rule change shifts
// every assigned polygon's coloring, so mutations trigger a refresh of the
// affected polygons via the overlay service.
type DataSourceHandler struct {
	store     *store.Store
	overlay   OverlayService
	validator *core.Validator
	logger    *slog.Logger
}

// NewDataSourceHandler creates a DataSourceHandler.
func NewDataSourceHandler(st *store.Store, overlay OverlayService, v *core.Validator, l *slog.Logger) *DataSourceHandler {
	if l == nil {
		l = slog.Default()
	}
	return &DataSourceHandler{
		store:     st,
		overlay:   overlay,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts data source routes on the provided chi.Router.
func (h *DataSourceHandler) RegisterRoutes(r chi.Router) {
	r.Route("/datasources", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/fields", h.Fields)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}

// Create handles POST /v1/datasources.
func (h *DataSourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDataSourceRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	ds, err := h.store.CreateDataSource(&types.DataSource{
		Name:  req.Name,
		Field: req.Field,
		Rules: req.Rules,
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: ds})
}

// List handles GET /v1/datasources.
func (h *DataSourceHandler) List(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: h.store.ListDataSources()})
}

// Fields handles GET /v1/datasources/fields.
func (h *DataSourceHandler) Fields(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: FieldsResponse{Fields: types.AllWeatherFields}})
}

// Get handles GET /v1/datasources/{id}.
func (h *DataSourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.GetDataSource(chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: ds})
}

// Update handles PATCH /v1/datasources/{id}. A field change invalidates the
// cached series of every polygon assigned to this source, so those polygons
// are re-fetched; a pure rule change only alters coloring and needs no fetch.
func (h *DataSourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateDataSourceRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	ds, err := h.store.UpdateDataSource(id, store.DataSourceUpdate{
		Name:  req.Name,
		Field: req.Field,
		Rules: req.Rules,
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if req.Field != nil {
		for _, p := range h.store.ListPolygons() {
			if p.DataSourceID != id {
				continue
			}
			if err := h.overlay.RefreshPolygon(r.Context(), p.ID); err != nil {
				h.logger.WarnContext(r.Context(), "series re-fetch after field change failed",
					"polygon_id", p.ID, "error", err)
			}
		}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: ds})
}

// Delete handles DELETE /v1/datasources/{id}. Deleting a source that is
// still assigned to a polygon is a conflict.
func (h *DataSourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteDataSource(chi.URLParam(r, "id")); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
