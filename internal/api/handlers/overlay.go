package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"polyshade/internal/core"
	"polyshade/internal/overlay"
	"polyshade/internal/store"
	"polyshade/internal/types"
)

// Snapshotter resolves the overlay view. Separate from OverlayService
// because only this handler consumes the resolved states.
type Snapshotter interface {
	Snapshot(ctx context.Context) []overlay.PolygonState
	RefreshAll(ctx context.Context)
}

// OverlayResponse is the body for GET /v1/overlay.
type OverlayResponse struct {
	Selection types.TimelineSelection `json:"selection"`
	Polygons  []overlay.PolygonState  `json:"polygons"`
}

// OverlayHandler serves the resolved overlay and manual refresh.
type OverlayHandler struct {
	store   *store.Store
	overlay Snapshotter
	logger  *slog.Logger
}

// NewOverlayHandler creates an OverlayHandler.
func NewOverlayHandler(st *store.Store, snap Snapshotter, l *slog.Logger) *OverlayHandler {
	if l == nil {
		l = slog.Default()
	}
	return &OverlayHandler{
		store:   st,
		overlay: snap,
		logger:  l,
	}
}

// RegisterRoutes mounts overlay routes on the provided chi.Router.
func (h *OverlayHandler) RegisterRoutes(r chi.Router) {
	r.Route("/overlay", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/refresh", h.Refresh)
	})
}

// Get handles GET /v1/overlay: every polygon's resolved value and color
// under the current timeline selection.
func (h *OverlayHandler) Get(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: OverlayResponse{
		Selection: h.store.Selection(),
		Polygons:  h.overlay.Snapshot(r.Context()),
	}})
}

// Refresh handles POST /v1/overlay/refresh: a forced re-fetch of every
// polygon's series, then the freshly resolved overlay.
func (h *OverlayHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.overlay.RefreshAll(r.Context())
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: OverlayResponse{
		Selection: h.store.Selection(),
		Polygons:  h.overlay.Snapshot(r.Context()),
	}})
}
