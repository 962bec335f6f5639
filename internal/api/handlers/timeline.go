package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"polyshade/internal/core"
	"polyshade/internal/store"
	"polyshade/internal/timeline"
	"polyshade/internal/types"
)

// UpdateTimelineRequest is the request body for PUT /v1/timeline.
type UpdateTimelineRequest struct {
	Mode     types.SelectionMode `json:"mode" validate:"required"`
	Offset   int                 `json:"offset"`
	Range    *types.OffsetRange  `json:"range,omitempty"`
	BaseDate types.Date          `json:"base_date"`
}

// TimelineResponse is the body for GET and PUT /v1/timeline. The window
// bounds are derived so the client can label the slider without duplicating
// the window arithmetic.
type TimelineResponse struct {
	Selection   types.TimelineSelection `json:"selection"`
	WindowStart types.Date              `json:"window_start"`
	WindowEnd   types.Date              `json:"window_end"`
	WindowHours int                     `json:"window_hours"`
}

// TimelineHandler manages the shared timeline selection.
type TimelineHandler struct {
	store     *store.Store
	overlay   OverlayService
	validator *core.Validator
	logger    *slog.Logger
}

// NewTimelineHandler creates a TimelineHandler.
func NewTimelineHandler(st *store.Store, overlay OverlayService, v *core.Validator, l *slog.Logger) *TimelineHandler {
	if l == nil {
		l = slog.Default()
	}
	return &TimelineHandler{
		store:     st,
		overlay:   overlay,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts timeline routes on the provided chi.Router.
func (h *TimelineHandler) RegisterRoutes(r chi.Router) {
	r.Route("/timeline", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Put)
	})
}

// Get handles GET /v1/timeline.
func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: timelineResponse(h.store.Selection())})
}

// Put handles PUT /v1/timeline. Moving the slider or toggling the mode only
// changes how cached series are resolved; changing the base date shifts the
// 720-hour window itself, so every polygon's series is re-fetched before the
// response returns.
func (h *TimelineHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req UpdateTimelineRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	baseChanged, err := h.store.SetSelection(types.TimelineSelection{
		Mode:     req.Mode,
		Offset:   req.Offset,
		Range:    req.Range,
		BaseDate: req.BaseDate,
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if baseChanged {
		h.logger.InfoContext(r.Context(), "base date changed, refreshing all series",
			"base_date", req.BaseDate.String())
		h.overlay.RefreshAll(r.Context())
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: timelineResponse(h.store.Selection())})
}

func timelineResponse(sel types.TimelineSelection) TimelineResponse {
	w := timeline.NewWindow(sel.BaseDate)
	return TimelineResponse{
		Selection:   sel,
		WindowStart: w.StartDate(),
		WindowEnd:   w.EndDate(),
		WindowHours: types.WindowHours,
	}
}
