package core

import (
	"net/http"
	"time"
)

// healthResponse is the body returned by the health endpoint.
type healthResponse struct {
	Status      string         `json:"status"`
	Service     string         `json:"service"`
	Environment string         `json:"environment"`
	Time        time.Time      `json:"time"`
	Detail      map[string]any `json:"detail,omitempty"`
}

// HandleHealth reports liveness plus optional application detail (polygon and
// data source counts, snapshot state) supplied by the entry point.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		Service:     s.Config.Service,
		Environment: s.Config.Environment,
		Time:        time.Now().UTC(),
	}
	if s.HealthCheck != nil {
		resp.Detail = s.HealthCheck(r.Context())
	}
	JSON(w, r, http.StatusOK, resp)
}
