package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/booking/internal/api/problem"
)

type DashboardHandler struct {
	Service DashboardService
	Env     string
}

func NewDashboardHandler(service DashboardService, env string) *DashboardHandler {
	return &DashboardHandler{Service: service, Env: env}
}

// Get returns the role-filtered landing view. Failed sources show up as
// warnings, never as an error status.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Load(r.Context(), currentUser(r))
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DashboardHandler) PlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Platform(r.Context(), currentUser(r))
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
