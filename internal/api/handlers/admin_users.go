package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/booking/internal/api/problem"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

type AdminUsersHandler struct {
	Users UserService
	Env   string
}

func NewAdminUsersHandler(users UserService, env string) *AdminUsersHandler {
	return &AdminUsersHandler{Users: users, Env: env}
}

// List serves GET /admin/users?role=&limit=&offset=.
func (h *AdminUsersHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProfileFilter(r.URL.Query())
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	profiles, err := h.Users.List(r.Context(), currentUser(r), filter)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newList(profiles))
}

func (h *AdminUsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	var update booking.RoleUpdate
	if err := decodeJSON(r, &update); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	profile, err := h.Users.UpdateRole(r.Context(), currentUser(r), id, update)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
