package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/booking/internal/api/problem"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

type MediaHandler struct {
	Service MediaService
	Env     string
}

func NewMediaHandler(service MediaService, env string) *MediaHandler {
	return &MediaHandler{Service: service, Env: env}
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMediaFilter(r.URL.Query())
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	items, err := h.Service.List(r.Context(), currentUser(r), filter)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, newList(items))
}

func (h *MediaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input booking.MediaInput
	if err := decodeJSON(r, &input); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	m, err := h.Service.Create(r.Context(), currentUser(r), input)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	if err := h.Service.Delete(r.Context(), currentUser(r), id); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
