package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/booking/internal/api/problem"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

type ProducersHandler struct {
	Service ProducerService
	Env     string
}

func NewProducersHandler(service ProducerService, env string) *ProducersHandler {
	return &ProducersHandler{Service: service, Env: env}
}

func (h *ProducersHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProducerFilter(r.URL.Query())
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

func (h *ProducersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	p, err := h.Service.Get(r.Context(), currentUser(r), id)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProducersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input booking.ProducerInput
	if err := decodeJSON(r, &input); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	p, err := h.Service.Create(r.Context(), currentUser(r), input)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	w.Header().Set("Location", "/api/v1/producers/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProducersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	var patch booking.ProducerPatch
	if err := decodeJSON(r, &patch); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	p, err := h.Service.Update(r.Context(), currentUser(r), id, patch)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProducersHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

type accessCodeResponse struct {
	ProducerID string `json:"producer_id"`
	AccessCode string `json:"access_code"`
}

// AccessCode rotates the producer's sign-up code; the email goes out
// through the job queue.
func (h *ProducersHandler) AccessCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	code, err := h.Service.GenerateAccessCode(r.Context(), currentUser(r), id)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, accessCodeResponse{ProducerID: id, AccessCode: code})
}
