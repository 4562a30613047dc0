package handlers

import (
	"net/http"

	"github.com/Togather-Foundation/booking/internal/api/problem"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/contracts"
)

type ContractsHandler struct {
	Service ContractService
	Env     string
}

func NewContractsHandler(service ContractService, env string) *ContractsHandler {
	return &ContractsHandler{Service: service, Env: env}
}

func (h *ContractsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseContractFilter(r.URL.Query())
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

func (h *ContractsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	c, err := h.Service.Get(r.Context(), currentUser(r), id)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContractsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input booking.ContractInput
	if err := decodeJSON(r, &input); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	c, err := h.Service.Create(r.Context(), currentUser(r), input)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	w.Header().Set("Location", "/api/v1/contracts/"+c.ID)
	writeJSON(w, http.StatusCreated, c)
}

func (h *ContractsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	var patch booking.ContractPatch
	if err := decodeJSON(r, &patch); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	c, err := h.Service.Update(r.Context(), currentUser(r), id, patch)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type signRequest struct {
	Side string `json:"side"`
}

// Sign marks one side of the contract. Body: {"side": "producer"|"dj"}.
func (h *ContractsHandler) Sign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	var req signRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	side, err := contracts.ParseSide(req.Side)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	c, err := h.Service.Sign(r.Context(), currentUser(r), id, side)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
