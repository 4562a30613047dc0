package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Togather-Foundation/booking/internal/api/problem"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

type DJsHandler struct {
	Service  DJService
	Earnings FinancialsService
	Location *time.Location
	Env      string
	now      func() time.Time
}

func NewDJsHandler(service DJService, fin FinancialsService, loc *time.Location, env string) *DJsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DJsHandler{Service: service, Earnings: fin, Location: loc, Env: env, now: time.Now}
}

func (h *DJsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDJFilter(r.URL.Query())
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

func (h *DJsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	dj, err := h.Service.Get(r.Context(), currentUser(r), id)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, dj)
}

func (h *DJsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input booking.DJInput
	if err := decodeJSON(r, &input); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	dj, err := h.Service.Create(r.Context(), currentUser(r), input)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	w.Header().Set("Location", "/api/v1/djs/"+dj.ID)
	writeJSON(w, http.StatusCreated, dj)
}

func (h *DJsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	var patch booking.DJPatch
	if err := decodeJSON(r, &patch); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	dj, err := h.Service.Update(r.Context(), currentUser(r), id, patch)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, dj)
}

func (h *DJsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *DJsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context(), currentUser(r))
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Calendar serves ?year=YYYY&month=M, defaulting to the current month in
// the agency's time zone.
func (h *DJsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	now := h.now().In(h.Location)
	year, month := now.Year(), now.Month()
	fields := queryErrors{}
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		if n, err := strconv.Atoi(raw); err != nil || n < 1970 || n > 9999 {
			fields["year"] = "must be a four-digit year"
		} else {
			year = n
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		if n, err := strconv.Atoi(raw); err != nil || n < 1 || n > 12 {
			fields["month"] = "must be between 1 and 12"
		} else {
			month = time.Month(n)
		}
	}
	if err := fields.err(); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}

	cal, err := h.Service.Calendar(r.Context(), currentUser(r), id, year, month, now, h.Location)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (h *DJsHandler) Financials(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	summary, err := h.Earnings.Summary(r.Context(), currentUser(r), id)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
