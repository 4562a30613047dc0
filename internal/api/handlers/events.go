package handlers

import (
	"net/http"
	"time"

	"github.com/Togather-Foundation/booking/internal/api/middleware"
	"github.com/Togather-Foundation/booking/internal/api/problem"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/events"
	"github.com/Togather-Foundation/booking/internal/jsonld"
	"github.com/Togather-Foundation/booking/internal/storage"
)

// EventsHandler serves bookings. Reads honour Accept: application/ld+json
// and return schema.org MusicEvents.
type EventsHandler struct {
	Service    EventService
	DJs        DJService
	Producers  ProducerService
	Serializer *jsonld.Serializer
	Location   *time.Location
	BaseURL    string
	Env        string
}

func NewEventsHandler(service EventService, djs DJService, producers ProducerService, serializer *jsonld.Serializer, loc *time.Location, baseURL, env string) *EventsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &EventsHandler{
		Service:    service,
		DJs:        djs,
		Producers:  producers,
		Serializer: serializer,
		Location:   loc,
		BaseURL:    baseURL,
		Env:        env,
	}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := events.ParseFilters(r.URL.Query(), h.Location)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	user := currentUser(r)
	items, err := h.Service.List(r.Context(), user, filter)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}

	if middleware.WantsJSONLD(r) && h.Serializer != nil {
		performers := map[string]booking.DJ{}
		if h.DJs != nil {
			// Performer details are decoration; a failed lookup still renders the events.
			if list, err := h.DJs.List(r.Context(), user, storage.DJFilter{}); err == nil {
				for _, dj := range list {
					performers[dj.ID] = dj
				}
			}
		}
		doc, err := h.Serializer.Events(h.BaseURL, items, performers)
		if err != nil {
			problem.FromError(w, r, err, h.Env)
			return
		}
		writeTyped(w, http.StatusOK, doc, middleware.ContentJSONLD)
		return
	}
	writeJSON(w, http.StatusOK, newList(items))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	user := currentUser(r)
	event, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}

	if middleware.WantsJSONLD(r) && h.Serializer != nil {
		var (
			dj       *booking.DJ
			producer *booking.Producer
		)
		if h.DJs != nil && event.DJID != "" {
			dj, _ = h.DJs.Get(r.Context(), user, event.DJID)
		}
		if h.Producers != nil && event.ProducerID != "" {
			producer, _ = h.Producers.Get(r.Context(), user, event.ProducerID)
		}
		doc, err := h.Serializer.Event(h.BaseURL, *event, dj, producer)
		if err != nil {
			problem.FromError(w, r, err, h.Env)
			return
		}
		writeTyped(w, http.StatusOK, doc, middleware.ContentJSONLD)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input booking.EventInput
	if err := decodeJSON(r, &input); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	event, err := h.Service.Create(r.Context(), currentUser(r), input)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	w.Header().Set("Location", "/api/v1/events/"+event.ID)
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	var patch booking.EventPatch
	if err := decodeJSON(r, &patch); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	event, err := h.Service.Update(r.Context(), currentUser(r), id, patch)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
