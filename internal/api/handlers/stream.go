package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Togather-Foundation/booking/internal/api/middleware"
	"github.com/Togather-Foundation/booking/internal/api/problem"
	"github.com/Togather-Foundation/booking/internal/metrics"
	"github.com/Togather-Foundation/booking/internal/realtime"
)

// StreamHandler serves the change feed as Server-Sent Events. Each change
// passes realtime.Visible for the caller before it is written; the ULID of
// the change is the SSE id.
type StreamHandler struct {
	Hub       *realtime.Hub
	Heartbeat time.Duration
	Env       string
}

func NewStreamHandler(hub *realtime.Hub, heartbeat time.Duration, env string) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &StreamHandler{Hub: hub, Heartbeat: heartbeat, Env: env}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Hub == nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Change feed disabled", nil, h.Env)
		return
	}
	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		problem.FromError(w, r, err, h.Env)
		return
	}

	user := currentUser(r)
	sub := h.Hub.Subscribe(func(c realtime.Change) bool { return realtime.Visible(user, c) })
	metrics.RealtimeSubscribers.Set(float64(h.Hub.Subscribers()))
	defer func() {
		h.Hub.Unsubscribe(sub)
		metrics.RealtimeSubscribers.Set(float64(h.Hub.Subscribers()))
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, "retry: 5000\n: connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		return
	}

	logger := middleware.LoggerFromContext(r.Context())
	logger.Debug().Str("user_id", user.ID).Msg("stream opened")
	defer logger.Debug().Str("user_id", user.ID).Msg("stream closed")

	heartbeat := time.NewTicker(h.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case change, ok := <-sub.C():
			if !ok {
				return
			}
			if err := writeEvent(w, change); err != nil {
				logger.Warn().Err(err).Msg("stream write failed")
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, c realtime.Change) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: change\ndata: %s\n\n", c.ID, data)
	return err
}
