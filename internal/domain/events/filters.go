package events

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/ids"
	"github.com/Togather-Foundation/booking/internal/storage"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// ParseFilters reads list query parameters: dj_id, producer_id, status,
// from, to (YYYY-MM-DD or RFC 3339), q, limit and offset.
func ParseFilters(values url.Values, loc *time.Location) (storage.EventFilter, error) {
	filter := storage.EventFilter{Limit: defaultLimit}
	fields := map[string]string{}

	filter.DJID = strings.TrimSpace(values.Get("dj_id"))
	if filter.DJID != "" && !ids.IsUUID(filter.DJID) {
		fields["dj_id"] = "must be a UUID"
	}
	filter.ProducerID = strings.TrimSpace(values.Get("producer_id"))
	if filter.ProducerID != "" && !ids.IsUUID(filter.ProducerID) {
		fields["producer_id"] = "must be a UUID"
	}

	if raw := strings.TrimSpace(values.Get("status")); raw != "" {
		status := booking.EventStatus(strings.ToLower(raw))
		switch status {
		case booking.EventPending, booking.EventConfirmed, booking.EventCompleted, booking.EventCancelled:
			filter.Status = status
		default:
			fields["status"] = "must be one of: pending, confirmed, completed, cancelled"
		}
	}

	from, ok := parseBound(values.Get("from"), loc)
	if !ok {
		fields["from"] = "must be YYYY-MM-DD or RFC 3339"
	}
	to, ok := parseBound(values.Get("to"), loc)
	if !ok {
		fields["to"] = "must be YYYY-MM-DD or RFC 3339"
	}
	if from != nil && to != nil && to.Before(*from) {
		fields["to"] = "must be on or after from"
	}
	filter.From, filter.To = from, to

	filter.Search = strings.TrimSpace(values.Get("q"))

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			fields["limit"] = "must be between 1 and " + strconv.Itoa(maxLimit)
		} else {
			filter.Limit = limit
		}
	}
	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			fields["offset"] = "must be a non-negative integer"
		} else {
			filter.Offset = offset
		}
	}

	if len(fields) > 0 {
		return filter, &booking.ValidationError{Fields: fields}
	}
	return filter, nil
}

// parseBound returns nil for a blank value. A bare date means midnight in loc.
func parseBound(raw string, loc *time.Location) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return &t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	return nil, false
}
