package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/ids"
	"github.com/Togather-Foundation/booking/internal/storage"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// queryErrors collects per-parameter messages while a filter is parsed.
type queryErrors map[string]string

func (q queryErrors) err() error {
	if len(q) == 0 {
		return nil
	}
	return &booking.ValidationError{Fields: q}
}

func (q queryErrors) uuid(values url.Values, key string) string {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return ""
	}
	id, err := ids.ParseUUID(raw)
	if err != nil {
		q[key] = "must be a UUID"
		return ""
	}
	return id
}

func (q queryErrors) page(values url.Values) (limit, offset int) {
	limit = defaultPageSize
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageSize {
			q["limit"] = "must be between 1 and " + strconv.Itoa(maxPageSize)
		} else {
			limit = n
		}
	}
	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			q["offset"] = "must be a non-negative integer"
		} else {
			offset = n
		}
	}
	return limit, offset
}

func (q queryErrors) oneOf(values url.Values, key string, allowed ...string) string {
	raw := strings.ToLower(strings.TrimSpace(values.Get(key)))
	if raw == "" {
		return ""
	}
	for _, a := range allowed {
		if raw == a {
			return raw
		}
	}
	q[key] = "must be one of: " + strings.Join(allowed, ", ")
	return ""
}

// parseDJFilter reads q, genre, status, sort (name|price|status|created,
// "-" prefix for descending), limit and offset.
func parseDJFilter(values url.Values) (storage.DJFilter, error) {
	q := queryErrors{}
	filter := storage.DJFilter{
		Search: strings.TrimSpace(values.Get("q")),
		Genre:  strings.TrimSpace(values.Get("genre")),
		Status: booking.AvailabilityStatus(q.oneOf(values, "status",
			string(booking.AvailabilityAvailable), string(booking.AvailabilityBusy), string(booking.AvailabilityUnavailable))),
		Sort: storage.SortName,
	}
	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		key, desc := strings.TrimPrefix(raw, "-"), strings.HasPrefix(raw, "-")
		switch key {
		case storage.SortName, storage.SortPrice, storage.SortStatus, storage.SortCreated:
			filter.Sort, filter.Desc = key, desc
		default:
			q["sort"] = "must be one of: name, price, status, created"
		}
	}
	filter.Limit, filter.Offset = q.page(values)
	return filter, q.err()
}

func parseContractFilter(values url.Values) (storage.ContractFilter, error) {
	q := queryErrors{}
	filter := storage.ContractFilter{
		EventID:    q.uuid(values, "event_id"),
		DJID:       q.uuid(values, "dj_id"),
		ProducerID: q.uuid(values, "producer_id"),
		Status: booking.ContractStatus(q.oneOf(values, "status",
			string(booking.ContractPending), string(booking.ContractSigned),
			string(booking.ContractCompleted), string(booking.ContractCancelled))),
	}
	return filter, q.err()
}

func parseProducerFilter(values url.Values) (storage.ProducerFilter, error) {
	q := queryErrors{}
	filter := storage.ProducerFilter{
		Search: strings.TrimSpace(values.Get("q")),
		Status: booking.ProducerStatus(q.oneOf(values, "status",
			string(booking.ProducerActive), string(booking.ProducerInactive))),
	}
	return filter, q.err()
}

func parseMediaFilter(values url.Values) (storage.MediaFilter, error) {
	q := queryErrors{}
	filter := storage.MediaFilter{
		DJID:    q.uuid(values, "dj_id"),
		EventID: q.uuid(values, "event_id"),
		Category: booking.MediaCategory(q.oneOf(values, "category",
			string(booking.CategoryPresskit), string(booking.CategoryLogo), string(booking.CategoryBackdrop),
			string(booking.CategoryPerformance), string(booking.CategoryOther))),
	}
	return filter, q.err()
}

func parseProfileFilter(values url.Values) (storage.ProfileFilter, error) {
	q := queryErrors{}
	filter := storage.ProfileFilter{
		Role: q.oneOf(values, "role", string(auth.RoleAdmin), string(auth.RoleProdutor), string(auth.RoleDJ)),
	}
	filter.Limit, filter.Offset = q.page(values)
	return filter, q.err()
}
