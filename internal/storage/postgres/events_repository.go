package postgres

import (
	"context"
	"fmt"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/legacy"
	"github.com/Togather-Foundation/booking/internal/storage"
)

var _ storage.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	conn
}

const eventColumns = `id, event_name, event_date, description, venue, address, state, fee, ticket_price,
       expected_attendees, dj_id, producer_id, status, payment_status, created_at, updated_at`

func scanEvent(row rowScanner) (legacy.EventRow, error) {
	var r legacy.EventRow
	err := row.Scan(
		&r.ID,
		&r.EventName,
		&r.EventDate,
		&r.Description,
		&r.Venue,
		&r.Address,
		&r.State,
		&r.Fee,
		&r.TicketPrice,
		&r.ExpectedAttendees,
		&r.DJID,
		&r.ProducerID,
		&r.Status,
		&r.PaymentStatus,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

// List returns events ordered by date. Cancelled matches every stored
// status that is not one of the other three.
func (r *EventRepository) List(ctx context.Context, filter storage.EventFilter) ([]booking.Event, error) {
	if (filter.DJID != "" && !validID(filter.DJID)) || (filter.ProducerID != "" && !validID(filter.ProducerID)) {
		return []booking.Event{}, nil
	}

	var status string
	if filter.Status != "" {
		status = legacy.EventStoredStatus(filter.Status)
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE ($1::uuid IS NULL OR dj_id = $1::uuid)
   AND ($2::uuid IS NULL OR producer_id = $2::uuid)
   AND ($3 = ''
        OR ($3 = '`+legacy.EventCancelado+`' AND status NOT IN ('`+legacy.EventPendente+`', '`+legacy.EventConfirmado+`', '`+legacy.EventConcluido+`'))
        OR status = $3)
   AND ($4::timestamptz IS NULL OR event_date >= $4::timestamptz)
   AND ($5::timestamptz IS NULL OR event_date < $5::timestamptz)
   AND ($6 = '' OR event_name ILIKE $6 OR venue ILIKE $6 OR address ILIKE $6)
 ORDER BY event_date ASC, id ASC
 LIMIT $7 OFFSET $8`,
		nullID(filter.DJID),
		nullID(filter.ProducerID),
		status,
		filter.From,
		filter.To,
		likePattern(filter.Search),
		limitArg(filter.Limit),
		max(filter.Offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]booking.Event, 0)
	for rows.Next() {
		row, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, legacy.EventFromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*booking.Event, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	row, err := scanEvent(r.queryer().QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get event", err)
	}
	event := legacy.EventFromRow(row)
	return &event, nil
}

func (r *EventRepository) Create(ctx context.Context, event booking.Event) (*booking.Event, error) {
	row := legacy.EventToRow(event)
	created, err := scanEvent(r.queryer().QueryRow(ctx, `
INSERT INTO events (id, event_name, event_date, description, venue, address, state, fee, ticket_price,
                    expected_attendees, dj_id, producer_id, status, created_at)
VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9,
        $10, $11, $12, $13, COALESCE($14, now()))
RETURNING `+eventColumns,
		nullID(row.ID),
		row.EventName,
		row.EventDate,
		row.Description,
		row.Venue,
		row.Address,
		row.State,
		row.Fee,
		row.TicketPrice,
		row.ExpectedAttendees,
		row.DJID,
		row.ProducerID,
		row.Status,
		nullTime(event.CreatedAt),
	))
	if err != nil {
		return nil, mapError("create event", err)
	}
	out := legacy.EventFromRow(created)
	return &out, nil
}

func (r *EventRepository) Update(ctx context.Context, event booking.Event) (*booking.Event, error) {
	if !validID(event.ID) {
		return nil, storage.ErrNotFound
	}
	row := legacy.EventToRow(event)
	updated, err := scanEvent(r.queryer().QueryRow(ctx, `
UPDATE events
   SET event_name = $2, event_date = $3, description = $4, venue = $5, address = $6, state = $7,
       fee = $8, ticket_price = $9, expected_attendees = $10, dj_id = $11, producer_id = $12, status = $13
 WHERE id = $1
RETURNING `+eventColumns,
		row.ID,
		row.EventName,
		row.EventDate,
		row.Description,
		row.Venue,
		row.Address,
		row.State,
		row.Fee,
		row.TicketPrice,
		row.ExpectedAttendees,
		row.DJID,
		row.ProducerID,
		row.Status,
	))
	if err != nil {
		return nil, mapError("update event", err)
	}
	out := legacy.EventFromRow(updated)
	return &out, nil
}

// Delete removes the event together with its contracts and media.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return storage.ErrNotFound
	}
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return mapError("delete event", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
