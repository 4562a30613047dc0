package events

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/legacy"
	"github.com/Togather-Foundation/booking/internal/storage"
)

// Service manages events. Admins may book under any producer; a produtor
// books, edits and cancels only under its own producer.
type Service struct {
	repo     storage.Repository
	enqueuer booking.Enqueuer
	loc      *time.Location
	logger   zerolog.Logger
}

// NewService wires the service. loc interprets event dates written without
// a zone and defaults to legacy.DefaultLocation.
func NewService(repo storage.Repository, enqueuer booking.Enqueuer, loc *time.Location, logger zerolog.Logger) *Service {
	if enqueuer == nil {
		enqueuer = booking.NopEnqueuer{}
	}
	if loc == nil {
		loc = legacy.DefaultLocation
	}
	return &Service{
		repo:     repo,
		enqueuer: enqueuer,
		loc:      loc,
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

func (s *Service) List(ctx context.Context, user access.User, filter storage.EventFilter) ([]booking.Event, error) {
	if !user.IsAdmin() {
		if user.Role != auth.RoleProdutor || user.ProducerID == "" {
			return []booking.Event{}, nil
		}
		filter.ProducerID = user.ProducerID
	}
	events, err := s.repo.Events().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return access.FilterEvents(events, user), nil
}

func (s *Service) Get(ctx context.Context, user access.User, id string) (*booking.Event, error) {
	event, err := s.repo.Events().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(user, *event) {
		return nil, booking.ErrForbidden
	}
	return event, nil
}

func (s *Service) Create(ctx context.Context, user access.User, input booking.EventInput) (*booking.Event, error) {
	input.Normalize()
	switch {
	case user.IsAdmin():
	case user.Role == auth.RoleProdutor && user.ProducerID != "":
		input.ProducerID = user.ProducerID
	default:
		return nil, booking.ErrForbidden
	}
	if err := booking.Validate(input); err != nil {
		return nil, err
	}
	when, err := s.parseDate(input.EventDate)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Events().Create(ctx, booking.Event{
		Title:              input.Title,
		Description:        input.Description,
		EventDate:          when,
		Venue:              input.Venue,
		City:               input.City,
		State:              input.State,
		DJID:               input.DJID,
		ProducerID:         input.ProducerID,
		Status:             input.Status,
		BookingFee:         input.BookingFee,
		TicketPrice:        input.TicketPrice,
		ExpectedAttendance: input.ExpectedAttendance,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("event_id", event.ID).Str("actor", user.Email).Msg("event created")
	s.recalculate(ctx, event.DJID)
	return event, nil
}

// Update applies patch. A produtor cannot move an event to another producer.
func (s *Service) Update(ctx context.Context, user access.User, id string, patch booking.EventPatch) (*booking.Event, error) {
	if err := booking.Validate(patch); err != nil {
		return nil, err
	}
	var when *time.Time
	if patch.EventDate != nil {
		parsed, err := s.parseDate(*patch.EventDate)
		if err != nil {
			return nil, err
		}
		when = &parsed
	}

	var before, after *booking.Event
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		event, err := tx.Events().Get(ctx, id)
		if err != nil {
			return err
		}
		if !canManage(user, *event) {
			return booking.ErrForbidden
		}
		previous := *event
		before = &previous

		if !user.IsAdmin() {
			patch.ProducerID = nil
		}
		patch.Apply(event)
		if when != nil {
			event.EventDate = *when
		}
		after, err = tx.Events().Update(ctx, *event)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recalculate(ctx, before.DJID, after.DJID)
	return after, nil
}

func (s *Service) Delete(ctx context.Context, user access.User, id string) error {
	var djID string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		event, err := tx.Events().Get(ctx, id)
		if err != nil {
			return err
		}
		if !canManage(user, *event) {
			return booking.ErrForbidden
		}
		djID = event.DJID
		return tx.Events().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("event_id", id).Str("actor", user.Email).Msg("event deleted")
	s.recalculate(ctx, djID)
	return nil
}

func (s *Service) parseDate(value string) (time.Time, error) {
	when, err := legacy.ParseDate(value, s.loc)
	if err != nil {
		if errors.Is(err, legacy.ErrUnparseableDate) {
			return time.Time{}, booking.FieldError("event_date", "must be a recognisable date")
		}
		return time.Time{}, err
	}
	return when, nil
}

// recalculate enqueues financial refreshes for the distinct non-empty DJ ids.
// The mutation is already stored, so failures are only logged.
func (s *Service) recalculate(ctx context.Context, djIDs ...string) {
	ids := make([]string, 0, len(djIDs))
	seen := make(map[string]struct{}, len(djIDs))
	for _, id := range djIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return
	}
	if err := s.enqueuer.EnqueueFinancials(ctx, ids...); err != nil {
		s.logger.Warn().Err(err).Strs("dj_ids", ids).Msg("enqueue financial recalculation failed")
	}
}

func canManage(user access.User, event booking.Event) bool {
	if user.IsAdmin() {
		return true
	}
	return user.Role == auth.RoleProdutor && user.ProducerID != "" && event.ProducerID == user.ProducerID
}
