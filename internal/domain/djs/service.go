// Package djs serves the DJ roster. Admins manage it; a produtor sees only
// the DJs booked in its own events.
package djs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage"
)

// topGenreCount is how many genres the roster summary highlights.
const topGenreCount = 3

type Service struct {
	repo   storage.Repository
	logger zerolog.Logger
}

func NewService(repo storage.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "djs").Logger(),
	}
}

// Stats summarises the visible roster.
type Stats struct {
	Total     int      `json:"total"`
	Available int      `json:"available"`
	Busy      int      `json:"busy"`
	AvgPrice  float64  `json:"avg_price"`
	Genres    []string `json:"genres"`
	TopGenres []string `json:"top_genres"`
}

// Calendar is one DJ's schedule around a month.
type Calendar struct {
	DJID     string          `json:"dj_id"`
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Events   []booking.Event `json:"events"`
	Upcoming []booking.Event `json:"upcoming"`
	Today    []booking.Event `json:"today"`
}

// List returns the DJs user may see. For a produtor the page window is
// applied after access filtering so pages stay full.
func (s *Service) List(ctx context.Context, user access.User, filter storage.DJFilter) ([]booking.DJ, error) {
	if user.IsAdmin() {
		return s.repo.DJs().List(ctx, filter)
	}
	if !access.PermissionsFor(user).Known || user.ProducerID == "" {
		return []booking.DJ{}, nil
	}

	limit, offset := filter.Limit, filter.Offset
	filter.Limit, filter.Offset = 0, 0
	djs, err := s.repo.DJs().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	events, err := s.producerEvents(ctx, user)
	if err != nil {
		return nil, err
	}
	return page(access.FilterDJs(djs, events, user), limit, offset), nil
}

func (s *Service) Get(ctx context.Context, user access.User, id string) (*booking.DJ, error) {
	if err := s.authorize(ctx, user, id); err != nil {
		return nil, err
	}
	return s.repo.DJs().Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, user access.User, input booking.DJInput) (*booking.DJ, error) {
	if !access.PermissionsFor(user).CanCreateDJs {
		return nil, booking.ErrForbidden
	}
	input.Normalize()
	if err := booking.Validate(input); err != nil {
		return nil, err
	}
	dj, err := s.repo.DJs().Create(ctx, input.DJ())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("dj_id", dj.ID).Str("actor", user.Email).Msg("dj created")
	return dj, nil
}

func (s *Service) Update(ctx context.Context, user access.User, id string, patch booking.DJPatch) (*booking.DJ, error) {
	if !access.PermissionsFor(user).CanEditDJs {
		return nil, booking.ErrForbidden
	}
	if err := booking.Validate(patch); err != nil {
		return nil, err
	}
	var updated *booking.DJ
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		dj, err := tx.DJs().Get(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(dj)
		updated, err = tx.DJs().Update(ctx, *dj)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, user access.User, id string) error {
	if !access.PermissionsFor(user).CanEditDJs {
		return booking.ErrForbidden
	}
	if err := s.repo.DJs().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("dj_id", id).Str("actor", user.Email).Msg("dj deactivated")
	return nil
}

// Stats counts over every visible DJ, ignoring search and paging. Genres
// are sorted case-insensitively and the first few are the top genres.
func (s *Service) Stats(ctx context.Context, user access.User) (Stats, error) {
	djs, err := s.List(ctx, user, storage.DJFilter{})
	if err != nil {
		return Stats{}, err
	}
	return Summarize(djs), nil
}

func Summarize(djs []booking.DJ) Stats {
	stats := Stats{Total: len(djs), Genres: []string{}, TopGenres: []string{}}
	var priceSum float64
	seen := make(map[string]struct{})
	for _, dj := range djs {
		switch dj.AvailabilityStatus {
		case booking.AvailabilityAvailable:
			stats.Available++
		case booking.AvailabilityBusy:
			stats.Busy++
		}
		if dj.BookingPrice != nil {
			priceSum += *dj.BookingPrice
		}
		for _, genre := range dj.Genres {
			key := strings.ToLower(genre)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			stats.Genres = append(stats.Genres, genre)
		}
	}
	if len(djs) > 0 {
		stats.AvgPrice = priceSum / float64(len(djs))
	}
	sort.SliceStable(stats.Genres, func(i, j int) bool {
		return strings.ToLower(stats.Genres[i]) < strings.ToLower(stats.Genres[j])
	})
	stats.TopGenres = stats.Genres[:min(topGenreCount, len(stats.Genres))]
	return stats
}

// Calendar returns the DJ's events in the given month, every event after
// now, and the events falling on now's calendar day in loc.
func (s *Service) Calendar(ctx context.Context, user access.User, djID string, year int, month time.Month, now time.Time, loc *time.Location) (Calendar, error) {
	if month < time.January || month > time.December {
		return Calendar{}, booking.FieldError("month", "must be between 1 and 12")
	}
	if err := s.authorize(ctx, user, djID); err != nil {
		return Calendar{}, err
	}
	if _, err := s.repo.DJs().Get(ctx, djID); err != nil {
		return Calendar{}, err
	}

	filter := storage.EventFilter{DJID: djID}
	if !user.IsAdmin() {
		filter.ProducerID = user.ProducerID
	}
	events, err := s.repo.Events().List(ctx, filter)
	if err != nil {
		return Calendar{}, fmt.Errorf("load dj events: %w", err)
	}
	return BuildCalendar(djID, events, year, month, now, loc), nil
}

func BuildCalendar(djID string, events []booking.Event, year int, month time.Month, now time.Time, loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	cal := Calendar{
		DJID:     djID,
		Year:     year,
		Month:    int(month),
		Events:   []booking.Event{},
		Upcoming: []booking.Event{},
		Today:    []booking.Event{},
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)
	today := now.In(loc)
	for _, e := range events {
		when := e.EventDate.In(loc)
		if !when.Before(start) && when.Before(end) {
			cal.Events = append(cal.Events, e)
		}
		if e.EventDate.After(now) {
			cal.Upcoming = append(cal.Upcoming, e)
		}
		if sameDay(when, today) {
			cal.Today = append(cal.Today, e)
		}
	}
	return cal
}

// authorize loads the produtor's events only when the role needs them.
func (s *Service) authorize(ctx context.Context, user access.User, djID string) error {
	if user.IsAdmin() {
		return nil
	}
	if user.ProducerID == "" {
		return booking.ErrForbidden
	}
	events, err := s.producerEvents(ctx, user)
	if err != nil {
		return err
	}
	if !access.CanAccessDJ(user, djID, events) {
		return booking.ErrForbidden
	}
	return nil
}

func (s *Service) producerEvents(ctx context.Context, user access.User) ([]booking.Event, error) {
	events, err := s.repo.Events().List(ctx, storage.EventFilter{ProducerID: user.ProducerID})
	if err != nil {
		return nil, fmt.Errorf("load producer events: %w", err)
	}
	return events, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
