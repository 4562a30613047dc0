package media

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage"
)

type Service struct {
	repo   storage.Repository
	logger zerolog.Logger
}

func NewService(repo storage.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "media").Logger(),
	}
}

// List returns media owned by DJs or events the user can reach.
func (s *Service) List(ctx context.Context, user access.User, filter storage.MediaFilter) ([]booking.Media, error) {
	if !user.IsAdmin() && (user.Role != auth.RoleProdutor || user.ProducerID == "") {
		return []booking.Media{}, nil
	}
	items, err := s.repo.Media().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return items, nil
	}
	events, err := s.repo.Events().List(ctx, storage.EventFilter{ProducerID: user.ProducerID})
	if err != nil {
		return nil, fmt.Errorf("load producer events: %w", err)
	}
	return access.FilterMedia(items, nil, events, user), nil
}

func (s *Service) Create(ctx context.Context, user access.User, input booking.MediaInput) (*booking.Media, error) {
	if !user.IsAdmin() {
		return nil, booking.ErrForbidden
	}
	input.Normalize()
	if err := booking.Validate(input); err != nil {
		return nil, err
	}
	item, err := s.repo.Media().Create(ctx, input.Media())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("media_id", item.ID).Str("category", string(item.Category)).Msg("media added")
	return item, nil
}

func (s *Service) Delete(ctx context.Context, user access.User, id string) error {
	if !user.IsAdmin() {
		return booking.ErrForbidden
	}
	return s.repo.Media().Delete(ctx, id)
}
