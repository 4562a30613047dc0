package producers

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/metrics"
	"github.com/Togather-Foundation/booking/internal/storage"
)

// accessCodeAttempts bounds retries when a generated code collides.
const accessCodeAttempts = 5

type Service struct {
	repo     storage.Repository
	enqueuer booking.Enqueuer
	generate func() (string, error)
	logger   zerolog.Logger
}

func NewService(repo storage.Repository, enqueuer booking.Enqueuer, logger zerolog.Logger) *Service {
	if enqueuer == nil {
		enqueuer = booking.NopEnqueuer{}
	}
	return &Service{
		repo:     repo,
		enqueuer: enqueuer,
		generate: auth.GenerateAccessCode,
		logger:   logger.With().Str("component", "producers").Logger(),
	}
}

// List returns every producer to admins. A produtor gets its own producer
// only, without the access code.
func (s *Service) List(ctx context.Context, user access.User, filter storage.ProducerFilter) ([]booking.Producer, error) {
	if access.PermissionsFor(user).CanManageProducers {
		return s.repo.Producers().List(ctx, filter)
	}
	if user.Role != auth.RoleProdutor || user.ProducerID == "" {
		return []booking.Producer{}, nil
	}
	own, err := s.repo.Producers().Get(ctx, user.ProducerID)
	if errors.Is(err, storage.ErrNotFound) {
		return []booking.Producer{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []booking.Producer{redact(*own)}, nil
}

func (s *Service) Get(ctx context.Context, user access.User, id string) (*booking.Producer, error) {
	admin := access.PermissionsFor(user).CanManageProducers
	if !admin && (user.Role != auth.RoleProdutor || user.ProducerID == "" || user.ProducerID != id) {
		return nil, booking.ErrForbidden
	}
	producer, err := s.repo.Producers().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin {
		redacted := redact(*producer)
		return &redacted, nil
	}
	return producer, nil
}

func (s *Service) Create(ctx context.Context, user access.User, input booking.ProducerInput) (*booking.Producer, error) {
	if !access.PermissionsFor(user).CanManageProducers {
		return nil, booking.ErrForbidden
	}
	input.Normalize()
	if err := booking.Validate(input); err != nil {
		return nil, err
	}
	producer, err := s.repo.Producers().Create(ctx, input.Producer())
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("producer_id", producer.ID).Str("actor", user.Email).Msg("producer created")
	return producer, nil
}

func (s *Service) Update(ctx context.Context, user access.User, id string, patch booking.ProducerPatch) (*booking.Producer, error) {
	if !access.PermissionsFor(user).CanManageProducers {
		return nil, booking.ErrForbidden
	}
	if err := booking.Validate(patch); err != nil {
		return nil, err
	}
	var updated *booking.Producer
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		producer, err := tx.Producers().Get(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(producer)
		updated, err = tx.Producers().Update(ctx, *producer)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete fails with ErrConflict while contracts reference the producer.
func (s *Service) Delete(ctx context.Context, user access.User, id string) error {
	if !access.PermissionsFor(user).CanManageProducers {
		return booking.ErrForbidden
	}
	if err := s.repo.Producers().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("producer_id", id).Str("actor", user.Email).Msg("producer deleted")
	return nil
}

// GenerateAccessCode stores a fresh code on the producer and schedules the
// email that delivers it. The code is returned so the caller can show it.
func (s *Service) GenerateAccessCode(ctx context.Context, user access.User, id string) (string, error) {
	if !access.PermissionsFor(user).CanManageProducers {
		return "", booking.ErrForbidden
	}
	code, err := s.assignCode(ctx, id)
	if err != nil {
		return "", err
	}
	s.logger.Info().Str("producer_id", id).Str("actor", user.Email).Msg("access code generated")
	if err := s.enqueuer.EnqueueAccessCodeEmail(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("producer_id", id).Msg("enqueue access code email failed")
	}
	return code, nil
}

// AssignAccessCode is GenerateAccessCode without the actor check or the
// email, for operator tooling.
func (s *Service) AssignAccessCode(ctx context.Context, id string) (string, error) {
	return s.assignCode(ctx, id)
}

func (s *Service) assignCode(ctx context.Context, id string) (string, error) {
	for attempt := 0; attempt < accessCodeAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			return "", fmt.Errorf("generate access code: %w", err)
		}
		err = s.repo.Producers().SetAccessCode(ctx, id, code)
		if errors.Is(err, storage.ErrConflict) {
			continue
		}
		if err != nil {
			return "", err
		}
		metrics.AccessCodesIssued.Inc()
		return code, nil
	}
	return "", fmt.Errorf("%w: no unique access code after %d attempts", booking.ErrConflict, accessCodeAttempts)
}

func redact(p booking.Producer) booking.Producer {
	p.AccessCode = nil
	return p
}
