package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage"
)

// Side names a signature on a contract.
type Side string

const (
	SideProducer Side = "producer"
	SideDJ       Side = "dj"
)

// ParseSide accepts "producer", "produtor" and "dj" in any case.
func ParseSide(value string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "producer", "produtor":
		return SideProducer, nil
	case "dj":
		return SideDJ, nil
	default:
		return "", booking.FieldError("side", "must be one of: producer, dj")
	}
}

type Service struct {
	repo     storage.Repository
	enqueuer booking.Enqueuer
	now      func() time.Time
	logger   zerolog.Logger
}

func NewService(repo storage.Repository, enqueuer booking.Enqueuer, logger zerolog.Logger) *Service {
	if enqueuer == nil {
		enqueuer = booking.NopEnqueuer{}
	}
	return &Service{
		repo:     repo,
		enqueuer: enqueuer,
		now:      time.Now,
		logger:   logger.With().Str("component", "contracts").Logger(),
	}
}

func (s *Service) List(ctx context.Context, user access.User, filter storage.ContractFilter) ([]booking.Contract, error) {
	if !user.IsAdmin() {
		if !isScopedProdutor(user) {
			return []booking.Contract{}, nil
		}
		filter.ProducerID = user.ProducerID
	}
	contracts, err := s.repo.Contracts().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return access.FilterContracts(contracts, user), nil
}

func (s *Service) Get(ctx context.Context, user access.User, id string) (*booking.Contract, error) {
	contract, err := s.repo.Contracts().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsContract(user, *contract) {
		return nil, booking.ErrForbidden
	}
	return contract, nil
}

// Create books a contract for an event. The DJ and producer default to the
// event's.
func (s *Service) Create(ctx context.Context, user access.User, input booking.ContractInput) (*booking.Contract, error) {
	if !user.IsAdmin() {
		return nil, booking.ErrForbidden
	}
	input.Normalize()
	if err := booking.Validate(input); err != nil {
		return nil, err
	}

	var created *booking.Contract
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		event, err := tx.Events().Get(ctx, input.EventID)
		if errors.Is(err, storage.ErrNotFound) {
			return booking.FieldError("event_id", "does not exist")
		}
		if err != nil {
			return err
		}

		contract := input.Contract()
		if contract.DJID == "" {
			contract.DJID = event.DJID
		}
		if contract.ProducerID == "" {
			contract.ProducerID = event.ProducerID
		}
		fields := map[string]string{}
		if contract.DJID == "" {
			fields["dj_id"] = "is required when the event has no DJ"
		}
		if contract.ProducerID == "" {
			fields["producer_id"] = "is required when the event has no producer"
		}
		if len(fields) > 0 {
			return &booking.ValidationError{Fields: fields}
		}
		if contract.Status == booking.ContractSigned {
			s.markSigned(&contract, SideProducer)
			s.markSigned(&contract, SideDJ)
		}

		created, err = tx.Contracts().Create(ctx, contract)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("contract_id", created.ID).Str("event_id", created.EventID).Str("actor", user.Email).Msg("contract created")
	s.recalculate(ctx, created.DJID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, user access.User, id string, patch booking.ContractPatch) (*booking.Contract, error) {
	if !user.IsAdmin() {
		return nil, booking.ErrForbidden
	}
	if err := booking.Validate(patch); err != nil {
		return nil, err
	}
	var updated *booking.Contract
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		contract, err := tx.Contracts().Get(ctx, id)
		if err != nil {
			return err
		}
		wasSigned := contract.Status == booking.ContractSigned
		patch.Apply(contract)
		if contract.Status == booking.ContractSigned && !wasSigned {
			s.markSigned(contract, SideProducer)
			s.markSigned(contract, SideDJ)
		}
		updated, err = tx.Contracts().Update(ctx, *contract)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recalculate(ctx, updated.DJID)
	return updated, nil
}

// Sign records one side's signature. The producer side may be signed by an
// admin or the owning produtor, the DJ side only by an admin. Once both
// sides have signed a pending contract becomes signed. Signing twice is a
// no-op.
func (s *Service) Sign(ctx context.Context, user access.User, id string, side Side) (*booking.Contract, error) {
	var signed *booking.Contract
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		contract, err := tx.Contracts().Get(ctx, id)
		if err != nil {
			return err
		}
		if !canSign(user, *contract, side) {
			return booking.ErrForbidden
		}
		switch contract.Status {
		case booking.ContractCancelled, booking.ContractCompleted:
			return fmt.Errorf("%w: contract is %s", booking.ErrConflict, contract.Status)
		}
		if !s.markSigned(contract, side) {
			signed = contract
			return nil
		}
		signed, err = tx.Contracts().Update(ctx, *contract)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("contract_id", signed.ID).
		Str("side", string(side)).
		Str("status", string(signed.Status)).
		Str("actor", user.Email).
		Msg("contract signed")
	s.recalculate(ctx, signed.DJID)
	return signed, nil
}

// markSigned sets side's flag and reports whether anything changed.
func (s *Service) markSigned(c *booking.Contract, side Side) bool {
	changed := false
	switch side {
	case SideProducer:
		changed = !c.SignedByProducer
		c.SignedByProducer = true
	case SideDJ:
		changed = !c.SignedByDJ
		c.SignedByDJ = true
	}
	if c.SignedByProducer && c.SignedByDJ && c.SignedDate == nil {
		now := s.now().UTC()
		c.SignedDate = &now
		changed = true
	}
	if c.SignedByProducer && c.SignedByDJ && c.Status == booking.ContractPending {
		c.Status = booking.ContractSigned
		changed = true
	}
	return changed
}

func (s *Service) recalculate(ctx context.Context, djID string) {
	if djID == "" {
		return
	}
	if err := s.enqueuer.EnqueueFinancials(ctx, djID); err != nil {
		s.logger.Warn().Err(err).Str("dj_id", djID).Msg("enqueue financial recalculation failed")
	}
}

func canSign(user access.User, c booking.Contract, side Side) bool {
	if user.IsAdmin() {
		return true
	}
	return side == SideProducer && ownsContract(user, c)
}

func ownsContract(user access.User, c booking.Contract) bool {
	if user.IsAdmin() {
		return true
	}
	return isScopedProdutor(user) && c.ProducerID == user.ProducerID
}

func isScopedProdutor(user access.User) bool {
	return user.Role == auth.RoleProdutor && user.ProducerID != ""
}
