// Package financials exposes the per-DJ earnings rollup and the summary the
// dashboard's finance tab shows.
package financials

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/legacy"
	"github.com/Togather-Foundation/booking/internal/metrics"
	"github.com/Togather-Foundation/booking/internal/storage"
)

type Service struct {
	repo        storage.Repository
	defaultRate float64
	loc         *time.Location
	now         func() time.Time
	logger      zerolog.Logger
}

// NewService uses defaultRate (percent) for DJs whose contracts carry no
// commission rate. Earnings are grouped into months of loc, which defaults to
// the agency's zone.
func NewService(repo storage.Repository, defaultRate float64, loc *time.Location, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = legacy.DefaultLocation
	}
	return &Service{
		repo:        repo,
		defaultRate: defaultRate,
		loc:         loc,
		now:         time.Now,
		logger:      logger.With().Str("component", "financials").Logger(),
	}
}

// Summary adds month-over-month figures to the stored rollup.
type Summary struct {
	booking.FinancialData
	CommissionDeduction float64 `json:"commission_deduction"`
	CurrentMonth        float64 `json:"current_month_earnings"`
	PreviousMonth       float64 `json:"previous_month_earnings"`
	GrowthPercent       float64 `json:"growth_percent"`
}

// Get returns the DJ's rollup, computing it on first access.
func (s *Service) Get(ctx context.Context, user access.User, djID string) (*booking.FinancialData, error) {
	if err := s.authorize(ctx, user, djID); err != nil {
		return nil, err
	}
	data, err := s.repo.Financials().Get(ctx, djID)
	if errors.Is(err, storage.ErrNotFound) {
		return s.Recalculate(ctx, djID)
	}
	return data, err
}

func (s *Service) Summary(ctx context.Context, user access.User, djID string) (Summary, error) {
	data, err := s.Get(ctx, user, djID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(*data, s.now().In(s.loc)), nil
}

// Summarize computes the commission deduction and the growth of now's month
// over the month before. Growth is 0 when the previous month earned nothing.
func Summarize(data booking.FinancialData, now time.Time) Summary {
	summary := Summary{
		FinancialData:       data,
		CommissionDeduction: roundCents(data.TotalEarnings * data.CommissionRate / 100),
	}
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	previous := current.AddDate(0, -1, 0)
	for _, m := range data.MonthlyEarnings {
		switch {
		case m.Year == current.Year() && m.Month == int(current.Month()):
			summary.CurrentMonth += m.Amount
		case m.Year == previous.Year() && m.Month == int(previous.Month()):
			summary.PreviousMonth += m.Amount
		}
	}
	if summary.PreviousMonth != 0 {
		growth := (summary.CurrentMonth - summary.PreviousMonth) / summary.PreviousMonth * 100
		summary.GrowthPercent = math.Round(growth*10) / 10
	}
	return summary
}

// Recalculate rebuilds one DJ's rollup from its events.
func (s *Service) Recalculate(ctx context.Context, djID string) (*booking.FinancialData, error) {
	data, err := s.repo.Financials().Recalculate(ctx, djID, s.defaultRate, s.loc.String())
	metrics.RecordRecalculation(err)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Str("dj_id", djID).
		Float64("total_earnings", data.TotalEarnings).
		Int("completed_events", data.CompletedEvents).
		Msg("financials recalculated")
	return data, nil
}

// RecalculateAll rebuilds every active DJ. It keeps going past individual
// failures and returns them joined.
func (s *Service) RecalculateAll(ctx context.Context) (int, error) {
	ids, err := s.repo.DJs().ActiveIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active djs: %w", err)
	}
	var (
		done int
		errs []error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.Recalculate(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("dj %s: %w", id, err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

func (s *Service) authorize(ctx context.Context, user access.User, djID string) error {
	if access.PermissionsFor(user).CanViewFinancials {
		return nil
	}
	if user.ProducerID == "" {
		return booking.ErrForbidden
	}
	events, err := s.repo.Events().List(ctx, storage.EventFilter{ProducerID: user.ProducerID})
	if err != nil {
		return fmt.Errorf("load producer events: %w", err)
	}
	if !access.CanAccessDJ(user, djID, events) {
		return booking.ErrForbidden
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
