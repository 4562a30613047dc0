// Package dashboard assembles the portal's landing view from every source
// the user can see. Sources load concurrently; one failing source leaves
// its list empty and adds a warning instead of failing the whole view.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage"
)

type DJLister interface {
	List(ctx context.Context, user access.User, filter storage.DJFilter) ([]booking.DJ, error)
}

type EventLister interface {
	List(ctx context.Context, user access.User, filter storage.EventFilter) ([]booking.Event, error)
}

type ContractLister interface {
	List(ctx context.Context, user access.User, filter storage.ContractFilter) ([]booking.Contract, error)
}

type ProducerLister interface {
	List(ctx context.Context, user access.User, filter storage.ProducerFilter) ([]booking.Producer, error)
}

// Sources are the role-aware services the dashboard reads from.
type Sources struct {
	DJs       DJLister
	Events    EventLister
	Contracts ContractLister
	Producers ProducerLister
	Stats     storage.StatsRepository
}

type Dashboard struct {
	DJs         []booking.DJ           `json:"djs"`
	Events      []booking.Event        `json:"events"`
	Contracts   []booking.Contract     `json:"contracts"`
	Producers   []booking.Producer     `json:"producers"`
	Stats       *booking.PlatformStats `json:"stats,omitempty"`
	Permissions access.Permissions     `json:"permissions"`
	Warnings    []string               `json:"warnings,omitempty"`
}

type Service struct {
	sources Sources
	now     func() time.Time
	logger  zerolog.Logger
}

func NewService(sources Sources, logger zerolog.Logger) *Service {
	return &Service{
		sources: sources,
		now:     time.Now,
		logger:  logger.With().Str("component", "dashboard").Logger(),
	}
}

// Load never fails on a source error; it returns the context error only
// when the request itself was cancelled.
func (s *Service) Load(ctx context.Context, user access.User) (*Dashboard, error) {
	result := &Dashboard{
		DJs:         []booking.DJ{},
		Events:      []booking.Event{},
		Contracts:   []booking.Contract{},
		Producers:   []booking.Producer{},
		Permissions: access.PermissionsFor(user),
	}
	warnings := make([]string, 5)

	// Each goroutine writes only its own field and warning slot.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		djs, err := s.sources.DJs.List(gctx, user, storage.DJFilter{Sort: storage.SortName})
		if err != nil {
			warnings[0] = s.degrade("djs", err)
			return nil
		}
		result.DJs = djs
		return nil
	})
	g.Go(func() error {
		events, err := s.sources.Events.List(gctx, user, storage.EventFilter{})
		if err != nil {
			warnings[1] = s.degrade("events", err)
			return nil
		}
		result.Events = events
		return nil
	})
	g.Go(func() error {
		contracts, err := s.sources.Contracts.List(gctx, user, storage.ContractFilter{})
		if err != nil {
			warnings[2] = s.degrade("contracts", err)
			return nil
		}
		result.Contracts = contracts
		return nil
	})
	g.Go(func() error {
		producers, err := s.sources.Producers.List(gctx, user, storage.ProducerFilter{})
		if err != nil {
			warnings[3] = s.degrade("producers", err)
			return nil
		}
		result.Producers = producers
		return nil
	})
	if user.IsAdmin() && s.sources.Stats != nil {
		g.Go(func() error {
			stats, err := s.sources.Stats.Platform(gctx, s.now())
			if err != nil {
				warnings[4] = s.degrade("stats", err)
				return nil
			}
			result.Stats = &stats
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, w := range warnings {
		if w != "" {
			result.Warnings = append(result.Warnings, w)
		}
	}
	return result, nil
}

// Platform returns the agency-wide counters. Admin only.
func (s *Service) Platform(ctx context.Context, user access.User) (booking.PlatformStats, error) {
	if !user.IsAdmin() {
		return booking.PlatformStats{}, booking.ErrForbidden
	}
	if s.sources.Stats == nil {
		return booking.PlatformStats{}, fmt.Errorf("platform stats: no source configured")
	}
	stats, err := s.sources.Stats.Platform(ctx, s.now())
	if err != nil {
		return booking.PlatformStats{}, fmt.Errorf("platform stats: %w", err)
	}
	return stats, nil
}

func (s *Service) degrade(source string, err error) string {
	s.logger.Warn().Err(err).Str("source", source).Msg("dashboard source failed")
	return source + " unavailable"
}
