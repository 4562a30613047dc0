package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/contracts"
	"github.com/Togather-Foundation/booking/internal/domain/djs"
	"github.com/Togather-Foundation/booking/internal/domain/events"
	"github.com/Togather-Foundation/booking/internal/domain/producers"
	"github.com/Togather-Foundation/booking/internal/storage"
	"github.com/Togather-Foundation/booking/internal/storage/storagetest"
)

func newDashboard(repo *storagetest.Repository) *Service {
	log := zerolog.Nop()
	svc := NewService(Sources{
		DJs:       djs.NewService(repo, log),
		Events:    events.NewService(repo, nil, time.UTC, log),
		Contracts: contracts.NewService(repo, nil, log),
		Producers: producers.NewService(repo, nil, log),
		Stats:     repo.Stats(),
	}, log)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestLoadAdminDegradesFailedSource(t *testing.T) {
	repo := storagetest.NewRepository()
	repo.DJRepo.On("List", mock.Anything, storage.DJFilter{Sort: storage.SortName}).Return([]booking.DJ{{ID: "d1"}}, nil)
	repo.EventRepo.On("List", mock.Anything, storage.EventFilter{}).Return(nil, errors.New("timeout"))
	repo.ContractRepo.On("List", mock.Anything, storage.ContractFilter{}).Return([]booking.Contract{{ID: "c1"}}, nil)
	repo.ProducerRepo.On("List", mock.Anything, storage.ProducerFilter{}).Return([]booking.Producer{{ID: "p1"}}, nil)
	repo.StatsRepo.On("Platform", mock.Anything, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).
		Return(booking.PlatformStats{TotalDJs: 1}, nil)

	got, err := newDashboard(repo).Load(context.Background(), access.User{Role: auth.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, got.DJs, 1)
	assert.NotNil(t, got.Events)
	assert.Empty(t, got.Events)
	assert.Len(t, got.Contracts, 1)
	assert.Len(t, got.Producers, 1)
	require.NotNil(t, got.Stats)
	assert.Equal(t, 1, got.Stats.TotalDJs)
	assert.Equal(t, []string{"events unavailable"}, got.Warnings)
}

func TestLoadProdutorHasNoStats(t *testing.T) {
	repo := storagetest.NewRepository()
	repo.DJRepo.On("List", mock.Anything, storage.DJFilter{Sort: storage.SortName}).Return([]booking.DJ{{ID: "d1"}, {ID: "d2"}}, nil)
	repo.EventRepo.On("List", mock.Anything, storage.EventFilter{ProducerID: "p1"}).
		Return([]booking.Event{{ID: "e1", DJID: "d2", ProducerID: "p1"}}, nil)
	repo.ContractRepo.On("List", mock.Anything, storage.ContractFilter{ProducerID: "p1"}).Return([]booking.Contract{}, nil)
	repo.ProducerRepo.On("Get", mock.Anything, "p1").Return(&booking.Producer{ID: "p1"}, nil)

	got, err := newDashboard(repo).Load(context.Background(), access.User{Role: auth.RoleProdutor, ProducerID: "p1"})
	require.NoError(t, err)
	require.Len(t, got.DJs, 1)
	assert.Equal(t, "d2", got.DJs[0].ID)
	assert.Nil(t, got.Stats)
	assert.Empty(t, got.Warnings)
	repo.StatsRepo.AssertNotCalled(t, "Platform", mock.Anything, mock.Anything)
}

func TestLoadCancelled(t *testing.T) {
	repo := storagetest.NewRepository()
	repo.DJRepo.On("List", mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()
	repo.EventRepo.On("List", mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()
	repo.ContractRepo.On("List", mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()
	repo.ProducerRepo.On("List", mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()
	repo.StatsRepo.On("Platform", mock.Anything, mock.Anything).Return(booking.PlatformStats{}, context.Canceled).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newDashboard(repo).Load(ctx, access.User{Role: auth.RoleAdmin})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlatform(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := storagetest.NewRepository()
	repo.StatsRepo.On("Platform", mock.Anything, now).Return(booking.PlatformStats{TotalDJs: 4, SignedContracts: 2}, nil)
	svc := newDashboard(repo)

	stats, err := svc.Platform(context.Background(), access.User{Role: auth.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalDJs)

	_, err = svc.Platform(context.Background(), access.User{Role: auth.RoleProdutor, ProducerID: "p1"})
	assert.ErrorIs(t, err, booking.ErrForbidden)
}
