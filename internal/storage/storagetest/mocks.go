// Package storagetest provides testify mocks of the storage interfaces for
// service tests.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/storage"
)

// Repository bundles one mock per table. WithTx runs fn against the same
// mocks, so expectations set before the call apply inside it.
type Repository struct {
	DJRepo        *DJRepository
	EventRepo     *EventRepository
	ContractRepo  *ContractRepository
	ProducerRepo  *ProducerRepository
	MediaRepo     *MediaRepository
	FinancialRepo *FinancialRepository
	ProfileRepo   *ProfileRepository
	StatsRepo     *StatsRepository
}

var _ storage.Repository = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{
		DJRepo:        &DJRepository{},
		EventRepo:     &EventRepository{},
		ContractRepo:  &ContractRepository{},
		ProducerRepo:  &ProducerRepository{},
		MediaRepo:     &MediaRepository{},
		FinancialRepo: &FinancialRepository{},
		ProfileRepo:   &ProfileRepository{},
		StatsRepo:     &StatsRepository{},
	}
}

// AssertExpectations checks every table mock.
func (r *Repository) AssertExpectations(t mock.TestingT) {
	r.DJRepo.AssertExpectations(t)
	r.EventRepo.AssertExpectations(t)
	r.ContractRepo.AssertExpectations(t)
	r.ProducerRepo.AssertExpectations(t)
	r.MediaRepo.AssertExpectations(t)
	r.FinancialRepo.AssertExpectations(t)
	r.ProfileRepo.AssertExpectations(t)
	r.StatsRepo.AssertExpectations(t)
}

func (r *Repository) DJs() storage.DJRepository { return r.DJRepo }
func (r *Repository) Events() storage.EventRepository { return r.EventRepo }
func (r *Repository) Contracts() storage.ContractRepository { return r.ContractRepo }
func (r *Repository) Producers() storage.ProducerRepository { return r.ProducerRepo }
func (r *Repository) Media() storage.MediaRepository { return r.MediaRepo }
func (r *Repository) Financials() storage.FinancialRepository { return r.FinancialRepo }
func (r *Repository) Profiles() storage.ProfileRepository { return r.ProfileRepo }
func (r *Repository) Stats() storage.StatsRepository { return r.StatsRepo }

func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	return fn(ctx, r)
}

type DJRepository struct{ mock.Mock }

func (m *DJRepository) List(ctx context.Context, filter storage.DJFilter) ([]booking.DJ, error) {
	args := m.Called(ctx, filter)
	return sliceOf[booking.DJ](args, 0), args.Error(1)
}

func (m *DJRepository) Get(ctx context.Context, id string) (*booking.DJ, error) {
	args := m.Called(ctx, id)
	return pointerOf[booking.DJ](args, 0), args.Error(1)
}

func (m *DJRepository) Create(ctx context.Context, dj booking.DJ) (*booking.DJ, error) {
	args := m.Called(ctx, dj)
	return pointerOf[booking.DJ](args, 0), args.Error(1)
}

func (m *DJRepository) Update(ctx context.Context, dj booking.DJ) (*booking.DJ, error) {
	args := m.Called(ctx, dj)
	return pointerOf[booking.DJ](args, 0), args.Error(1)
}

func (m *DJRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *DJRepository) ActiveIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return sliceOf[string](args, 0), args.Error(1)
}

type EventRepository struct{ mock.Mock }

func (m *EventRepository) List(ctx context.Context, filter storage.EventFilter) ([]booking.Event, error) {
	args := m.Called(ctx, filter)
	return sliceOf[booking.Event](args, 0), args.Error(1)
}

func (m *EventRepository) Get(ctx context.Context, id string) (*booking.Event, error) {
	args := m.Called(ctx, id)
	return pointerOf[booking.Event](args, 0), args.Error(1)
}

func (m *EventRepository) Create(ctx context.Context, event booking.Event) (*booking.Event, error) {
	args := m.Called(ctx, event)
	return pointerOf[booking.Event](args, 0), args.Error(1)
}

func (m *EventRepository) Update(ctx context.Context, event booking.Event) (*booking.Event, error) {
	args := m.Called(ctx, event)
	return pointerOf[booking.Event](args, 0), args.Error(1)
}

func (m *EventRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type ContractRepository struct{ mock.Mock }

func (m *ContractRepository) List(ctx context.Context, filter storage.ContractFilter) ([]booking.Contract, error) {
	args := m.Called(ctx, filter)
	return sliceOf[booking.Contract](args, 0), args.Error(1)
}

func (m *ContractRepository) Get(ctx context.Context, id string) (*booking.Contract, error) {
	args := m.Called(ctx, id)
	return pointerOf[booking.Contract](args, 0), args.Error(1)
}

func (m *ContractRepository) Create(ctx context.Context, contract booking.Contract) (*booking.Contract, error) {
	args := m.Called(ctx, contract)
	return pointerOf[booking.Contract](args, 0), args.Error(1)
}

func (m *ContractRepository) Update(ctx context.Context, contract booking.Contract) (*booking.Contract, error) {
	args := m.Called(ctx, contract)
	return pointerOf[booking.Contract](args, 0), args.Error(1)
}

type ProducerRepository struct{ mock.Mock }

func (m *ProducerRepository) List(ctx context.Context, filter storage.ProducerFilter) ([]booking.Producer, error) {
	args := m.Called(ctx, filter)
	return sliceOf[booking.Producer](args, 0), args.Error(1)
}

func (m *ProducerRepository) Get(ctx context.Context, id string) (*booking.Producer, error) {
	args := m.Called(ctx, id)
	return pointerOf[booking.Producer](args, 0), args.Error(1)
}

func (m *ProducerRepository) GetByAccessCode(ctx context.Context, code string) (*booking.Producer, error) {
	args := m.Called(ctx, code)
	return pointerOf[booking.Producer](args, 0), args.Error(1)
}

func (m *ProducerRepository) Create(ctx context.Context, producer booking.Producer) (*booking.Producer, error) {
	args := m.Called(ctx, producer)
	return pointerOf[booking.Producer](args, 0), args.Error(1)
}

func (m *ProducerRepository) Update(ctx context.Context, producer booking.Producer) (*booking.Producer, error) {
	args := m.Called(ctx, producer)
	return pointerOf[booking.Producer](args, 0), args.Error(1)
}

func (m *ProducerRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProducerRepository) SetAccessCode(ctx context.Context, id string, code string) error {
	return m.Called(ctx, id, code).Error(0)
}

type MediaRepository struct{ mock.Mock }

func (m *MediaRepository) List(ctx context.Context, filter storage.MediaFilter) ([]booking.Media, error) {
	args := m.Called(ctx, filter)
	return sliceOf[booking.Media](args, 0), args.Error(1)
}

func (m *MediaRepository) Get(ctx context.Context, id string) (*booking.Media, error) {
	args := m.Called(ctx, id)
	return pointerOf[booking.Media](args, 0), args.Error(1)
}

func (m *MediaRepository) Create(ctx context.Context, media booking.Media) (*booking.Media, error) {
	args := m.Called(ctx, media)
	return pointerOf[booking.Media](args, 0), args.Error(1)
}

func (m *MediaRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type FinancialRepository struct{ mock.Mock }

func (m *FinancialRepository) Get(ctx context.Context, djID string) (*booking.FinancialData, error) {
	args := m.Called(ctx, djID)
	return pointerOf[booking.FinancialData](args, 0), args.Error(1)
}

func (m *FinancialRepository) Recalculate(ctx context.Context, djID string, defaultRate float64, timeZone string) (*booking.FinancialData, error) {
	args := m.Called(ctx, djID, defaultRate, timeZone)
	return pointerOf[booking.FinancialData](args, 0), args.Error(1)
}

type ProfileRepository struct{ mock.Mock }

func (m *ProfileRepository) List(ctx context.Context, filter storage.ProfileFilter) ([]booking.Profile, error) {
	args := m.Called(ctx, filter)
	return sliceOf[booking.Profile](args, 0), args.Error(1)
}

func (m *ProfileRepository) Get(ctx context.Context, id string) (*booking.Profile, error) {
	args := m.Called(ctx, id)
	return pointerOf[booking.Profile](args, 0), args.Error(1)
}

func (m *ProfileRepository) GetByEmail(ctx context.Context, email string) (*booking.Profile, error) {
	args := m.Called(ctx, email)
	return pointerOf[booking.Profile](args, 0), args.Error(1)
}

func (m *ProfileRepository) Create(ctx context.Context, profile booking.Profile) (*booking.Profile, error) {
	args := m.Called(ctx, profile)
	return pointerOf[booking.Profile](args, 0), args.Error(1)
}

func (m *ProfileRepository) UpdateRole(ctx context.Context, id string, role string, producerID string) (*booking.Profile, error) {
	args := m.Called(ctx, id, role, producerID)
	return pointerOf[booking.Profile](args, 0), args.Error(1)
}

func (m *ProfileRepository) CountAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *ProfileRepository) LockAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type StatsRepository struct{ mock.Mock }

func (m *StatsRepository) Platform(ctx context.Context, now time.Time) (booking.PlatformStats, error) {
	args := m.Called(ctx, now)
	stats, _ := args.Get(0).(booking.PlatformStats)
	return stats, args.Error(1)
}

// Enqueuer records scheduled jobs. djIDs are matched as one []string.
type Enqueuer struct{ mock.Mock }

var _ booking.Enqueuer = (*Enqueuer)(nil)

func (m *Enqueuer) EnqueueFinancials(ctx context.Context, djIDs ...string) error {
	return m.Called(ctx, djIDs).Error(0)
}

func (m *Enqueuer) EnqueueAccessCodeEmail(ctx context.Context, producerID string) error {
	return m.Called(ctx, producerID).Error(0)
}

func sliceOf[T any](args mock.Arguments, i int) []T {
	v, _ := args.Get(i).([]T)
	return v
}

func pointerOf[T any](args mock.Arguments, i int) *T {
	v, _ := args.Get(i).(*T)
	return v
}
