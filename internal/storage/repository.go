package storage

import (
	"context"
	"time"

	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

// Errors returned by every backend. They alias the domain sentinels so
// services can match them without importing this package.
var (
	ErrNotFound         = booking.ErrNotFound
	ErrConflict         = booking.ErrConflict
	ErrInvalidReference = booking.ErrInvalidReference
)

// Repository groups data access by table.
type Repository interface {
	DJs() DJRepository
	Events() EventRepository
	Contracts() ContractRepository
	Producers() ProducerRepository
	Media() MediaRepository
	Financials() FinancialRepository
	Profiles() ProfileRepository
	Stats() StatsRepository

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}

// DJ sort keys.
const (
	SortName    = "name"
	SortPrice   = "price"
	SortStatus  = "status"
	SortCreated = "created"
)

type DJFilter struct {
	Search string
	Genre  string
	Status booking.AvailabilityStatus
	Sort   string
	Desc   bool
	Limit  int
	Offset int
}

type DJRepository interface {
	List(ctx context.Context, filter DJFilter) ([]booking.DJ, error)
	Get(ctx context.Context, id string) (*booking.DJ, error)
	Create(ctx context.Context, dj booking.DJ) (*booking.DJ, error)
	Update(ctx context.Context, dj booking.DJ) (*booking.DJ, error)
	// Delete deactivates the DJ. Inactive DJs are hidden from List and Get.
	Delete(ctx context.Context, id string) error
	ActiveIDs(ctx context.Context) ([]string, error)
}

type EventFilter struct {
	DJID       string
	ProducerID string
	Status     booking.EventStatus
	From       *time.Time
	To         *time.Time
	Search     string
	Limit      int
	Offset     int
}

type EventRepository interface {
	List(ctx context.Context, filter EventFilter) ([]booking.Event, error)
	Get(ctx context.Context, id string) (*booking.Event, error)
	Create(ctx context.Context, event booking.Event) (*booking.Event, error)
	Update(ctx context.Context, event booking.Event) (*booking.Event, error)
	Delete(ctx context.Context, id string) error
}

type ContractFilter struct {
	EventID    string
	DJID       string
	ProducerID string
	Status     booking.ContractStatus
}

type ContractRepository interface {
	List(ctx context.Context, filter ContractFilter) ([]booking.Contract, error)
	Get(ctx context.Context, id string) (*booking.Contract, error)
	Create(ctx context.Context, contract booking.Contract) (*booking.Contract, error)
	Update(ctx context.Context, contract booking.Contract) (*booking.Contract, error)
}

type ProducerFilter struct {
	Search string
	Status booking.ProducerStatus
}

type ProducerRepository interface {
	List(ctx context.Context, filter ProducerFilter) ([]booking.Producer, error)
	Get(ctx context.Context, id string) (*booking.Producer, error)
	GetByAccessCode(ctx context.Context, code string) (*booking.Producer, error)
	Create(ctx context.Context, producer booking.Producer) (*booking.Producer, error)
	Update(ctx context.Context, producer booking.Producer) (*booking.Producer, error)
	Delete(ctx context.Context, id string) error
	SetAccessCode(ctx context.Context, id string, code string) error
}

type MediaFilter struct {
	DJID     string
	EventID  string
	Category booking.MediaCategory
}

type MediaRepository interface {
	List(ctx context.Context, filter MediaFilter) ([]booking.Media, error)
	Get(ctx context.Context, id string) (*booking.Media, error)
	Create(ctx context.Context, media booking.Media) (*booking.Media, error)
	Delete(ctx context.Context, id string) error
}

type FinancialRepository interface {
	Get(ctx context.Context, djID string) (*booking.FinancialData, error)
	// Recalculate rebuilds financial_data and monthly_earnings for one DJ
	// from its events. defaultRate applies when no contract carries a rate;
	// months are bucketed in the IANA zone timeZone.
	Recalculate(ctx context.Context, djID string, defaultRate float64, timeZone string) (*booking.FinancialData, error)
}

type ProfileFilter struct {
	Role   string
	Limit  int
	Offset int
}

type ProfileRepository interface {
	List(ctx context.Context, filter ProfileFilter) ([]booking.Profile, error)
	Get(ctx context.Context, id string) (*booking.Profile, error)
	GetByEmail(ctx context.Context, email string) (*booking.Profile, error)
	Create(ctx context.Context, profile booking.Profile) (*booking.Profile, error)
	UpdateRole(ctx context.Context, id string, role string, producerID string) (*booking.Profile, error)
	CountAdmins(ctx context.Context) (int, error)
	// LockAdmins counts the admins and locks their rows until the
	// surrounding transaction ends.
	LockAdmins(ctx context.Context) (int, error)
}

type StatsRepository interface {
	Platform(ctx context.Context, now time.Time) (booking.PlatformStats, error)
}
