package handlers

import (
	"context"
	"time"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/contracts"
	"github.com/Togather-Foundation/booking/internal/domain/dashboard"
	"github.com/Togather-Foundation/booking/internal/domain/djs"
	"github.com/Togather-Foundation/booking/internal/domain/financials"
	"github.com/Togather-Foundation/booking/internal/domain/users"
	"github.com/Togather-Foundation/booking/internal/storage"
)

// The handler-side views of the domain services. Each is satisfied by the
// matching *Service in internal/domain.

type UserService interface {
	SignUp(ctx context.Context, input booking.SignUpInput) (*booking.Profile, error)
	Login(ctx context.Context, input booking.LoginInput) (*users.Session, error)
	Me(ctx context.Context, user access.User) (*users.Me, error)
	List(ctx context.Context, user access.User, filter storage.ProfileFilter) ([]booking.Profile, error)
	UpdateRole(ctx context.Context, user access.User, id string, update booking.RoleUpdate) (*booking.Profile, error)
}

type DJService interface {
	List(ctx context.Context, user access.User, filter storage.DJFilter) ([]booking.DJ, error)
	Get(ctx context.Context, user access.User, id string) (*booking.DJ, error)
	Create(ctx context.Context, user access.User, input booking.DJInput) (*booking.DJ, error)
	Update(ctx context.Context, user access.User, id string, patch booking.DJPatch) (*booking.DJ, error)
	Delete(ctx context.Context, user access.User, id string) error
	Stats(ctx context.Context, user access.User) (djs.Stats, error)
	Calendar(ctx context.Context, user access.User, djID string, year int, month time.Month, now time.Time, loc *time.Location) (djs.Calendar, error)
}

type FinancialsService interface {
	Summary(ctx context.Context, user access.User, djID string) (financials.Summary, error)
}

type EventService interface {
	List(ctx context.Context, user access.User, filter storage.EventFilter) ([]booking.Event, error)
	Get(ctx context.Context, user access.User, id string) (*booking.Event, error)
	Create(ctx context.Context, user access.User, input booking.EventInput) (*booking.Event, error)
	Update(ctx context.Context, user access.User, id string, patch booking.EventPatch) (*booking.Event, error)
	Delete(ctx context.Context, user access.User, id string) error
}

type ContractService interface {
	List(ctx context.Context, user access.User, filter storage.ContractFilter) ([]booking.Contract, error)
	Get(ctx context.Context, user access.User, id string) (*booking.Contract, error)
	Create(ctx context.Context, user access.User, input booking.ContractInput) (*booking.Contract, error)
	Update(ctx context.Context, user access.User, id string, patch booking.ContractPatch) (*booking.Contract, error)
	Sign(ctx context.Context, user access.User, id string, side contracts.Side) (*booking.Contract, error)
}

type ProducerService interface {
	List(ctx context.Context, user access.User, filter storage.ProducerFilter) ([]booking.Producer, error)
	Get(ctx context.Context, user access.User, id string) (*booking.Producer, error)
	Create(ctx context.Context, user access.User, input booking.ProducerInput) (*booking.Producer, error)
	Update(ctx context.Context, user access.User, id string, patch booking.ProducerPatch) (*booking.Producer, error)
	Delete(ctx context.Context, user access.User, id string) error
	GenerateAccessCode(ctx context.Context, user access.User, id string) (string, error)
}

type MediaService interface {
	List(ctx context.Context, user access.User, filter storage.MediaFilter) ([]booking.Media, error)
	Create(ctx context.Context, user access.User, input booking.MediaInput) (*booking.Media, error)
	Delete(ctx context.Context, user access.User, id string) error
}

type DashboardService interface {
	Load(ctx context.Context, user access.User) (*dashboard.Dashboard, error)
	Platform(ctx context.Context, user access.User) (booking.PlatformStats, error)
}
