package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
	"github.com/Togather-Foundation/booking/internal/domain/contracts"
	"github.com/Togather-Foundation/booking/internal/domain/financials"
	"github.com/Togather-Foundation/booking/internal/domain/users"
	"github.com/Togather-Foundation/booking/internal/storage"
)

const (
	djID       = "0b5f7e2a-3c1d-4e8f-9a6b-1c2d3e4f5a6b"
	eventID    = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
	producerID = "9f8e7d6c-5b4a-4c3d-8e2f-1a0b9c8d7e6f"
	contractID = "5c4b3a29-1807-4f6e-9d5c-4b3a29180706"
)

var (
	admin    = access.User{ID: "u-admin", Email: "admin@example.com", Role: auth.RoleAdmin}
	produtor = access.User{ID: "u-prod", Email: "prod@example.com", Role: auth.RoleProdutor, ProducerID: producerID}
)

// newRequest builds a request carrying user, as Authenticate would.
func newRequest(method, target, body string, user access.User) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user.ID != "" {
		req = req.WithContext(access.WithUser(req.Context(), user))
	}
	return req
}

// Each fake embeds the interface it stands in for; calling a method the
// test did not set panics on the nil embed.

type fakeUsers struct {
	UserService
	session *users.Session
	err     error
	gotRole booking.RoleUpdate
}

func (f *fakeUsers) Login(_ context.Context, _ booking.LoginInput) (*users.Session, error) {
	return f.session, f.err
}

func (f *fakeUsers) SignUp(_ context.Context, in booking.SignUpInput) (*booking.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &booking.Profile{ID: "u-new", Email: in.Email, Role: string(auth.RoleProdutor)}, nil
}

func (f *fakeUsers) Me(_ context.Context, user access.User) (*users.Me, error) {
	return &users.Me{
		Profile:     booking.Profile{ID: user.ID, Email: user.Email, Role: string(user.Role)},
		Permissions: access.PermissionsFor(user),
	}, nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, _ access.User, id string, update booking.RoleUpdate) (*booking.Profile, error) {
	f.gotRole = update
	if f.err != nil {
		return nil, f.err
	}
	return &booking.Profile{ID: id, Role: update.Role, ProducerID: update.ProducerID}, nil
}

type fakeDJs struct {
	DJService
	items     []booking.DJ
	gotFilter storage.DJFilter
	err       error
}

func (f *fakeDJs) List(_ context.Context, _ access.User, filter storage.DJFilter) ([]booking.DJ, error) {
	f.gotFilter = filter
	return f.items, f.err
}

func (f *fakeDJs) Get(_ context.Context, _ access.User, id string) (*booking.DJ, error) {
	for _, dj := range f.items {
		if dj.ID == id {
			return &dj, nil
		}
	}
	return nil, booking.ErrNotFound
}

func (f *fakeDJs) Create(_ context.Context, user access.User, in booking.DJInput) (*booking.DJ, error) {
	if !user.IsAdmin() {
		return nil, booking.ErrForbidden
	}
	dj := in.DJ()
	dj.ID = djID
	return &dj, nil
}

type fakeFinancials struct {
	summary financials.Summary
	gotDJ   string
}

func (f *fakeFinancials) Summary(_ context.Context, user access.User, id string) (financials.Summary, error) {
	if !user.IsAdmin() {
		return financials.Summary{}, booking.ErrForbidden
	}
	f.gotDJ = id
	return f.summary, nil
}

type fakeEvents struct {
	EventService
	items []booking.Event
}

func (f *fakeEvents) List(context.Context, access.User, storage.EventFilter) ([]booking.Event, error) {
	return f.items, nil
}

func (f *fakeEvents) Get(_ context.Context, _ access.User, id string) (*booking.Event, error) {
	for _, e := range f.items {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, booking.ErrNotFound
}

type fakeContracts struct {
	ContractService
	gotSide contracts.Side
	err     error
}

func (f *fakeContracts) Sign(_ context.Context, _ access.User, id string, side contracts.Side) (*booking.Contract, error) {
	f.gotSide = side
	if f.err != nil {
		return nil, f.err
	}
	return &booking.Contract{
		ID:               id,
		Status:           booking.ContractPending,
		SignedByProducer: side == contracts.SideProducer,
		SignedByDJ:       side == contracts.SideDJ,
	}, nil
}

type fakeProducers struct {
	ProducerService
	code string
	err  error
}

func (f *fakeProducers) GenerateAccessCode(context.Context, access.User, string) (string, error) {
	return f.code, f.err
}

func (f *fakeProducers) Get(_ context.Context, _ access.User, id string) (*booking.Producer, error) {
	return &booking.Producer{ID: id, Name: "Festa", Email: "festa@example.com"}, nil
}
