// Package access decides what a portal user may see. Admins see
// everything. A produtor linked to a producer sees the events booked under
// that producer, and through them the DJs, contracts and media involved.
// Everyone else sees nothing.
//
// Every function here is pure: callers load the rows and pass them in.
package access

import (
	"encoding/json"

	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

// User is the acting portal account.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name,omitempty"`
	Role       auth.Role `json:"role"`
	ProducerID string    `json:"producer_id,omitempty"`
	AccessCode string    `json:"access_code,omitempty"`
}

// UserFromProfile builds the actor for a stored profile.
func UserFromProfile(p booking.Profile) User {
	u := User{
		ID:         p.ID,
		Email:      p.Email,
		Role:       auth.NormalizeRole(p.Role),
		ProducerID: p.ProducerID,
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.AccessCode != nil {
		u.AccessCode = *p.AccessCode
	}
	return u
}

func (u User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}

// scopedProducer returns the producer id a produtor is limited to, or false
// when the user has no producer scope.
func (u User) scopedProducer() (string, bool) {
	if u.Role != auth.RoleProdutor || u.ProducerID == "" {
		return "", false
	}
	return u.ProducerID, true
}

type Permissions struct {
	CanViewAllDJs       bool `json:"can_view_all_djs"`
	CanViewAllEvents    bool `json:"can_view_all_events"`
	CanViewAllContracts bool `json:"can_view_all_contracts"`
	CanManageUsers      bool `json:"can_manage_users"`
	CanCreateDJs        bool `json:"can_create_djs"`
	CanEditDJs          bool `json:"can_edit_djs"`
	CanViewFinancials   bool `json:"can_view_financials"`
	CanManageProducers  bool `json:"can_manage_producers"`

	// Known is false for roles without a permission set. Those encode as {}.
	Known bool `json:"-"`
}

func (p Permissions) MarshalJSON() ([]byte, error) {
	if !p.Known {
		return []byte("{}"), nil
	}
	type plain Permissions
	return json.Marshal(plain(p))
}

// PermissionsFor returns the permission set of u's role.
func PermissionsFor(u User) Permissions {
	switch u.Role {
	case auth.RoleAdmin:
		return Permissions{
			CanViewAllDJs:       true,
			CanViewAllEvents:    true,
			CanViewAllContracts: true,
			CanManageUsers:      true,
			CanCreateDJs:        true,
			CanEditDJs:          true,
			CanViewFinancials:   true,
			CanManageProducers:  true,
			Known:               true,
		}
	case auth.RoleProdutor:
		return Permissions{Known: true}
	default:
		return Permissions{}
	}
}

// CanAccessDJ reports whether u may see djID. A produtor qualifies only
// through an event that links the DJ to the produtor's producer.
func CanAccessDJ(u User, djID string, events []booking.Event) bool {
	if u.IsAdmin() {
		return true
	}
	producerID, ok := u.scopedProducer()
	if !ok || djID == "" {
		return false
	}
	for _, e := range events {
		if e.DJID == djID && e.ProducerID == producerID {
			return true
		}
	}
	return false
}

// FilterDJs keeps the DJs booked in at least one of the produtor's events.
func FilterDJs(djs []booking.DJ, events []booking.Event, u User) []booking.DJ {
	if u.IsAdmin() {
		return djs
	}
	producerID, ok := u.scopedProducer()
	if !ok {
		return []booking.DJ{}
	}
	allowed := bookedDJs(events, producerID)
	return keep(djs, func(dj booking.DJ) bool {
		_, ok := allowed[dj.ID]
		return ok
	})
}

func FilterEvents(events []booking.Event, u User) []booking.Event {
	if u.IsAdmin() {
		return events
	}
	producerID, ok := u.scopedProducer()
	if !ok {
		return []booking.Event{}
	}
	return keep(events, func(e booking.Event) bool {
		return e.ProducerID == producerID
	})
}

func FilterContracts(contracts []booking.Contract, u User) []booking.Contract {
	if u.IsAdmin() {
		return contracts
	}
	producerID, ok := u.scopedProducer()
	if !ok {
		return []booking.Contract{}
	}
	return keep(contracts, func(c booking.Contract) bool {
		return c.ProducerID == producerID
	})
}

// FilterMedia keeps media owned by an accessible DJ or by one of the
// produtor's events. DJ access is derived from events, so djs is unused.
func FilterMedia(media []booking.Media, djs []booking.DJ, events []booking.Event, u User) []booking.Media {
	if u.IsAdmin() {
		return media
	}
	producerID, ok := u.scopedProducer()
	if !ok {
		return []booking.Media{}
	}
	allowedDJs := bookedDJs(events, producerID)
	allowedEvents := make(map[string]struct{})
	for _, e := range events {
		if e.ProducerID == producerID && e.ID != "" {
			allowedEvents[e.ID] = struct{}{}
		}
	}
	return keep(media, func(m booking.Media) bool {
		if m.DJID != "" {
			if _, ok := allowedDJs[m.DJID]; ok {
				return true
			}
		}
		if m.EventID != "" {
			if _, ok := allowedEvents[m.EventID]; ok {
				return true
			}
		}
		return false
	})
}

func bookedDJs(events []booking.Event, producerID string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, e := range events {
		if e.ProducerID == producerID && e.DJID != "" {
			ids[e.DJID] = struct{}{}
		}
	}
	return ids
}

// keep returns the items matching pred in input order, never nil.
func keep[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}
