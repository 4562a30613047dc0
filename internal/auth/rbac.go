package auth

import (
	"slices"
	"strings"
)

// Role is a portal role as stored in profiles.role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProdutor Role = "produtor"
	RoleDJ       Role = "dj"

	// RoleUnknown is what NormalizeRole returns for anything it does not
	// recognise. It grants nothing.
	RoleUnknown Role = ""
)

var knownRoles = []Role{RoleAdmin, RoleProdutor, RoleDJ}

// NormalizeRole maps stored or user-supplied text onto a Role, ignoring
// case and surrounding space.
func NormalizeRole(role string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(role)))
	if r.Valid() {
		return r
	}
	return RoleUnknown
}

func (r Role) Valid() bool { return slices.Contains(knownRoles, r) }

// HasRole reports whether role is one of allowed. An unknown role never
// matches, even against RoleUnknown.
func HasRole(role string, allowed ...Role) bool {
	current := NormalizeRole(role)
	return current.Valid() && slices.Contains(allowed, current)
}

func IsAdmin(role string) bool { return NormalizeRole(role) == RoleAdmin }
