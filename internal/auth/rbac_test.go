package auth

import "testing"

func TestNormalizeRole(t *testing.T) {
	tests := map[string]Role{
		"admin":    RoleAdmin,
		" ADMIN ":  RoleAdmin,
		"produtor": RoleProdutor,
		"Produtor": RoleProdutor,
		"dj":       RoleDJ,
		"editor":   RoleUnknown,
		"":         RoleUnknown,
		"producer": RoleUnknown,
	}
	for input, want := range tests {
		if got := NormalizeRole(input); got != want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestHasRole(t *testing.T) {
	if !HasRole("produtor", RoleAdmin, RoleProdutor) {
		t.Error("produtor should match")
	}
	if HasRole("dj", RoleAdmin, RoleProdutor) {
		t.Error("dj should not match")
	}
	if HasRole("", RoleUnknown) {
		t.Error("unknown role must never match")
	}
	if HasRole("admin") {
		t.Error("no allowed roles should never match")
	}
	if !IsAdmin("Admin") {
		t.Error("IsAdmin should be case-insensitive")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleProdutor, RoleDJ} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if RoleUnknown.Valid() || Role("viewer").Valid() {
		t.Error("unexpected valid role")
	}
}
