package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTGenerateValidate(t *testing.T) {
	manager := NewJWTManager([]byte("secret"), time.Hour, "booking")
	jwtToken, err := manager.Generate("user-1", RoleProdutor)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := manager.Validate(jwtToken)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "produtor" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestJWTGenerateInvalid(t *testing.T) {
	manager := NewJWTManager([]byte("secret"), time.Hour, "booking")
	if _, err := manager.Generate("", RoleAdmin); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
	if _, err := manager.Generate("user-1", RoleUnknown); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error for unknown role, got %v", err)
	}
}

func TestJWTValidateMissing(t *testing.T) {
	manager := NewJWTManager([]byte("secret"), time.Hour, "booking")
	if _, err := manager.Validate(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestJWTValidateRejects(t *testing.T) {
	manager := NewJWTManager([]byte("secret"), time.Hour, "booking")

	other := NewJWTManager([]byte("other-secret"), time.Hour, "booking")
	foreign, err := other.Generate("user-1", RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := manager.Validate(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for wrong key, got %v", err)
	}

	wrongIssuer := NewJWTManager([]byte("secret"), time.Hour, "someone-else")
	token, err := wrongIssuer.Generate("user-1", RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for wrong issuer, got %v", err)
	}

	expired := NewJWTManager([]byte("secret"), -time.Minute, "booking")
	token, err = expired.Generate("user-1", RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for expired token, got %v", err)
	}
}

func TestJWTValidateRejectsUnknownRole(t *testing.T) {
	manager := NewJWTManager([]byte("secret"), time.Hour, "booking")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "booking",
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for unknown role, got %v", err)
	}
}

func TestJWTValidateRequiresExpiry(t *testing.T) {
	manager := NewJWTManager([]byte("secret"), time.Hour, "booking")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "booking", Subject: "user-1"},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token without exp, got %v", err)
	}
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
		err    error
	}{
		{"Bearer token", "token", nil},
		{"bearer  token ", "token", nil},
		{"nope", "", ErrMissingToken},
		{"Basic abc", "", ErrMissingToken},
		{"Bearer ", "", ErrMissingToken},
		{"Bearer a b", "", ErrMissingToken},
	}
	for _, tt := range tests {
		got, err := TokenFromHeader(tt.header)
		if !errors.Is(err, tt.err) || got != tt.want {
			t.Errorf("TokenFromHeader(%q) = %q, %v; want %q, %v", tt.header, got, err, tt.want, tt.err)
		}
	}
}
