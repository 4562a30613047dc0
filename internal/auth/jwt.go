package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// clockSkew tolerates small clock drift between replicas.
const clockSkew = 30 * time.Second

// Claims carries the role at issue time. Handlers reload the profile on
// every request, so a role change takes effect before the token expires.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs and checks HS256 session tokens for one issuer.
type JWTManager struct {
	key    []byte
	expiry time.Duration
	issuer string
	parser *jwt.Parser
}

func NewJWTManager(key []byte, expiry time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		key:    key,
		expiry: expiry,
		issuer: issuer,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
	}
}

// Expiry is also the session cookie lifetime.
func (m *JWTManager) Expiry() time.Duration { return m.expiry }

// Generate issues a token for subject. Every token gets a fresh jti.
func (m *JWTManager) Generate(subject string, role Role) (string, error) {
	if subject == "" || role == RoleUnknown {
		return "", ErrInvalidToken
	}
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}).SignedString(m.key)
}

// Validate returns the claims of a well-formed, unexpired token from this
// issuer. Every failure collapses into ErrInvalidToken.
func (m *JWTManager) Validate(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMissingToken
	}
	var claims Claims
	token, err := m.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" || NormalizeRole(claims.Role) == RoleUnknown {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// TokenFromHeader extracts the credential of a "Bearer <token>" header.
func TokenFromHeader(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrMissingToken
	}
	return token, nil
}
