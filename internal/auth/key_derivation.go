package auth

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DerivedKeyLength matches the HMAC-SHA256 block the keys feed.
const DerivedKeyLength = 32

// HKDF info labels. Bumping a label rotates that key alone.
const (
	purposeSessionJWT = "booking-session-jwt-v1"
	purposeCSRF       = "booking-csrf-v1"
)

var ErrInvalidMasterSecret = errors.New("master secret cannot be empty")

// Keys are the per-purpose secrets derived from AUTH_JWT_SECRET, so the one
// configured secret never signs anything directly.
type Keys struct {
	Session []byte
	CSRF    []byte
}

// DeriveKeys expands masterSecret into every key the server needs.
func DeriveKeys(masterSecret []byte) (Keys, error) {
	session, err := DeriveKey(masterSecret, purposeSessionJWT)
	if err != nil {
		return Keys{}, err
	}
	csrf, err := DeriveKey(masterSecret, purposeCSRF)
	if err != nil {
		return Keys{}, err
	}
	return Keys{Session: session, CSRF: csrf}, nil
}

// DeriveKey runs HKDF-SHA256 over masterSecret with purpose as the info
// string. No salt: the master secret is already high entropy.
func DeriveKey(masterSecret []byte, purpose string) ([]byte, error) {
	if len(masterSecret) == 0 {
		return nil, ErrInvalidMasterSecret
	}
	key := make([]byte, DerivedKeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterSecret, nil, []byte(purpose)), key); err != nil {
		return nil, err
	}
	return key, nil
}
