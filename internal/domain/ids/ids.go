// Package ids handles the two identifier kinds the portal uses: UUID
// primary keys on every table and ULIDs for request and change-feed ids.
package ids

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var ErrInvalidUUID = errors.New("invalid UUID")

// ulids is monotonic: ids minted in the same millisecond still sort in
// creation order, which SSE clients rely on for Last-Event-ID.
var ulids = struct {
	sync.Mutex
	entropy *ulid.MonotonicEntropy
}{entropy: ulid.Monotonic(rand.Reader, 0)}

func NewULID() (string, error) {
	return newULIDAt(time.Now())
}

func newULIDAt(at time.Time) (string, error) {
	ulids.Lock()
	defer ulids.Unlock()
	id, err := ulid.New(ulid.Timestamp(at), ulids.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsULID accepts Crockford base32 in either case, ignoring surrounding
// space.
func IsULID(value string) bool {
	_, err := ulid.ParseStrict(strings.TrimSpace(value))
	return err == nil
}

func NewUUID() string {
	return uuid.NewString()
}

// ParseUUID validates value and returns its canonical lowercase form.
func ParseUUID(value string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", ErrInvalidUUID
	}
	return id.String(), nil
}

func IsUUID(value string) bool {
	_, err := ParseUUID(value)
	return err == nil
}
