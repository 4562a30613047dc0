// Package realtime turns row-change notifications from Postgres into a
// stream of Change values and fans them out to SSE subscribers.
package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Togather-Foundation/booking/internal/access"
	"github.com/Togather-Foundation/booking/internal/auth"
	"github.com/Togather-Foundation/booking/internal/domain/ids"
)

// DefaultChannel is the NOTIFY channel the row triggers publish on.
const DefaultChannel = "booking_changes"

// Change is one inserted, updated or deleted row. ID is a ULID minted when
// the notification arrives, so IDs sort by arrival.
type Change struct {
	ID         string    `json:"id"`
	Table      string    `json:"table"`
	Op         string    `json:"op"`
	RecordID   string    `json:"record_id"`
	DJID       string    `json:"dj_id,omitempty"`
	ProducerID string    `json:"producer_id,omitempty"`
	EventID    string    `json:"event_id,omitempty"`
	At         time.Time `json:"at"`
}

type notification struct {
	Table      string  `json:"table"`
	Op         string  `json:"op"`
	ID         string  `json:"id"`
	DJID       *string `json:"dj_id"`
	ProducerID *string `json:"producer_id"`
	EventID    *string `json:"event_id"`
}

// Decode parses a trigger payload.
func Decode(payload string, at time.Time) (Change, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return Change{}, fmt.Errorf("decode change payload: %w", err)
	}
	if n.Table == "" || n.ID == "" {
		return Change{}, fmt.Errorf("decode change payload: missing table or id")
	}
	id, err := ids.NewULID()
	if err != nil {
		return Change{}, fmt.Errorf("mint change id: %w", err)
	}
	return Change{
		ID:         id,
		Table:      n.Table,
		Op:         strings.ToLower(n.Op),
		RecordID:   n.ID,
		DJID:       deref(n.DJID),
		ProducerID: deref(n.ProducerID),
		EventID:    deref(n.EventID),
		At:         at.UTC(),
	}, nil
}

// Visible reports whether user may receive c. Admins get everything. A
// produtor gets changes carrying its producer id, changes to its own
// producer row, and DJ roster changes. Other roles get nothing.
func Visible(user access.User, c Change) bool {
	if user.IsAdmin() {
		return true
	}
	if user.Role != auth.RoleProdutor || user.ProducerID == "" {
		return false
	}
	switch c.Table {
	case "djs":
		return true
	case "producers":
		return c.RecordID == user.ProducerID
	default:
		return c.ProducerID != "" && c.ProducerID == user.ProducerID
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
