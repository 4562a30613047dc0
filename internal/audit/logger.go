// Package audit writes one structured record per administrative mutation.
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is a single audit record. Actor is the acting user's email.
type Entry struct {
	Timestamp    time.Time         `json:"timestamp"`
	Action       string            `json:"action"`
	Actor        string            `json:"actor"`
	ResourceType string            `json:"resource_type,omitempty"`
	ResourceID   string            `json:"resource_id,omitempty"`
	IPAddress    string            `json:"ip_address,omitempty"`
	Status       string            `json:"status"`
	Error        string            `json:"error,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
}

// Logger is safe to use as a nil pointer, which discards everything.
type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("component", "audit").Logger()}
}

func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Status == "" {
		entry.Status = StatusSuccess
	}
	l.logger.Info().Interface("audit", entry).Msg(entry.Action)
}

// Record logs the outcome of an action. A non-nil err marks it failed.
// The client IP is taken from ctx when the HTTP layer stored one.
func (l *Logger) Record(ctx context.Context, action, actor, resourceType, resourceID string, err error, details map[string]string) {
	entry := Entry{
		Action:       action,
		Actor:        actor,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ClientIP(ctx),
		Status:       StatusSuccess,
		Details:      details,
	}
	if err != nil {
		entry.Status = StatusFailure
		entry.Error = err.Error()
	}
	l.Log(entry)
}

type contextKey string

const clientIPKey contextKey = "auditClientIP"

// WithClientIP stores the caller's address for Record. The HTTP layer sets
// it once the trusted-proxy rules have resolved the real client.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

func ClientIP(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}
