package audit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Entry represents a single audit log entry with structured fields
type Entry struct {
	Timestamp    time.Time         `json:"timestamp"`
	Action       string            `json:"action"`
	AdminUser    string            `json:"admin_user"`
	ResourceType string            `json:"resource_type,omitempty"`
	ResourceID   string            `json:"resource_id,omitempty"`
	GalaID       string            `json:"gala_id,omitempty"`
	IPAddress    string            `json:"ip_address,omitempty"`
	Status       string            `json:"status"` // "success" or "failure"
	Details      map[string]string `json:"details,omitempty"`
}

// Actor is who performed an admin operation.
type Actor struct {
	UserID    string
	Email     string
	IPAddress string
}

func (a Actor) name() string {
	if a.Email != "" {
		return a.Email
	}
	if a.UserID != "" {
		return a.UserID
	}
	return "unknown"
}

// Logger provides structured audit logging for admin operations
type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("component", "audit").Logger()}
}

// Nop discards every entry.
func Nop() *Logger {
	return NewLogger(zerolog.Nop())
}

func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	l.logger.Info().Interface("audit", entry).Msg("audit")
}

func (l *Logger) LogSuccess(actor Actor, action, resourceType, resourceID, galaID string, details map[string]string) {
	l.Log(Entry{
		Action:       action,
		AdminUser:    actor.name(),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		GalaID:       galaID,
		IPAddress:    actor.IPAddress,
		Status:       "success",
		Details:      details,
	})
}

func (l *Logger) LogFailure(actor Actor, action, resourceType, resourceID, galaID string, details map[string]string) {
	l.Log(Entry{
		Action:       action,
		AdminUser:    actor.name(),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		GalaID:       galaID,
		IPAddress:    actor.IPAddress,
		Status:       "failure",
		Details:      details,
	})
}

// ClientIP gets the client IP from proxy headers or RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
