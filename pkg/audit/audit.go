// Package audit records security-relevant gateway decisions as structured events.
//
// The gateway never persists audit data itself; events are emitted through
// the structured logger so the log pipeline (or the downstream audit
// service) can collect them.
package audit

import (
	"github.com/vitalmesh/vitalmesh/pkg/observability"
)

// EventType categorizes a security event
type EventType string

const (
	EventAuthFailed     EventType = "auth.token_rejected"
	EventAccessDenied   EventType = "authz.access_denied"
	EventRateLimited    EventType = "ratelimit.exceeded"
	EventOriginRejected EventType = "cors.origin_rejected"
)

// Event is one security decision worth keeping
type Event struct {
	Type      EventType
	RequestID string
	Subject   string
	Role      string
	Method    string
	Path      string
	Reason    string
	ClientIP  string
}

// Recorder emits security events
type Recorder struct {
	logger *observability.Logger
}

// NewRecorder creates a logger-backed event recorder
func NewRecorder(logger *observability.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Record emits one event at warn level with a stable field set
func (r *Recorder) Record(event Event) {
	if r == nil || r.logger == nil {
		return
	}
	r.logger.WithFields(map[string]interface{}{
		"audit_event": string(event.Type),
		"request_id":  event.RequestID,
		"subject":     event.Subject,
		"role":        event.Role,
		"method":      event.Method,
		"path":        event.Path,
		"reason":      event.Reason,
		"client_ip":   event.ClientIP,
	}).Warn("security event")
}
