package audit

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/vitalmesh/vitalmesh/pkg/observability"
)

func TestRecord_EmitsStructuredEvent(t *testing.T) {
	var buf bytes.Buffer
	recorder := NewRecorder(observability.NewLogger(observability.InfoLevel, &buf))

	recorder.Record(Event{
		Type:      EventAccessDenied,
		RequestID: "req-1",
		Subject:   "u1",
		Role:      "user",
		Method:    "GET",
		Path:      "/organization/info",
		Reason:    "role not permitted",
		ClientIP:  "203.0.113.9",
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("event is not JSON: %v", err)
	}
	if entry["audit_event"] != "authz.access_denied" {
		t.Errorf("audit_event = %v", entry["audit_event"])
	}
	if entry["path"] != "/organization/info" {
		t.Errorf("path = %v", entry["path"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
}

func TestRecord_NilRecorderIsSafe(t *testing.T) {
	var recorder *Recorder
	recorder.Record(Event{Type: EventAuthFailed})
}
