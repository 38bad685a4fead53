package transcode

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultRootTag is the XML root for payloads with no better name
const DefaultRootTag = "response"

// ErrorRootTag is the XML root for error envelopes, kept distinct from
// success payloads
const ErrorRootTag = "error"

// ErrorBody is the normalized error shape every failure renders through
type ErrorBody struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id"`
	Timestamp string                 `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// NewErrorBody builds an error envelope stamped with the current time
func NewErrorBody(code, message, requestID string, details map[string]interface{}) ErrorBody {
	return ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   details,
	}
}

// DecodeBody interprets a downstream response body by its Content-Type and
// returns the structured payload plus the root tag to use when the client
// negotiated XML.
//
// JSON bodies pass through as structured data. XML bodies are parsed into a
// map; because an XML document always collapses to a single root, the root's
// value becomes the payload and its tag name the client-visible root, so
// proxying through different downstream encodings never leaks encoding
// artifacts. Anything else is wrapped as {"raw": <text>}.
func DecodeBody(contentType string, body []byte) (payload interface{}, rootTag string) {
	if len(body) == 0 {
		return map[string]interface{}{}, DefaultRootTag
	}

	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	mediaType = strings.TrimSpace(mediaType)

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		var decoded interface{}
		if err := json.Unmarshal(body, &decoded); err != nil {
			return map[string]interface{}{"raw": string(body)}, DefaultRootTag
		}
		return decoded, DefaultRootTag
	case mediaType == "application/xml" || mediaType == "text/xml" || strings.HasSuffix(mediaType, "+xml"):
		tag, value, err := unmarshalXML(body)
		if err != nil {
			return map[string]interface{}{"raw": string(body)}, DefaultRootTag
		}
		return value, tag
	default:
		return map[string]interface{}{"raw": string(body)}, DefaultRootTag
	}
}

// Render writes the payload in the negotiated format. Non-object payloads
// (bare arrays, scalars) are wrapped under a "data" key so the envelope is
// always a single object.
func Render(w http.ResponseWriter, format Format, status int, rootTag string, payload interface{}) error {
	payload = envelope(payload)
	if rootTag == "" {
		rootTag = DefaultRootTag
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(status)

	if format == FormatXML {
		data, err := marshalXML(rootTag, payload)
		if err != nil {
			return fmt.Errorf("encoding xml response: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	return json.NewEncoder(w).Encode(payload)
}

// RenderError writes the normalized error envelope in the negotiated format:
// {"error": {code, message, request_id, timestamp, details?}}.
func RenderError(w http.ResponseWriter, format Format, status int, body ErrorBody) error {
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(status)

	if format == FormatXML {
		data, err := marshalXML(ErrorRootTag, errorMap(body))
		if err != nil {
			return fmt.Errorf("encoding xml error: %w", err)
		}
		_, err = w.Write(data)
		return err
	}

	return json.NewEncoder(w).Encode(map[string]interface{}{"error": body})
}

func envelope(payload interface{}) interface{} {
	if payload == nil {
		return map[string]interface{}{}
	}
	if _, ok := payload.(map[string]interface{}); ok {
		return payload
	}
	return map[string]interface{}{"data": payload}
}

func errorMap(body ErrorBody) map[string]interface{} {
	m := map[string]interface{}{
		"code":       body.Code,
		"message":    body.Message,
		"request_id": body.RequestID,
		"timestamp":  body.Timestamp,
	}
	if len(body.Details) > 0 {
		m["details"] = body.Details
	}
	return m
}
