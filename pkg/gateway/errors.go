package gateway

import "net/http"

// Code identifies one variant of the gateway error taxonomy
type Code string

const (
	CodeOriginRejected        Code = "origin_rejected"
	CodeRateLimited           Code = "rate_limited"
	CodeAuthenticationFailed  Code = "authentication_failed"
	CodeAuthorizationFailed   Code = "authorization_failed"
	CodeBadRequest            Code = "bad_request"
	CodeDownstreamUnavailable Code = "downstream_unavailable"
	CodeInternalError         Code = "internal_error"
)

// GateError is the typed condition a pipeline stage returns on rejection.
// Stages never write to the wire themselves; the pipeline renders every
// GateError through the transcoder at one choke point.
type GateError struct {
	Code    Code
	Status  int
	Message string
	Details map[string]interface{}
}

func (e *GateError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func errOriginRejected(origin string) *GateError {
	return &GateError{
		Code:    CodeOriginRejected,
		Status:  http.StatusForbidden,
		Message: "origin not allowed",
		Details: map[string]interface{}{"origin": origin},
	}
}

func errRateLimited() *GateError {
	return &GateError{
		Code:    CodeRateLimited,
		Status:  http.StatusTooManyRequests,
		Message: "rate limit exceeded",
	}
}

func errAuthentication(message string) *GateError {
	return &GateError{
		Code:    CodeAuthenticationFailed,
		Status:  http.StatusUnauthorized,
		Message: message,
	}
}

func errAuthorization() *GateError {
	return &GateError{
		Code:    CodeAuthorizationFailed,
		Status:  http.StatusForbidden,
		Message: "insufficient permissions for this resource",
	}
}

func errBadRequest(message string) *GateError {
	return &GateError{
		Code:    CodeBadRequest,
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

func errDownstream(service string, cause error) *GateError {
	return &GateError{
		Code:    CodeDownstreamUnavailable,
		Status:  http.StatusBadGateway,
		Message: "downstream service unavailable",
		Details: map[string]interface{}{
			"service": service,
			"error":   cause.Error(),
		},
	}
}

func errInternal() *GateError {
	// Never expose internals beyond a generic message; the full context
	// goes to the log.
	return &GateError{
		Code:    CodeInternalError,
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
	}
}
