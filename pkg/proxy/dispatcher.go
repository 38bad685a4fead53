package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vitalmesh/vitalmesh/pkg/identity"
)

// Identity headers injected on forwarded requests so downstream services
// can trust the gateway's authentication without re-validating the token.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderOrgID     = "X-Org-ID"
)

// DownstreamError reports a network or timeout failure reaching a backend
// service. It carries the failing service name for the error envelope.
type DownstreamError struct {
	Service Service
	Err     error
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("downstream %s unavailable: %v", e.Service, e.Err)
}

func (e *DownstreamError) Unwrap() error {
	return e.Err
}

// ForwardRequest describes one outbound call to a backend service
type ForwardRequest struct {
	Method  string
	Service Service
	// Path is the inbound request path, forwarded to the service verbatim.
	Path  string
	Query url.Values

	// Body is streamed through unchanged; ContentType declares its type.
	// A JSON body with an empty ContentType gets application/json.
	Body        io.Reader
	ContentType string

	// Authorization is the original inbound header, forwarded verbatim.
	Authorization string
	RequestID     string
	Identity      *identity.Identity
}

// Dispatcher forwards authorized requests to backend services. Each inbound
// request produces at most one downstream attempt: failures surface
// immediately and are never retried here.
type Dispatcher struct {
	resolver *Resolver
	client   *http.Client
}

// NewDispatcher creates a dispatcher with a bounded request timeout
func NewDispatcher(resolver *Resolver, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Forward sends the request to the owning backend service. The caller owns
// the returned response body. Connection failures and timeouts come back as
// a *DownstreamError; non-2xx downstream statuses are not errors here, the
// transcoder relays them to the client.
func (d *Dispatcher) Forward(ctx context.Context, req ForwardRequest) (*http.Response, error) {
	base, ok := d.resolver.BaseURL(req.Service)
	if !ok {
		// Unreachable when the route table was validated at startup.
		return nil, fmt.Errorf("unknown service %q", req.Service)
	}

	target := *base
	target.Path = singleJoin(base.Path, req.Path)
	if req.Query != nil {
		target.RawQuery = req.Query.Encode()
	}

	outbound, err := http.NewRequestWithContext(ctx, req.Method, target.String(), req.Body)
	if err != nil {
		return nil, fmt.Errorf("building downstream request: %w", err)
	}

	outbound.Header.Set("Accept", "application/json")
	if req.RequestID != "" {
		outbound.Header.Set(HeaderRequestID, req.RequestID)
	}
	if req.Authorization != "" {
		outbound.Header.Set("Authorization", req.Authorization)
	}
	if req.Identity != nil {
		outbound.Header.Set(HeaderUserID, req.Identity.SubjectID)
		outbound.Header.Set(HeaderUserRole, req.Identity.Role)
		if req.Identity.OrgID != "" {
			outbound.Header.Set(HeaderOrgID, req.Identity.OrgID)
		}
	}
	if req.Body != nil {
		if req.ContentType != "" {
			// Multipart and binary bodies pass through with their original type.
			outbound.Header.Set("Content-Type", req.ContentType)
		} else {
			outbound.Header.Set("Content-Type", "application/json")
		}
	}

	resp, err := d.client.Do(outbound)
	if err != nil {
		return nil, &DownstreamError{Service: req.Service, Err: err}
	}

	return resp, nil
}

func singleJoin(base, path string) string {
	switch {
	case base == "" || base == "/":
		return path
	case len(base) > 0 && base[len(base)-1] == '/':
		return base[:len(base)-1] + path
	default:
		return base + path
	}
}
