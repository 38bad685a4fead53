package gateway

import (
	"errors"
	"net/http"

	"github.com/vitalmesh/vitalmesh/pkg/identity"
	"github.com/vitalmesh/vitalmesh/pkg/policy"
	"github.com/vitalmesh/vitalmesh/pkg/ratelimit"
)

// RequestState carries one request through the pipeline. Gates read the
// inbound request and record what they derive (the client id, the decoded
// identity) for later stages.
type RequestState struct {
	Request *http.Request
	Route   Route

	RequestID string
	ClientID  string
	Identity  *identity.Identity

	// PathSubject and QuerySubject are resolved from the route's subject
	// declarations before the gates run.
	PathSubject  string
	QuerySubject string
}

// Gate is one ordered pipeline stage. A nil return means the request may
// proceed; a *GateError terminates the pipeline and later gates never run.
type Gate interface {
	Name() string
	Check(state *RequestState) *GateError
}

// rateGate throttles per client and route through the shared counter store
type rateGate struct {
	limiter ratelimit.Limiter
	// failOpen decides what to do when the counter store is unreachable.
	// The store error is never swallowed silently: it is surfaced to the
	// gate, which applies this deployment knob explicitly.
	failOpen func(error) *GateError
}

func newRateGate(limiter ratelimit.Limiter, failOpen bool, onStoreError func(error)) *rateGate {
	return &rateGate{
		limiter: limiter,
		failOpen: func(err error) *GateError {
			onStoreError(err)
			if failOpen {
				return nil
			}
			return errRateLimited()
		},
	}
}

func (g *rateGate) Name() string { return "rate_limit" }

func (g *rateGate) Check(state *RequestState) *GateError {
	allowed, err := g.limiter.Allow(state.Request.Context(), state.ClientID, state.Route.Path)
	if err != nil {
		return g.failOpen(err)
	}
	if !allowed {
		return errRateLimited()
	}
	return nil
}

// authnGate decodes the bearer token into the session identity
type authnGate struct {
	decoder *identity.Decoder
}

func (g *authnGate) Name() string { return "authentication" }

func (g *authnGate) Check(state *RequestState) *GateError {
	ident, err := g.decoder.Decode(state.Request.Header.Get("Authorization"), state.Route.AuthRequired)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrTokenMissing):
			return errAuthentication("missing bearer token")
		case errors.Is(err, identity.ErrTokenExpired):
			return errAuthentication("token expired")
		default:
			return errAuthentication("invalid token")
		}
	}
	state.Identity = ident
	return nil
}

// authzGate evaluates the access policy for authenticated callers
type authzGate struct {
	engine *policy.Engine
}

func (g *authzGate) Name() string { return "authorization" }

func (g *authzGate) Check(state *RequestState) *GateError {
	// Anonymous routes carry no identity to authorize.
	if state.Identity == nil {
		return nil
	}

	req := policy.Request{
		Role:         state.Identity.Role,
		Path:         state.Request.URL.Path,
		SubjectID:    state.Identity.SubjectID,
		OrgID:        state.Identity.OrgID,
		PathSubject:  state.PathSubject,
		QuerySubject: state.QuerySubject,
	}
	if !g.engine.IsAllowed(req) {
		return errAuthorization()
	}
	return nil
}

// runGates executes the ordered stages; the first rejection wins
func runGates(gates []Gate, state *RequestState) *GateError {
	for _, gate := range gates {
		if gerr := gate.Check(state); gerr != nil {
			return gerr
		}
	}
	return nil
}
