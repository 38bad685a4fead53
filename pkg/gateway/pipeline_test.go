package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLimiter lets tests force any limiter outcome
type stubLimiter struct {
	allowed bool
	err     error
}

func (s *stubLimiter) Allow(ctx context.Context, clientID, routePath string) (bool, error) {
	return s.allowed, s.err
}

func (s *stubLimiter) Ping(ctx context.Context) error { return s.err }

type stubGate struct {
	name   string
	result *GateError
	calls  *[]string
}

func (g *stubGate) Name() string { return g.name }

func (g *stubGate) Check(state *RequestState) *GateError {
	*g.calls = append(*g.calls, g.name)
	return g.result
}

func newState(method, target string) *RequestState {
	return &RequestState{
		Request:  httptest.NewRequest(method, target, nil),
		Route:    Route{Method: method, Path: target},
		ClientID: "10.0.0.1",
	}
}

func TestRunGatesFirstFailureWins(t *testing.T) {
	var calls []string
	gates := []Gate{
		&stubGate{name: "first", calls: &calls},
		&stubGate{name: "second", calls: &calls, result: errRateLimited()},
		&stubGate{name: "third", calls: &calls},
	}

	gerr := runGates(gates, newState(http.MethodGet, "/user/me"))

	require.NotNil(t, gerr)
	assert.Equal(t, CodeRateLimited, gerr.Code)
	assert.Equal(t, []string{"first", "second"}, calls, "later gates must not run")
}

func TestRunGatesAllPass(t *testing.T) {
	var calls []string
	gates := []Gate{
		&stubGate{name: "first", calls: &calls},
		&stubGate{name: "second", calls: &calls},
	}

	assert.Nil(t, runGates(gates, newState(http.MethodGet, "/user/me")))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestRateGateOverBudget(t *testing.T) {
	gate := newRateGate(&stubLimiter{allowed: false}, true, func(error) {})

	gerr := gate.Check(newState(http.MethodGet, "/user/me"))

	require.NotNil(t, gerr)
	assert.Equal(t, CodeRateLimited, gerr.Code)
	assert.Equal(t, http.StatusTooManyRequests, gerr.Status)
}

func TestRateGateStoreErrorFailOpen(t *testing.T) {
	var seen error
	gate := newRateGate(&stubLimiter{err: errors.New("connection refused")}, true, func(err error) {
		seen = err
	})

	gerr := gate.Check(newState(http.MethodGet, "/user/me"))

	assert.Nil(t, gerr, "fail-open must admit the request")
	require.Error(t, seen, "the store error must still be reported")
	assert.Contains(t, seen.Error(), "connection refused")
}

func TestRateGateStoreErrorFailClosed(t *testing.T) {
	var seen error
	gate := newRateGate(&stubLimiter{err: errors.New("connection refused")}, false, func(err error) {
		seen = err
	})

	gerr := gate.Check(newState(http.MethodGet, "/user/me"))

	require.NotNil(t, gerr, "fail-closed must reject the request")
	assert.Equal(t, CodeRateLimited, gerr.Code)
	require.Error(t, seen)
}

func TestRoutesDeclareKnownServicesOnly(t *testing.T) {
	known := make(map[string]bool)
	for _, svc := range routeServices(Routes()) {
		known[string(svc)] = true
	}
	for _, svc := range []string{"auth", "user", "org", "media", "timeseries", "audit", "alert", "device"} {
		assert.True(t, known[svc], "route table should cover service %q", svc)
	}
}

func TestAnonymousRoutesAreTheAuthEntryPoints(t *testing.T) {
	for _, route := range Routes() {
		if !route.AuthRequired {
			assert.True(t, route.Path == "/auth/register" || route.Path == "/auth/login" || route.Path == "/auth/refresh",
				"unexpected anonymous route %s", route.Path)
		}
	}
}
