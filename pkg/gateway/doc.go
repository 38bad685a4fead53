// Package gateway composes the edge request pipeline and serves the
// platform's public HTTP surface.
//
// # Overview
//
// Every inbound request passes through the same ordered stages:
//
//  1. Request ID assignment and access logging (httputil middleware)
//  2. CORS enforcement, including the preflight short-circuit
//  3. Rate limiting keyed by client and route
//  4. Bearer token authentication
//  5. Role and ownership authorization
//  6. Downstream dispatch and response transcoding
//
// Stages 3 to 5 are Gates: small checks that either pass or produce a
// typed *GateError. The first failing gate wins and later gates never
// run, so an unauthenticated client that is over budget always sees the
// rate limit error, never the authentication one.
//
// All failures, whatever their origin, leave through a single choke
// point that renders the unified error envelope in the client's
// negotiated format. Handlers never write error bodies directly.
//
// The route table in routes.go is the complete public surface. Each
// route names its backing service and whether it requires
// authentication; paths are forwarded to services verbatim, with the
// caller's identity injected as X-User-ID, X-User-Role and X-Org-ID
// headers.
package gateway
