package gateway

import (
	"net/http"

	"github.com/vitalmesh/vitalmesh/pkg/proxy"
)

// Route declares one inbound endpoint: its method and path, whether a
// bearer token is required, and the logical service that owns it. The
// downstream receives the inbound path verbatim.
type Route struct {
	Method       string
	Path         string
	AuthRequired bool
	Service      proxy.Service

	// SubjectParam names the mux path variable that implies a subject id
	// (the policy "self" predicate compares it against the token subject).
	SubjectParam string
	// SubjectQuery names the query parameter that requests records about
	// a specific subject (the "own_records" predicate scopes it).
	SubjectQuery string
}

// Routes returns the full inbound surface. Every Service named here must
// resolve at startup; NewServer fails fast otherwise.
func Routes() []Route {
	return []Route{
		// Auth pass-through. Registration, login and refresh are anonymous
		// by design: the caller has no token yet.
		{Method: http.MethodPost, Path: "/auth/register", Service: proxy.ServiceAuth},
		{Method: http.MethodPost, Path: "/auth/login", Service: proxy.ServiceAuth},
		{Method: http.MethodPost, Path: "/auth/refresh", Service: proxy.ServiceAuth},
		{Method: http.MethodGet, Path: "/auth/me", AuthRequired: true, Service: proxy.ServiceAuth},
		{Method: http.MethodPost, Path: "/auth/logout", AuthRequired: true, Service: proxy.ServiceAuth},

		// User profiles.
		{Method: http.MethodGet, Path: "/user/me", AuthRequired: true, Service: proxy.ServiceUser},
		{Method: http.MethodPut, Path: "/user/me", AuthRequired: true, Service: proxy.ServiceUser},
		{Method: http.MethodGet, Path: "/user/{id}", AuthRequired: true, Service: proxy.ServiceUser, SubjectParam: "id"},
		{Method: http.MethodPut, Path: "/user/{id}", AuthRequired: true, Service: proxy.ServiceUser, SubjectParam: "id"},

		// Organization dashboards.
		{Method: http.MethodGet, Path: "/organization/info", AuthRequired: true, Service: proxy.ServiceOrg},
		{Method: http.MethodGet, Path: "/organization/members", AuthRequired: true, Service: proxy.ServiceOrg},
		{Method: http.MethodGet, Path: "/organization/dashboard", AuthRequired: true, Service: proxy.ServiceOrg},

		// Media uploads pass multipart bodies through untouched.
		{Method: http.MethodPost, Path: "/media/upload", AuthRequired: true, Service: proxy.ServiceMedia},
		{Method: http.MethodGet, Path: "/media/{id}", AuthRequired: true, Service: proxy.ServiceMedia},

		// Vital-sign time series: device ingestion plus scoped queries.
		{Method: http.MethodPost, Path: "/timeseries/ingest", AuthRequired: true, Service: proxy.ServiceTimeseries},
		{Method: http.MethodGet, Path: "/timeseries/query", AuthRequired: true, Service: proxy.ServiceTimeseries, SubjectQuery: "patient_id"},
		{Method: http.MethodGet, Path: "/timeseries/latest", AuthRequired: true, Service: proxy.ServiceTimeseries, SubjectQuery: "patient_id"},

		// Audit trail, org-scoped.
		{Method: http.MethodGet, Path: "/audit/logs", AuthRequired: true, Service: proxy.ServiceAudit},

		// Alerts.
		{Method: http.MethodGet, Path: "/alert", AuthRequired: true, Service: proxy.ServiceAlert},
		{Method: http.MethodPost, Path: "/alert", AuthRequired: true, Service: proxy.ServiceAlert},
		{Method: http.MethodGet, Path: "/alert/{id}", AuthRequired: true, Service: proxy.ServiceAlert},
		{Method: http.MethodPut, Path: "/alert/{id}/acknowledge", AuthRequired: true, Service: proxy.ServiceAlert},

		// Device registry and heartbeats.
		{Method: http.MethodGet, Path: "/device", AuthRequired: true, Service: proxy.ServiceDevice},
		{Method: http.MethodPost, Path: "/device/{id}/heartbeat", AuthRequired: true, Service: proxy.ServiceDevice},
		{Method: http.MethodGet, Path: "/device/{id}", AuthRequired: true, Service: proxy.ServiceDevice},
	}
}

// routeServices collects the distinct services the route table references
func routeServices(routes []Route) []proxy.Service {
	seen := make(map[proxy.Service]bool)
	var services []proxy.Service
	for _, route := range routes {
		if !seen[route.Service] {
			seen[route.Service] = true
			services = append(services, route.Service)
		}
	}
	return services
}
