package gateway

import (
	"net/http"

	"github.com/vitalmesh/vitalmesh/pkg/audit"
	"github.com/vitalmesh/vitalmesh/pkg/contextkeys"
	"github.com/vitalmesh/vitalmesh/pkg/ratelimit"
)

// corsMiddleware handles cross-origin negotiation for every request.
//
// Headers are attached up front so they accompany every response no matter
// which pipeline stage terminates the request. Preflight requests
// short-circuit with a bare 204 before any other stage, and a disallowed
// Origin is rejected before rate limiting.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		}
		// Caches must not conflate cross-origin variants.
		w.Header().Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if origin != "" && !s.originAllowed(origin) {
			s.recorder.Record(audit.Event{
				Type:      audit.EventOriginRejected,
				RequestID: contextkeys.GetRequestID(r.Context()),
				Method:    r.Method,
				Path:      r.URL.Path,
				Reason:    "origin not in allow-list",
				ClientIP:  ratelimit.ClientID(r),
			})
			s.renderError(w, r, errOriginRejected(origin))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.cfg.CORS.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
