package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/vitalmesh/vitalmesh/pkg/audit"
	"github.com/vitalmesh/vitalmesh/pkg/config"
	"github.com/vitalmesh/vitalmesh/pkg/contextkeys"
	"github.com/vitalmesh/vitalmesh/pkg/httputil"
	"github.com/vitalmesh/vitalmesh/pkg/identity"
	"github.com/vitalmesh/vitalmesh/pkg/observability"
	"github.com/vitalmesh/vitalmesh/pkg/policy"
	"github.com/vitalmesh/vitalmesh/pkg/proxy"
	"github.com/vitalmesh/vitalmesh/pkg/ratelimit"
	"github.com/vitalmesh/vitalmesh/pkg/transcode"
)

// Server is the edge entry point: it composes the request pipeline and
// serves the inbound HTTP surface.
type Server struct {
	cfg        *config.Config
	logger     *observability.Logger
	metrics    *observability.Metrics
	limiter    ratelimit.Limiter
	dispatcher *proxy.Dispatcher
	recorder   *audit.Recorder

	gates   []Gate
	router  *mux.Router
	handler http.Handler
}

// NewServer builds the gateway. Construction fails fast when a route
// references an unresolvable service or the access-rule override file is
// malformed.
func NewServer(cfg *config.Config, logger *observability.Logger, limiter ratelimit.Limiter) (*Server, error) {
	resolver, err := proxy.NewResolver(cfg.Downstream)
	if err != nil {
		return nil, fmt.Errorf("resolving downstream services: %w", err)
	}

	routes := Routes()
	if err := resolver.Validate(routeServices(routes)); err != nil {
		return nil, fmt.Errorf("validating route table: %w", err)
	}

	rules := policy.DefaultRules()
	if cfg.Policy.RulesFile != "" {
		rules, err = policy.LoadRules(cfg.Policy.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("loading access rules: %w", err)
		}
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		metrics:    observability.NewMetrics(),
		limiter:    limiter,
		dispatcher: proxy.NewDispatcher(resolver, cfg.Downstream.Timeout),
		recorder:   audit.NewRecorder(logger),
		router:     mux.NewRouter(),
	}

	// The pipeline is an explicit ordered list: first failing gate wins,
	// later gates never run. CORS/preflight runs earlier, as middleware.
	s.gates = []Gate{
		newRateGate(limiter, cfg.RateLimit.FailOpen, func(err error) {
			logger.WithError(err).Error("rate limit store unreachable")
		}),
		&authnGate{decoder: identity.NewDecoder(cfg.Auth.TokenSecret)},
		&authzGate{engine: policy.NewEngine(rules)},
	}

	s.setupRoutes(routes)

	s.handler = httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		s.metricsMiddleware,
		s.recoveryMiddleware,
		s.corsMiddleware,
		httputil.MaxBytesMiddleware(cfg.Server.MaxBodyBytes),
	)(s.router)

	return s, nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) setupRoutes(routes []Route) {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	if s.cfg.Observability.MetricsEnabled {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	for _, route := range routes {
		s.router.HandleFunc(route.Path, s.proxyHandler(route)).Methods(route.Method)
	}

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.handleNotFound)
}

// proxyHandler runs the gate pipeline for one route and dispatches on success
func (s *Server) proxyHandler(route Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := &RequestState{
			Request:   r,
			Route:     route,
			RequestID: contextkeys.GetRequestID(r.Context()),
			ClientID:  ratelimit.ClientID(r),
		}
		if route.SubjectParam != "" {
			state.PathSubject = mux.Vars(r)[route.SubjectParam]
		}
		if route.SubjectQuery != "" {
			state.QuerySubject = r.URL.Query().Get(route.SubjectQuery)
		}

		if gerr := runGates(s.gates, state); gerr != nil {
			s.auditRejection(state, gerr)
			s.renderError(w, r, gerr)
			return
		}

		s.dispatch(w, r, state)
	}
}

// dispatch forwards the authorized request and transcodes the response
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, state *RequestState) {
	fwd := proxy.ForwardRequest{
		Method:        r.Method,
		Service:       state.Route.Service,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Authorization: r.Header.Get("Authorization"),
		RequestID:     state.RequestID,
		Identity:      state.Identity,
	}

	if gerr := attachBody(r, &fwd); gerr != nil {
		s.renderError(w, r, gerr)
		return
	}

	start := time.Now()
	resp, err := s.dispatcher.Forward(r.Context(), fwd)
	if err != nil {
		s.metrics.ObserveDownstream(string(state.Route.Service), 0, time.Since(start), err)

		var de *proxy.DownstreamError
		if errors.As(err, &de) {
			observability.FromContext(r.Context(), s.logger).
				WithError(de.Err).
				WithField("service", string(de.Service)).
				Error("downstream dispatch failed")
			s.renderError(w, r, errDownstream(string(de.Service), de.Err))
			return
		}
		observability.FromContext(r.Context(), s.logger).WithError(err).Error("dispatch failed")
		s.renderError(w, r, errInternal())
		return
	}
	defer resp.Body.Close()
	s.metrics.ObserveDownstream(string(state.Route.Service), resp.StatusCode, time.Since(start), nil)

	// Read one byte past the cap so truncation is detected rather than
	// relaying a silently clipped payload.
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.Server.MaxBodyBytes+1))
	if err != nil {
		s.renderError(w, r, errDownstream(string(state.Route.Service), err))
		return
	}
	if int64(len(body)) > s.cfg.Server.MaxBodyBytes {
		s.renderError(w, r, errDownstream(string(state.Route.Service),
			fmt.Errorf("response body exceeds %d bytes", s.cfg.Server.MaxBodyBytes)))
		return
	}

	payload, rootTag := transcode.DecodeBody(resp.Header.Get("Content-Type"), body)
	format := transcode.Negotiate(r.Header.Get("Accept"))
	if err := transcode.Render(w, format, resp.StatusCode, rootTag, payload); err != nil {
		observability.FromContext(r.Context(), s.logger).WithError(err).Error("rendering response failed")
	}
}

// attachBody prepares the outbound body. JSON bodies are validated before
// forwarding; multipart and binary bodies stream through untouched.
func attachBody(r *http.Request, fwd *proxy.ForwardRequest) *GateError {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	contentType := r.Header.Get("Content-Type")
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	mediaType = strings.TrimSpace(mediaType)

	if mediaType == "" || mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return errBadRequest("request body unreadable or too large")
		}
		if len(body) > 0 && !json.Valid(body) {
			return errBadRequest("request body is not valid JSON")
		}
		fwd.Body = bytes.NewReader(body)
		return nil
	}

	fwd.Body = r.Body
	fwd.ContentType = contentType
	return nil
}

// renderError is the single choke point that turns a typed gate condition
// into the client-visible error envelope.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, gerr *GateError) {
	s.metrics.GateRejectionsTotal.WithLabelValues(string(gerr.Code)).Inc()

	format := transcode.Negotiate(r.Header.Get("Accept"))
	body := transcode.NewErrorBody(string(gerr.Code), gerr.Message, contextkeys.GetRequestID(r.Context()), gerr.Details)
	if err := transcode.RenderError(w, format, gerr.Status, body); err != nil {
		observability.FromContext(r.Context(), s.logger).WithError(err).Error("rendering error failed")
	}
}

func (s *Server) auditRejection(state *RequestState, gerr *GateError) {
	event := audit.Event{
		RequestID: state.RequestID,
		Method:    state.Request.Method,
		Path:      state.Request.URL.Path,
		Reason:    gerr.Message,
		ClientIP:  state.ClientID,
	}
	if state.Identity != nil {
		event.Subject = state.Identity.SubjectID
		event.Role = state.Identity.Role
	}

	switch gerr.Code {
	case CodeRateLimited:
		event.Type = audit.EventRateLimited
	case CodeAuthenticationFailed:
		event.Type = audit.EventAuthFailed
	case CodeAuthorizationFailed:
		event.Type = audit.EventAccessDenied
	default:
		return
	}
	s.recorder.Record(event)
}

// recoveryMiddleware turns panics into the generic internal error, with
// the full context in the log only
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				observability.FromContext(r.Context(), s.logger).
					WithField("panic", fmt.Sprintf("%v", rec)).
					WithField("stack", string(debug.Stack())).
					WithField("path", r.URL.Path).
					Error("panic recovered")
				s.renderError(w, r, errInternal())
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request count and duration per route template
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := httputil.NewResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.metrics.ObserveRequest(r.Method, s.routeTemplate(r), rw.Status, time.Since(start))
	})
}

// routeTemplate resolves the matched route's path template so metric label
// cardinality stays bounded
func (s *Server) routeTemplate(r *http.Request) string {
	var match mux.RouteMatch
	if s.router.Match(r, &match) && match.Route != nil {
		if tmpl, err := match.Route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.renderStatus(w, r, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "gateway",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.Ping(r.Context()); err != nil {
		s.renderStatus(w, r, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	s.renderStatus(w, r, http.StatusOK, map[string]interface{}{
		"status": "ready",
	})
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, payload map[string]interface{}) {
	format := transcode.Negotiate(r.Header.Get("Accept"))
	if err := transcode.Render(w, format, status, "health", payload); err != nil {
		observability.FromContext(r.Context(), s.logger).WithError(err).Error("rendering response failed")
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, &GateError{
		Code:    CodeBadRequest,
		Status:  http.StatusNotFound,
		Message: "no such route",
	})
}
