package proxy

import (
	"fmt"
	"net/url"

	"github.com/vitalmesh/vitalmesh/pkg/config"
)

// Service is a logical backend service name. The set is closed: every route
// declares exactly one of these, and the resolver verifies at startup that
// each one has a base URL, so a typo fails at boot instead of at request time.
type Service string

const (
	ServiceAuth       Service = "auth"
	ServiceUser       Service = "user"
	ServiceOrg        Service = "org"
	ServiceMedia      Service = "media"
	ServiceTimeseries Service = "timeseries"
	ServiceAudit      Service = "audit"
	ServiceAlert      Service = "alert"
	ServiceDevice     Service = "device"
)

// AllServices lists every known logical service
func AllServices() []Service {
	return []Service{
		ServiceAuth,
		ServiceUser,
		ServiceOrg,
		ServiceMedia,
		ServiceTimeseries,
		ServiceAudit,
		ServiceAlert,
		ServiceDevice,
	}
}

// Resolver maps logical service names to parsed base URLs
type Resolver struct {
	urls map[Service]*url.URL
}

// NewResolver builds a resolver from downstream configuration, parsing and
// validating every base URL up front.
func NewResolver(cfg config.DownstreamConfig) (*Resolver, error) {
	raw := cfg.URLs()
	urls := make(map[Service]*url.URL, len(raw))

	for _, svc := range AllServices() {
		base, ok := raw[string(svc)]
		if !ok || base == "" {
			return nil, fmt.Errorf("no base URL configured for service %q", svc)
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL for service %q: %w", svc, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("base URL for service %q must be absolute: %q", svc, base)
		}
		urls[svc] = parsed
	}

	return &Resolver{urls: urls}, nil
}

// BaseURL returns the base URL for a logical service
func (r *Resolver) BaseURL(svc Service) (*url.URL, bool) {
	u, ok := r.urls[svc]
	return u, ok
}

// Validate confirms that every referenced service resolves. Called at
// startup with the services the route table declares.
func (r *Resolver) Validate(required []Service) error {
	for _, svc := range required {
		if _, ok := r.urls[svc]; !ok {
			return fmt.Errorf("route references unresolvable service %q", svc)
		}
	}
	return nil
}
