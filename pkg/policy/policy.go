package policy

import (
	"strings"

	"github.com/vitalmesh/vitalmesh/pkg/identity"
)

// Predicate names a contextual check applied after the role check passes.
type Predicate string

const (
	// PredicateNone applies no contextual check.
	PredicateNone Predicate = ""
	// PredicateSelf requires the path's implied subject to equal the token
	// subject, unless the caller holds an org-level elevated role.
	PredicateSelf Predicate = "self"
	// PredicateOwnRecords restricts a non-privileged role to querying only
	// records about itself.
	PredicateOwnRecords Predicate = "own_records"
)

// Rule maps a route prefix to the roles allowed on that prefix, plus an
// optional contextual predicate. Rules are static configuration loaded once
// at process start.
type Rule struct {
	// Prefix matches exactly, on a /-delimited boundary, or with an
	// explicit "/*" suffix.
	Prefix string `yaml:"prefix"`
	// Roles allowed on this prefix.
	Roles []string `yaml:"roles"`
	// Predicate optionally names a contextual check.
	Predicate Predicate `yaml:"predicate,omitempty"`
}

// Request carries everything the engine needs to decide one call.
type Request struct {
	Role      string
	Path      string
	SubjectID string
	OrgID     string

	// PathSubject is the subject id implied by the path (e.g. /user/{id}),
	// empty when the route has none.
	PathSubject string
	// QuerySubject is the subject id requested via query parameter,
	// empty when absent.
	QuerySubject string
}

// Engine evaluates access rules. It has no I/O and cannot fail: evaluation
// is a deterministic function of the rule table and the request.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over an insertion-ordered rule table
func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// IsAllowed decides whether the call is permitted.
//
// The admin role is allowed unconditionally (operator escape hatch). Otherwise
// the first rule whose prefix matches the path wins. When no rule matches,
// only the two non-interactive roles (device, system) are allowed: device
// telemetry ingestion reaches paths the interactive rule table does not
// declare. That fallback is deliberately permissive and intentional; tighten
// it only together with the ingestion routes that depend on it.
func (e *Engine) IsAllowed(req Request) bool {
	if req.Role == identity.RoleAdmin {
		return true
	}

	for _, rule := range e.rules {
		if !prefixMatches(rule.Prefix, req.Path) {
			continue
		}
		if !roleAllowed(rule.Roles, req.Role) {
			return false
		}
		return predicateAllows(rule.Predicate, req)
	}

	return req.Role == identity.RoleDevice || req.Role == identity.RoleSystem
}

// prefixMatches reports whether path falls under prefix: exact match,
// prefix match on a /-delimited boundary, or an explicit "/*" wildcard.
func prefixMatches(prefix, path string) bool {
	if base, ok := strings.CutSuffix(prefix, "/*"); ok {
		return path == base || strings.HasPrefix(path, base+"/")
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func roleAllowed(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func predicateAllows(p Predicate, req Request) bool {
	switch p {
	case PredicateSelf:
		if req.PathSubject == "" || req.PathSubject == req.SubjectID {
			return true
		}
		return req.Role == identity.RoleOrgAdmin
	case PredicateOwnRecords:
		if req.Role != identity.RoleUser {
			return true
		}
		return req.QuerySubject == "" || req.QuerySubject == req.SubjectID
	default:
		return true
	}
}
