package policy

import (
	"fmt"
	"os"

	"github.com/vitalmesh/vitalmesh/pkg/identity"
	"gopkg.in/yaml.v3"
)

// DefaultRules returns the built-in access-rule table. Order matters:
// matching is first-match-wins, and each declared path must fall under
// exactly one rule bucket.
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "/auth", Roles: allRoles()},
		{Prefix: "/user", Roles: []string{identity.RoleUser, identity.RoleOrgAdmin}, Predicate: PredicateSelf},
		{Prefix: "/organization", Roles: []string{identity.RoleOrgAdmin}},
		{Prefix: "/media", Roles: []string{identity.RoleUser, identity.RoleOrgAdmin}},
		{Prefix: "/timeseries", Roles: []string{identity.RoleUser, identity.RoleOrgAdmin, identity.RoleDevice, identity.RoleSystem}, Predicate: PredicateOwnRecords},
		{Prefix: "/audit", Roles: []string{identity.RoleOrgAdmin}},
		{Prefix: "/alert", Roles: []string{identity.RoleUser, identity.RoleOrgAdmin, identity.RoleSystem}},
		{Prefix: "/device", Roles: []string{identity.RoleOrgAdmin, identity.RoleDevice, identity.RoleSystem}},
	}
}

func allRoles() []string {
	return []string{
		identity.RoleAdmin,
		identity.RoleOrgAdmin,
		identity.RoleUser,
		identity.RoleDevice,
		identity.RoleSystem,
	}
}

// ruleFile is the YAML shape of an access-rule override file
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads an access-rule table from a YAML file. The file replaces
// the built-in table wholesale; it is parsed once at startup and any
// malformed entry fails the process.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading access rules: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing access rules: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("access rules file %s declares no rules", path)
	}

	for i, rule := range file.Rules {
		if err := validateRule(rule); err != nil {
			return nil, fmt.Errorf("access rule %d: %w", i, err)
		}
	}

	return file.Rules, nil
}

func validateRule(rule Rule) error {
	if rule.Prefix == "" || rule.Prefix[0] != '/' {
		return fmt.Errorf("prefix %q must start with /", rule.Prefix)
	}
	if len(rule.Roles) == 0 {
		return fmt.Errorf("prefix %q declares no roles", rule.Prefix)
	}
	switch rule.Predicate {
	case PredicateNone, PredicateSelf, PredicateOwnRecords:
		return nil
	default:
		return fmt.Errorf("unknown predicate %q", rule.Predicate)
	}
}
