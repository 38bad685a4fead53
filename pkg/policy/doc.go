// Package policy implements role- and organization-scoped access control for gateway routes.
//
// # Overview
//
// The engine maps route prefixes to allowed roles with optional contextual
// predicates ("self", "own_records"). The admin role bypasses the table
// entirely. Evaluation is pure in-memory computation: deterministic, no I/O,
// no hidden state.
//
// # Rule Table
//
// The built-in table covers every declared route prefix. Deployments can
// replace it with a YAML file:
//
//	rules:
//	  - prefix: /user
//	    roles: [user, org_admin]
//	    predicate: self
//	  - prefix: /timeseries
//	    roles: [user, org_admin, device, system]
//	    predicate: own_records
//
// # Undeclared Paths
//
// Paths no rule covers are denied except for the device and system roles,
// which machine-to-machine ingestion depends on. See Engine.IsAllowed.
//
// # Related Packages
//
//   - pkg/identity: supplies the decoded role and subject
//   - pkg/gateway: runs the engine as the authorization gate
package policy
