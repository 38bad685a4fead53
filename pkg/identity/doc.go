// Package identity decodes bearer tokens into request-scoped session identities.
//
// # Overview
//
// The decoder validates HS256-signed JWTs against a secret shared with the
// auth service and extracts the subject id, role, and organization id claims.
// It is stateless: a pure function of the Authorization header and the secret.
//
// # Usage
//
//	decoder := identity.NewDecoder(cfg.Auth.TokenSecret)
//	ident, err := decoder.Decode(r.Header.Get("Authorization"), true)
//	switch {
//	case errors.Is(err, identity.ErrTokenMissing):  // 401, ask for a token
//	case errors.Is(err, identity.ErrTokenExpired):  // 401, log in again
//	case errors.Is(err, identity.ErrTokenInvalid):  // 401, bad signature/shape
//	}
//
// # Related Packages
//
//   - pkg/policy: enforces what a decoded identity may actually call
//   - pkg/gateway: runs the decoder as the authentication gate
package identity
