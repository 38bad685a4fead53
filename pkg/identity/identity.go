package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Role values the platform issues today. The set is open-ended: the policy
// engine treats roles as plain strings so new roles can ship without a
// gateway release.
const (
	RoleAdmin    = "admin"
	RoleOrgAdmin = "org_admin"
	RoleUser     = "user"
	RoleDevice   = "device"
	RoleSystem   = "system"
)

// Decode failure reasons. The pipeline maps all three to 401 but keeps the
// reason in the client-visible message so "log in again" is distinguishable
// from "send a token at all".
var (
	ErrTokenMissing = errors.New("missing bearer token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Identity is the request-scoped representation of an authenticated caller.
// It is derived once per request from a valid bearer token, never persisted,
// and immutable after Decode returns.
type Identity struct {
	SubjectID string
	Role      string
	OrgID     string

	// Claims is the raw decoded claim set, kept for contextual policy checks.
	Claims map[string]interface{}
}

// Decoder validates bearer tokens against the shared HS256 secret.
// Decoding is a pure function of the header value and the secret.
type Decoder struct {
	secret []byte
}

// NewDecoder creates a token decoder for the given shared secret
func NewDecoder(secret string) *Decoder {
	return &Decoder{secret: []byte(secret)}
}

// Decode extracts and validates the bearer token from an Authorization
// header value. An absent header is only an error when required is true;
// anonymous routes (login, registration, health) pass required=false and
// receive a nil Identity.
func (d *Decoder) Decode(authHeader string, required bool) (*Identity, error) {
	token, ok := bearerToken(authHeader)
	if !ok {
		if !required {
			return nil, nil
		}
		return nil, ErrTokenMissing
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return d.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	// Claims are advisory: missing ones yield empty values and the policy
	// engine enforces what each route actually requires.
	return &Identity{
		SubjectID: stringClaim(claims, "sub"),
		Role:      stringClaim(claims, "role"),
		OrgID:     stringClaim(claims, "org_id"),
		Claims:    claims,
	}, nil
}

// bearerToken extracts the token from a "Bearer <token>" header value
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
