package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestDecode_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":    "patient-42",
		"role":   "user",
		"org_id": "org-7",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	ident, err := NewDecoder(testSecret).Decode("Bearer "+token, true)
	require.NoError(t, err)
	assert.Equal(t, "patient-42", ident.SubjectID)
	assert.Equal(t, "user", ident.Role)
	assert.Equal(t, "org-7", ident.OrgID)
	assert.Equal(t, "patient-42", ident.Claims["sub"])
}

func TestDecode_MissingHeader(t *testing.T) {
	d := NewDecoder(testSecret)

	ident, err := d.Decode("", true)
	assert.Nil(t, ident)
	assert.ErrorIs(t, err, ErrTokenMissing)

	// Anonymous routes tolerate an absent header.
	ident, err = d.Decode("", false)
	assert.Nil(t, ident)
	assert.NoError(t, err)
}

func TestDecode_MalformedHeader(t *testing.T) {
	d := NewDecoder(testSecret)
	for _, header := range []string{"Bearer", "Basic abc123", "Bearer "} {
		_, err := d.Decode(header, true)
		assert.ErrorIs(t, err, ErrTokenMissing, "header %q", header)
	}
}

func TestDecode_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "patient-42",
		"role": "user",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	_, err := NewDecoder(testSecret).Decode("Bearer "+token, true)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecode_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "patient-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := NewDecoder(testSecret).Decode("Bearer "+token, true)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.False(t, errors.Is(err, ErrTokenExpired))
}

func TestDecode_MissingClaimsYieldEmptyValues(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	ident, err := NewDecoder(testSecret).Decode("Bearer "+token, true)
	require.NoError(t, err)
	assert.Empty(t, ident.SubjectID)
	assert.Empty(t, ident.Role)
	assert.Empty(t, ident.OrgID)
}

func TestDecode_RejectsUnsignedToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"})
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewDecoder(testSecret).Decode("Bearer "+unsigned, true)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
