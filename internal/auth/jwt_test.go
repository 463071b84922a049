package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16-chars!!"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	return ts
}

// =========================================================================
// CONSTRUCTION
// =========================================================================

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	assert.Error(t, err, "secrets under 16 chars are rejected")

	ts, err := NewTokenService("this-is-16-chars", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, ts.TTL(), "zero TTL falls back to the default")
}

// =========================================================================
// GENERATE / VALIDATE
// =========================================================================

func TestGenerateValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("cv37rs3pp9olc6atsptg")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."), "header.claims.signature")

	got, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "cv37rs3pp9olc6atsptg", got)
}

func TestGenerate_EmptySubject(t *testing.T) {
	ts := newTestTokenService(t)

	_, err := ts.Generate("")

	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	ts := newTestTokenService(t)

	expired, err := ts.GenerateWithDuration("u1", -time.Second)
	require.NoError(t, err)

	valid, err := ts.Generate("u1")
	require.NoError(t, err)

	other, err := NewTokenService("wrong-secret-32-chars-long!!!!!!", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Generate("u1")
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u1",
		Issuer:  issuer,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":        expired,
		"tampered":       valid[:len(valid)-3] + "xxx",
		"wrong secret":   foreign,
		"wrong issuer":   wrongIssuer,
		"missing expiry": noExpiry,
		"empty":          "",
		"garbage":        "not.a.jwt.token",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ts.Validate(token)
			assert.Error(t, err)
		})
	}
}

func TestValidate_ExpiredMessage(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.GenerateWithDuration("u1", -time.Minute)
	require.NoError(t, err)

	_, err = ts.Validate(token)

	assert.EqualError(t, err, "auth: token expired")
}
