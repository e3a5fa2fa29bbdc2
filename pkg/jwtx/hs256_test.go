package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testIssuer = "femundo-admin"

var testSecret = []byte("test-secret-0123456789abcdef")

func newTestHS256(t *testing.T) *HS256 {
	t.Helper()
	h, err := NewHS256(testSecret, testIssuer)
	require.NoError(t, err)
	return h
}

func TestNewHS256_EmptySecret(t *testing.T) {
	_, err := NewHS256(nil, testIssuer)
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestHS256_RoundTrip(t *testing.T) {
	h := newTestHS256(t)

	claims := NewClaims(42, "admin@example.org", "admin", "Ada Admin", testIssuer, time.Hour, time.Now().UTC())
	token, err := h.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), got.UserID)
	require.Equal(t, "42", got.Subject)
	require.Equal(t, "admin@example.org", got.Email)
	require.Equal(t, "admin", got.Role)
	require.Equal(t, "Ada Admin", got.FullName)
	require.Equal(t, testIssuer, got.Issuer)
}

func TestHS256_Expired(t *testing.T) {
	h := newTestHS256(t)

	// Issued an hour ago with a one-second TTL; well past any leeway.
	claims := NewClaims(7, "a@b.c", "editor", "E", testIssuer, time.Second, time.Now().UTC().Add(-time.Hour))
	token, err := h.Sign(claims)
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHS256_WrongSecret(t *testing.T) {
	h := newTestHS256(t)
	other, err := NewHS256([]byte("a-different-secret-entirely"), testIssuer)
	require.NoError(t, err)

	claims := NewClaims(7, "a@b.c", "editor", "E", testIssuer, time.Hour, time.Now().UTC())
	token, err := h.Sign(claims)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHS256_TamperResistance(t *testing.T) {
	h := newTestHS256(t)

	claims := NewClaims(7, "a@b.c", "editor", "E", testIssuer, time.Hour, time.Now().UTC())
	token, err := h.Sign(claims)
	require.NoError(t, err)

	// Flipping any byte of the token must invalidate it.
	for i := 0; i < len(token); i += 7 {
		mutated := []byte(token)
		mutated[i] ^= 0x01
		_, err := h.Verify(string(mutated))
		require.ErrorIs(t, err, ErrInvalidToken, "byte %d", i)
	}
}

func TestHS256_GarbageInput(t *testing.T) {
	h := newTestHS256(t)

	for _, raw := range []string{"", "abc", "a.b", "a.b.c", "....."} {
		_, err := h.Verify(raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestHS256_IssuerMismatch(t *testing.T) {
	h := newTestHS256(t)

	claims := NewClaims(7, "a@b.c", "editor", "E", "someone-else", time.Hour, time.Now().UTC())
	token, err := h.Sign(claims)
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJTI_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		jti := NewJTI()
		require.NotEmpty(t, jti)
		_, dup := seen[jti]
		require.False(t, dup)
		seen[jti] = struct{}{}
	}
}
