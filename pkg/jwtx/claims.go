package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the default bearer-token lifetime. Admin sessions are
// expected to re-login daily; there is no refresh flow.
const DefaultTokenTTL = 24 * time.Hour

// Claims are the bearer-token claims carried by every admin session token.
// Keep changes additive: the React dashboard decodes these client-side.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the numeric user id, duplicated from Subject for callers
	// that do not want to parse strings.
	UserID int64 `json:"uid"`

	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// NewClaims builds minimally-correct claims for a user session.
func NewClaims(userID int64, email, role, fullName, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		UserID:   userID,
		Email:    email,
		Role:     role,
		FullName: fullName,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
