package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is anything that can sign session claims into a compact token.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a token and gives back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	// ErrInvalidToken is the single failure returned by Verify. Signature
	// mismatch, corruption and expiry are deliberately indistinguishable so
	// callers cannot leak which check failed.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	// ErrNoSecret reports an empty signing secret at construction time.
	ErrNoSecret = errors.New("jwtx: signing secret is empty")
)

// HS256 signs and verifies tokens with a single shared secret. Verification
// is stateless; revocation happens upstream via the per-request active-user
// check, not here.
type HS256 struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewHS256 builds a symmetric signer/verifier around the server secret.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	return &HS256{
		secret: secret,
		issuer: issuer,
		leeway: 5 * time.Second,
	}, nil
}

// Sign produces a compact HS256 token for the given claims.
func (h *HS256) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a compact token. All failure modes collapse
// into ErrInvalidToken.
func (h *HS256) Verify(raw string) (Claims, error) {
	if raw == "" {
		return Claims{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(h.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if h.issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.issuer))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
