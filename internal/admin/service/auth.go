package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/internal/admin/store"
	"github.com/femundo/cms/pkg/cryptox"
	"github.com/femundo/cms/pkg/jwtx"
	"github.com/femundo/cms/pkg/metricsx"
	"github.com/femundo/cms/pkg/slogx"
	"github.com/pquerna/otp/totp"
)

// LoginResult is the successful outcome of a credential exchange.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
	User      domain.User
}

type AuthService struct {
	Store    store.Store
	Signer   jwtx.Signer
	Limiter  *LoginLimiter
	Activity *ActivityService
	Issuer   string
	TokenTTL time.Duration
}

// Login exchanges an identifier (email or username) and password for a
// signed token. clientIP keys the lockout window. totpCode is required
// only for accounts with a confirmed second factor.
//
// Failure ordering matters: the lockout check runs before any credential
// work so a locked key costs no bcrypt time, and unknown identifiers take
// the same path as wrong passwords.
func (s *AuthService) Login(ctx context.Context, identifier, password, totpCode, clientIP string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	if err := s.Limiter.Check(clientIP); err != nil {
		metricsx.ObserveLogin("rate_limited")
		l.Warn("login locked out", slog.String("ip", clientIP))
		return LoginResult{}, err
	}

	identifier = strings.TrimSpace(identifier)
	u, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a bcrypt round anyway so a missing account is not
			// distinguishable by timing.
			cryptox.VerifyPassword(password, dummyHash)
			s.fail(ctx, clientIP, "unknown_identifier")
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !u.IsActive {
		// Still counts against the lockout: a deactivated account is a
		// popular target for credential stuffing.
		s.Limiter.RecordFailure(clientIP)
		metricsx.ObserveLogin("disabled")
		l.Warn("login rejected for deactivated account", slog.Int64("user_id", u.ID))
		return LoginResult{}, ErrAccountDisabled
	}

	if !cryptox.VerifyPassword(password, u.PasswordHash) {
		s.fail(ctx, clientIP, "bad_password")
		return LoginResult{}, ErrInvalidCredentials
	}

	if u.TOTPActive() {
		if totpCode == "" {
			metricsx.ObserveLogin("totp_required")
			return LoginResult{}, ErrTOTPRequired
		}
		if !totp.Validate(totpCode, *u.TOTPSecret) {
			s.fail(ctx, clientIP, "bad_totp")
			return LoginResult{}, ErrInvalidTOTPCode
		}
	}

	s.Limiter.Clear(clientIP)

	now := time.Now()
	claims := jwtx.NewClaims(u.ID, u.Email, string(u.Role), u.FullName, s.Issuer, s.TokenTTL, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		l.Error("token signing failed", slog.Any("error", err))
		return LoginResult{}, err
	}

	if err := s.Store.Users().TouchLastLogin(ctx, u.ID); err != nil {
		l.Warn("last_login update failed", slog.Int64("user_id", u.ID), slog.Any("error", err))
	}

	s.Activity.Record(ctx, domain.ActivityEntry{
		UserID:     &u.ID,
		Action:     "login",
		EntityType: "users",
		EntityID:   &u.ID,
		IPAddress:  clientIP,
	})
	metricsx.ObserveLogin("success")
	l.Info("login succeeded", slog.Int64("user_id", u.ID))

	return LoginResult{Token: token, ExpiresIn: s.TokenTTL, User: u}, nil
}

// GetUser fetches the current state of an account. The auth middleware
// calls this on every request so deactivation takes effect immediately.
func (s *AuthService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return s.Store.Users().GetByID(ctx, id)
}

func (s *AuthService) lookup(ctx context.Context, identifier string) (domain.User, error) {
	if strings.Contains(identifier, "@") {
		return s.Store.Users().GetByEmail(ctx, strings.ToLower(identifier))
	}
	return s.Store.Users().GetByUsername(ctx, identifier)
}

// fail counts a failed attempt. The identifier is deliberately not logged.
func (s *AuthService) fail(ctx context.Context, clientIP, reason string) {
	s.Limiter.RecordFailure(clientIP)
	metricsx.ObserveLogin("failure")
	slogx.FromContext(ctx).Info("login failed",
		slog.String("reason", reason),
		slog.String("ip", clientIP),
		slog.Int("attempts_left", s.Limiter.Remaining(clientIP)),
	)
}

// dummyHash is a bcrypt hash of a random throwaway value, used to equalise
// timing when the identifier does not resolve to an account.
const dummyHash = "$2a$12$K6uUEQYzYz8pXh0eGkOyOeZf1Yw3pNRrCq0jC0dDlPzXhZxkW5P7W"
