package domain

import "time"

// User is an admin-panel account. Deactivation (IsActive=false) is the only
// revocation mechanism: unexpired tokens for a deactivated user are rejected
// on their next request.
type User struct {
	ID           int64
	Email        string
	Username     *string // optional, unique when present
	PasswordHash string  // bcrypt encoded, never the plaintext
	FullName     string
	Role         Role
	AvatarURL    *string

	// AllowedModules is the explicit module grant set. nil or empty means
	// "not set": the role fallback applies. Stored as a JSON array; the
	// store driver owns the encoding.
	AllowedModules []string

	IsActive bool

	// TOTP second factor. Secret present + EnabledAt set means the login
	// path demands a code. Secret present without EnabledAt means
	// enrollment started but was never confirmed.
	TOTPSecret    *string
	TOTPEnabledAt *time.Time

	LastLogin *time.Time
	CreatedAt time.Time
}

// TOTPActive reports whether the account has a confirmed TOTP factor.
func (u User) TOTPActive() bool {
	return u.TOTPSecret != nil && *u.TOTPSecret != "" && u.TOTPEnabledAt != nil
}
