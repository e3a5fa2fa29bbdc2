package service

import "errors"

var (
	// ErrInvalidCredentials covers unknown identifier and wrong password
	// alike so the login response never reveals which one failed.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrAccountDisabled rejects logins and authenticated requests from
	// deactivated accounts.
	ErrAccountDisabled = errors.New("account_disabled")

	// ErrTOTPRequired means credentials were correct but the account has
	// a confirmed second factor and no code was supplied.
	ErrTOTPRequired = errors.New("totp_required")

	ErrInvalidTOTPCode = errors.New("invalid_totp_code")

	// ErrPermissionDenied is returned when the acting user lacks the
	// role needed to perform a management operation.
	ErrPermissionDenied = errors.New("permission_denied")

	ErrTOTPNotEnrolled   = errors.New("totp_not_enrolled")
	ErrTOTPAlreadyActive = errors.New("totp_already_active")
)

// ValidationError is a user-facing 400: the request was well formed but a
// field failed a business rule. Msg is safe to return to the client.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }
