package service

import (
	"context"
	"fmt"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/internal/admin/store"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPEnrollment is handed back from Enroll so the client can render the
// QR code. The secret is only ever returned here, before confirmation.
type TOTPEnrollment struct {
	Secret string
	URL    string
}

type MFAService struct {
	Store    store.Store
	Activity *ActivityService
	Issuer   string
}

// Enroll generates a fresh TOTP secret for the user. The factor is not
// active until Activate verifies a code; re-enrolling before confirmation
// replaces the pending secret.
func (s *MFAService) Enroll(ctx context.Context, userID int64) (TOTPEnrollment, error) {
	u, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return TOTPEnrollment{}, err
	}
	if u.TOTPActive() {
		return TOTPEnrollment{}, ErrTOTPAlreadyActive
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return TOTPEnrollment{}, fmt.Errorf("generate totp key: %w", err)
	}

	if err := s.Store.Users().SetTOTPSecret(ctx, userID, key.Secret()); err != nil {
		return TOTPEnrollment{}, err
	}

	return TOTPEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Activate confirms a pending enrollment with a live code. From here on
// the login path demands TOTP for this account.
func (s *MFAService) Activate(ctx context.Context, userID int64, code string) error {
	u, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.TOTPSecret == nil || *u.TOTPSecret == "" {
		return ErrTOTPNotEnrolled
	}
	if u.TOTPActive() {
		return ErrTOTPAlreadyActive
	}
	if !totp.Validate(code, *u.TOTPSecret) {
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Users().EnableTOTP(ctx, userID); err != nil {
		return err
	}

	s.Activity.Record(ctx, domain.ActivityEntry{
		UserID:     &userID,
		Action:     "totp_enabled",
		EntityType: "users",
		EntityID:   &userID,
	})
	return nil
}

// Disable turns the factor off after a final code check, wiping the
// secret. A pending unconfirmed enrollment can be cancelled the same way
// without a code.
func (s *MFAService) Disable(ctx context.Context, userID int64, code string) error {
	u, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.TOTPSecret == nil || *u.TOTPSecret == "" {
		return ErrTOTPNotEnrolled
	}

	if u.TOTPActive() {
		if !totp.Validate(code, *u.TOTPSecret) {
			return ErrInvalidTOTPCode
		}
	}

	if err := s.Store.Users().SetTOTPSecret(ctx, userID, ""); err != nil {
		return err
	}

	s.Activity.Record(ctx, domain.ActivityEntry{
		UserID:     &userID,
		Action:     "totp_disabled",
		EntityType: "users",
		EntityID:   &userID,
	})
	return nil
}
