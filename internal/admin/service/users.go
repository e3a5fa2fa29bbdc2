package service

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/internal/admin/permissions"
	"github.com/femundo/cms/internal/admin/store"
	"github.com/femundo/cms/pkg/cryptox"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,50}$`)

// CreateUserInput carries the fields an administrator supplies when
// provisioning an account.
type CreateUserInput struct {
	Email          string
	Username       *string
	Password       string
	FullName       string
	Role           domain.Role
	AvatarURL      *string
	AllowedModules []string
}

// UpdateUserInput carries the mutable profile fields. Nil pointers mean
// "leave unchanged"; AllowedModules set to an empty non-nil slice clears
// the explicit grant back to the role fallback.
type UpdateUserInput struct {
	Email          *string
	Username       *string
	FullName       *string
	Role           *domain.Role
	AvatarURL      *string
	AllowedModules []string
	ModulesSet     bool
	IsActive       *bool
}

type UserService struct {
	Store    store.Store
	Activity *ActivityService
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().List(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.Store.Users().GetByID(ctx, id)
}

// Create provisions a new account. Only a super admin may mint another
// super admin.
func (s *UserService) Create(ctx context.Context, actor domain.User, in CreateUserInput) (domain.User, error) {
	if in.Role == "" {
		in.Role = domain.RoleEditor
	}
	if !in.Role.Valid() {
		return domain.User{}, invalid("invalid role")
	}
	if in.Role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
		return domain.User{}, ErrPermissionDenied
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateEmail(email); err != nil {
		return domain.User{}, err
	}
	if err := validateNewPassword(in.Password); err != nil {
		return domain.User{}, err
	}
	if strings.TrimSpace(in.FullName) == "" {
		return domain.User{}, invalid("full name is required")
	}

	username := in.Username
	if username != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*username))
		if trimmed == "" {
			username = nil
		} else {
			if !usernamePattern.MatchString(trimmed) {
				return domain.User{}, invalid("username must be 3-50 chars: lowercase letters, digits, dot, underscore or hyphen")
			}
			username = &trimmed
		}
	}

	modules, err := normalizeModules(in.AllowedModules)
	if err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		Email:          email,
		Username:       username,
		PasswordHash:   hash,
		FullName:       strings.TrimSpace(in.FullName),
		Role:           in.Role,
		AvatarURL:      in.AvatarURL,
		AllowedModules: modules,
		IsActive:       true,
	}

	id, err := s.Store.Users().Create(ctx, u)
	if err != nil {
		return domain.User{}, err
	}

	created, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	s.Activity.Record(ctx, domain.ActivityEntry{
		UserID:     &actor.ID,
		Action:     "create",
		EntityType: "users",
		EntityID:   &id,
		Details:    map[string]any{"email": email, "role": string(in.Role)},
	})
	return created, nil
}

// Update edits an account. Touching a super admin account, or promoting
// anyone to super admin, requires the actor to be one.
func (s *UserService) Update(ctx context.Context, actor domain.User, id int64, in UpdateUserInput) (domain.User, error) {
	u, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if u.Role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
		return domain.User{}, ErrPermissionDenied
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := validateEmail(email); err != nil {
			return domain.User{}, err
		}
		u.Email = email
	}
	if in.Username != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*in.Username))
		if trimmed == "" {
			u.Username = nil
		} else {
			if !usernamePattern.MatchString(trimmed) {
				return domain.User{}, invalid("username must be 3-50 chars: lowercase letters, digits, dot, underscore or hyphen")
			}
			u.Username = &trimmed
		}
	}
	if in.FullName != nil {
		if strings.TrimSpace(*in.FullName) == "" {
			return domain.User{}, invalid("full name is required")
		}
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return domain.User{}, invalid("invalid role")
		}
		if *in.Role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
			return domain.User{}, ErrPermissionDenied
		}
		u.Role = *in.Role
	}
	if in.AvatarURL != nil {
		u.AvatarURL = in.AvatarURL
	}
	if in.ModulesSet {
		modules, err := normalizeModules(in.AllowedModules)
		if err != nil {
			return domain.User{}, err
		}
		u.AllowedModules = modules
	}
	if in.IsActive != nil {
		if !*in.IsActive && id == actor.ID {
			return domain.User{}, invalid("cannot deactivate your own account")
		}
		u.IsActive = *in.IsActive
	}

	if err := s.Store.Users().Update(ctx, u); err != nil {
		return domain.User{}, err
	}

	s.Activity.Record(ctx, domain.ActivityEntry{
		UserID:     &actor.ID,
		Action:     "update",
		EntityType: "users",
		EntityID:   &id,
	})
	return u, nil
}

// Deactivate soft-deletes an account. The row stays so the activity log
// keeps its attribution; the next request with an old token gets a 401.
func (s *UserService) Deactivate(ctx context.Context, actor domain.User, id int64) error {
	// Deleting accounts is reserved for super admins; plain admins manage
	// users but cannot remove them.
	if actor.Role != domain.RoleSuperAdmin {
		return ErrPermissionDenied
	}
	if id == actor.ID {
		return invalid("cannot delete your own account")
	}

	u, err := s.Store.Users().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Store.Users().SetActive(ctx, id, false); err != nil {
		return err
	}

	s.Activity.Record(ctx, domain.ActivityEntry{
		UserID:     &actor.ID,
		Action:     "deactivate",
		EntityType: "users",
		EntityID:   &id,
		Details:    map[string]any{"email": u.Email},
	})
	return nil
}

// ChangePassword lets an authenticated user rotate their own password
// after proving knowledge of the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	u, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !cryptox.VerifyPassword(current, u.PasswordHash) {
		return ErrInvalidCredentials
	}
	if next == current {
		return invalid("new password must differ from the current one")
	}
	if err := validateChangedPassword(next); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	s.Activity.Record(ctx, domain.ActivityEntry{
		UserID:     &userID,
		Action:     "change_password",
		EntityType: "users",
		EntityID:   &userID,
	})
	return nil
}

// normalizeModules validates the grant keys against the catalog and pins
// the dashboard module, which every account must keep.
func normalizeModules(modules []string) ([]string, error) {
	if modules == nil {
		return nil, nil
	}
	for _, key := range modules {
		if !permissions.KnownModule(key) {
			return nil, invalid(fmt.Sprintf("unknown module %q", key))
		}
	}
	return permissions.NormalizeGrant(modules), nil
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("invalid email address")
	}
	return nil
}

// validateNewPassword enforces the admin-provisioning policy: at least 12
// characters mixing upper case, lower case, a digit and a symbol.
func validateNewPassword(password string) error {
	if len(password) < 12 {
		return invalid("password must be at least 12 characters")
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return invalid("password must contain upper case, lower case, a digit and a special character")
	}
	return nil
}

// validateChangedPassword is the looser self-service policy: at least 8
// characters with a letter and a digit.
func validateChangedPassword(password string) error {
	if len(password) < 8 {
		return invalid("password must be at least 8 characters")
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return invalid("password must contain at least one letter and one digit")
	}
	return nil
}
