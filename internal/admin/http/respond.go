package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/internal/admin/permissions"
	"github.com/femundo/cms/internal/admin/service"
	"github.com/femundo/cms/internal/admin/store"
	"github.com/femundo/cms/pkg/httpx"
	"github.com/femundo/cms/pkg/slogx"
)

// UserResponse is the wire shape of an account. AllowedModules is the
// effective grant after role resolution, not the raw stored value.
type UserResponse struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Username       *string    `json:"username,omitempty"`
	FullName       string     `json:"full_name"`
	Role           string     `json:"role"`
	AvatarURL      *string    `json:"avatar_url,omitempty"`
	AllowedModules []string   `json:"allowed_modules"`
	Profile        string     `json:"permission_profile"`
	IsActive       bool       `json:"is_active"`
	TOTPEnabled    bool       `json:"totp_enabled"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toUserResponse(u domain.User) UserResponse {
	modules := permissions.ResolveModules(u.Role, u.AllowedModules)
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		FullName:       u.FullName,
		Role:           string(u.Role),
		AvatarURL:      u.AvatarURL,
		AllowedModules: modules,
		Profile:        permissions.DetectProfile(modules),
		IsActive:       u.IsActive,
		TOTPEnabled:    u.TOTPActive(),
		LastLogin:      u.LastLogin,
		CreatedAt:      u.CreatedAt,
	}
}

// ErrorResponse documents the error envelope for swagger.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeServiceError maps service and store errors onto the response
// taxonomy. Anything unrecognised is logged and becomes an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *service.ValidationError
		rle *service.RateLimitedError
	)
	switch {
	case errors.As(err, &rle):
		seconds := int(rle.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		httpx.WriteError(w, http.StatusTooManyRequests, "too many login attempts, please try again later")
	case errors.As(err, &ve):
		httpx.WriteError(w, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrAccountDisabled):
		httpx.WriteError(w, http.StatusForbidden, "account disabled")
	case errors.Is(err, service.ErrInvalidTOTPCode):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid verification code")
	case errors.Is(err, service.ErrTOTPNotEnrolled):
		httpx.WriteError(w, http.StatusBadRequest, "two-factor authentication is not enrolled")
	case errors.Is(err, service.ErrTOTPAlreadyActive):
		httpx.WriteError(w, http.StatusBadRequest, "two-factor authentication is already enabled")
	case errors.Is(err, service.ErrPermissionDenied):
		httpx.WriteError(w, http.StatusForbidden, "insufficient permissions")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "email or username already in use")
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a bounded JSON body into dst. Unknown fields are
// tolerated so the frontend can evolve ahead of the API.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(dst)
}
