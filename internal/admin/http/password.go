package http

import (
	"net/http"

	"github.com/femundo/cms/internal/admin/service"
	"github.com/femundo/cms/pkg/httpx"
)

type PasswordHandler struct {
	UserService *service.UserService
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ServeHTTP handles PUT /api/auth/change-password.
//
//	@Summary		Change own password
//	@Description	Rotates the caller's password after verifying the current one.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	changePasswordRequest	true	"Current and new password"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse	"New password fails the policy"
//	@Failure		401	{object}	ErrorResponse	"Current password wrong"
//	@Router			/api/auth/change-password [put].
func (h *PasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "current_password and new_password are required")
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), id.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
