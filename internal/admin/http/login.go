package http

import (
	"errors"
	"net/http"

	"github.com/femundo/cms/internal/admin/service"
	"github.com/femundo/cms/pkg/httpx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	// Email doubles as the identifier field: values without an "@" are
	// treated as usernames.
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type loginResponse struct {
	Token        string       `json:"token"`
	ExpiresIn    int64        `json:"expires_in"`
	TOTPRequired bool         `json:"totp_required,omitempty"`
	User         UserResponse `json:"user"`
}

// ServeHTTP handles POST /api/auth/login.
//
//	@Summary		Log in
//	@Description	Exchanges an email (or username) and password for a bearer token. Accounts with an active second factor additionally require totp_code.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	loginResponse
//	@Failure		400		{object}	ErrorResponse	"Malformed request"
//	@Failure		401		{object}	ErrorResponse	"Invalid credentials or missing TOTP code"
//	@Failure		403		{object}	ErrorResponse	"Account disabled"
//	@Failure		429		{object}	ErrorResponse	"Too many failed attempts"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password, req.TOTPCode, httpx.ClientIP(r))
	if err != nil {
		if errors.Is(err, service.ErrTOTPRequired) {
			// Credentials were fine; the client should re-submit with a
			// code. Distinguished so the frontend can show the prompt.
			httpx.WriteJSON(w, http.StatusUnauthorized, loginResponse{TOTPRequired: true})
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresIn: int64(res.ExpiresIn.Seconds()),
		User:      toUserResponse(res.User),
	})
}
