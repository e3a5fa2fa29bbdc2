package http

import (
	"net/http"

	"github.com/femundo/cms/internal/admin/service"
	"github.com/femundo/cms/pkg/httpx"
)

type MFAHandler struct {
	MFAService *service.MFAService
}

type mfaEnrollResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

// HandleEnroll handles POST /api/auth/mfa/enroll.
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a TOTP secret and otpauth URL for the caller. The factor stays inactive until confirmed via /activate.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	mfaEnrollResponse
//	@Failure		400	{object}	ErrorResponse	"Already enabled"
//	@Router			/api/auth/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	enrollment, err := h.MFAService.Enroll(r.Context(), id.User.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, mfaEnrollResponse{
		Secret: enrollment.Secret,
		URL:    enrollment.URL,
	})
}

// HandleActivate handles POST /api/auth/mfa/activate.
//
//	@Summary		Confirm TOTP enrollment
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	mfaCodeRequest	true	"Current TOTP code"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse	"Not enrolled or already active"
//	@Failure		401	{object}	ErrorResponse	"Wrong code"
//	@Router			/api/auth/mfa/activate [post].
func (h *MFAHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req mfaCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.MFAService.Activate(r.Context(), id.User.ID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable handles POST /api/auth/mfa/disable.
//
//	@Summary		Disable TOTP
//	@Description	Removes the second factor. An active factor requires a current code; a pending enrollment can be cancelled without one.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	mfaCodeRequest	true	"Current TOTP code (ignored for pending enrollments)"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse	"Not enrolled"
//	@Failure		401	{object}	ErrorResponse	"Wrong code"
//	@Router			/api/auth/mfa/disable [post].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req mfaCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.MFAService.Disable(r.Context(), id.User.ID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
