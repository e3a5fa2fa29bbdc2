package http

import (
	"net/http"

	"github.com/femundo/cms/pkg/httpx"
)

type MeHandler struct{}

// ServeHTTP handles GET /api/auth/me.
//
//	@Summary		Current user
//	@Description	Returns the authenticated account with its effective module grant. The account state is re-read on every request, so this also serves as a session validity probe.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	ErrorResponse	"Missing, invalid or revoked token"
//	@Router			/api/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(id.User))
}
