package http

import (
	"net/http"

	"github.com/femundo/cms/internal/admin/permissions"
	"github.com/femundo/cms/pkg/httpx"
)

type ModulesHandler struct{}

type modulesResponse struct {
	Modules  []permissions.Module  `json:"modules"`
	Profiles []permissions.Profile `json:"profiles"`
	Granted  []string              `json:"granted"`
}

// ServeHTTP handles GET /api/modules.
//
//	@Summary		Module catalog
//	@Description	Returns the full module catalog and the predefined permission profiles, plus the caller's effective grant. The frontend builds its navigation and the user-edit form from this.
//	@Tags			Modules
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	modulesResponse
//	@Router			/api/modules [get].
func (h *ModulesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, modulesResponse{
		Modules:  permissions.Catalog,
		Profiles: permissions.Profiles,
		Granted:  id.Modules,
	})
}
