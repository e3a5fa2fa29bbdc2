package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/internal/admin/service"
	"github.com/femundo/cms/pkg/httpx"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

type ActivityHandler struct {
	ActivityService *service.ActivityService
}

type activityEntryResponse struct {
	ID         string         `json:"id"`
	UserID     *int64         `json:"user_id,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *int64         `json:"entity_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ServeHTTP handles GET /api/activity.
//
//	@Summary		Recent activity
//	@Description	Returns the newest audit entries, most recent first. Supports ?limit=N up to 200.
//	@Tags			Activity
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum entries (default 50)"
//	@Success		200		{array}		activityEntryResponse
//	@Failure		403		{object}	ErrorResponse	"Caller is not an admin"
//	@Router			/api/activity [get].
func (h *ActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxActivityLimit)
	}

	entries, err := h.ActivityService.Recent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]activityEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toActivityResponse(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func toActivityResponse(e domain.ActivityEntry) activityEntryResponse {
	return activityEntryResponse{
		ID:         e.ID.String(),
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		IPAddress:  e.IPAddress,
		CreatedAt:  e.CreatedAt,
	}
}
