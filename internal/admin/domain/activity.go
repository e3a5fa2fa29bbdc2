package domain

import (
	"time"

	"github.com/femundo/cms/pkg/idx"
)

// ActivityEntry is one append-only audit record: who did what to which
// entity. UserID is nil for system actions.
type ActivityEntry struct {
	ID         idx.ID
	UserID     *int64
	Action     string // e.g. "login", "create", "update", "deactivate"
	EntityType string // e.g. "users", "events"
	EntityID   *int64
	Details    map[string]any // opaque JSON details, may be nil
	IPAddress  string
	CreatedAt  time.Time
}
