package service

import (
	"context"
	"log/slog"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/internal/admin/store"
	"github.com/femundo/cms/pkg/slogx"
)

type ActivityService struct {
	Store store.Store
}

// Record appends an audit entry. Failures are logged and swallowed: the
// audit trail never fails the operation that produced it.
func (s *ActivityService) Record(ctx context.Context, e domain.ActivityEntry) {
	if err := s.Store.Activity().Append(ctx, e); err != nil {
		slogx.FromContext(ctx).Warn("activity log write failed",
			slog.String("action", e.Action),
			slog.String("entity_type", e.EntityType),
			slog.Any("error", err),
		)
	}
}

// Recent returns the newest audit entries for the dashboard feed.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	return s.Store.Activity().ListRecent(ctx, limit)
}
