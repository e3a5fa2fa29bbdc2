package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/pkg/idx"
)

type activityRepo struct {
	db *sql.DB
}

func (r *activityRepo) Append(ctx context.Context, e domain.ActivityEntry) error {
	var details sql.NullString
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = sql.NullString{String: string(raw), Valid: true}
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	id := e.ID
	if id.IsZero() {
		id = idx.New()
	}

	var ip sql.NullString
	if e.IPAddress != "" {
		ip = sql.NullString{String: e.IPAddress, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_log (
			id, user_id, action, entity_type, entity_id, details,
			ip_address, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(),
		mapOptionalInt64(e.UserID),
		e.Action,
		e.EntityType,
		mapOptionalInt64(e.EntityID),
		details,
		ip,
		createdAt,
	)
	return err
}

func (r *activityRepo) ListRecent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, action, entity_type, entity_id, details,
			ip_address, created_at
		FROM activity_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ActivityEntry
	for rows.Next() {
		var (
			e       domain.ActivityEntry
			rawID   string
			userID  sql.NullInt64
			entity  sql.NullInt64
			details sql.NullString
			ip      sql.NullString
		)
		err := rows.Scan(&rawID, &userID, &e.Action, &e.EntityType,
			&entity, &details, &ip, &e.CreatedAt)
		if err != nil {
			return nil, err
		}

		e.ID, err = idx.Parse(rawID)
		if err != nil {
			return nil, err
		}
		e.UserID = mapNullInt64Ptr(userID)
		e.EntityID = mapNullInt64Ptr(entity)
		if ip.Valid {
			e.IPAddress = ip.String
		}
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
