// Every auditable action in the system should end up in activity_logs,
// successful or not. The table is append-only: there is no update or
// delete path, which is what makes it usable for audit.
//
// entity_type/entity_id are polymorphic so a single table serves every
// part of the application.
package database

import (
	"context"
	"time"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
)

func (db *DB) InsertActivityLog(log *audit.ActivityLog) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO activity_logs (tenant_id, user_id, action_type, entity_type, entity_id, old_value, new_value, success, error_message, metadata)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, NULLIF($9, ''), $10)
		RETURNING id`

	err := db.GetContext(ctx, &id, query,
		log.TenantID,
		log.UserID,
		log.ActionType,
		log.EntityType,
		log.EntityID,
		log.OldValue,
		log.NewValue,
		log.Success,
		log.ErrorMessage,
		log.Metadata,
	)

	return id, err
}

// ListActivityLogs returns a tenant's logs newest-first with the actor
// joined in, bounded by sinceDays so the in-memory filter engine never
// works over an unbounded collection.
func (db *DB) ListActivityLogs(tenantID string, sinceDays int) ([]audit.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if sinceDays < 1 {
		sinceDays = 90
	}

	var logs []audit.ActivityLog

	query := `
		SELECT
			al.id, al.tenant_id, al.user_id, al.created_at, al.action_type,
			COALESCE(al.entity_type, '') AS entity_type,
			COALESCE(al.entity_id, '') AS entity_id,
			al.old_value, al.new_value, al.success,
			COALESCE(al.error_message, '') AS error_message,
			al.metadata,
			u.name AS user_name, u.email AS user_email
		FROM activity_logs al
		JOIN users u ON u.id = al.user_id
		WHERE al.tenant_id = $1 AND al.created_at >= now() - ($2 * interval '1 day')
		ORDER BY al.created_at DESC`

	err := db.SelectContext(ctx, &logs, query, tenantID, sinceDays)
	return logs, err
}

func (db *DB) ListRecentActivityLogs(tenantID string, limit int) ([]audit.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if limit < 1 {
		limit = 10
	}

	var logs []audit.ActivityLog

	query := `
		SELECT
			al.id, al.tenant_id, al.user_id, al.created_at, al.action_type,
			COALESCE(al.entity_type, '') AS entity_type,
			COALESCE(al.entity_id, '') AS entity_id,
			al.old_value, al.new_value, al.success,
			COALESCE(al.error_message, '') AS error_message,
			al.metadata,
			u.name AS user_name, u.email AS user_email
		FROM activity_logs al
		JOIN users u ON u.id = al.user_id
		WHERE al.tenant_id = $1
		ORDER BY al.created_at DESC
		LIMIT $2`

	err := db.SelectContext(ctx, &logs, query, tenantID, limit)
	return logs, err
}

// LastLoginAt is used on the users screen to show account activity.
func (db *DB) LastLoginAt(tenantID, userID string) (*time.Time, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var ts []time.Time

	query := `
		SELECT created_at FROM activity_logs
		WHERE tenant_id = $1 AND user_id = $2 AND action_type = $3 AND success
		ORDER BY created_at DESC
		LIMIT 1`

	err := db.SelectContext(ctx, &ts, query, tenantID, userID, audit.ActionLogin)
	if err != nil || len(ts) == 0 {
		return nil, err
	}

	return &ts[0], nil
}
