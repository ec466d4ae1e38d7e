package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"soundstake.io/soundstake/internal/repository"
)

// InsertAuditLog appends an audit record. Audit rows are never updated or deleted.
func (q *Queries) InsertAuditLog(ctx context.Context, entry *repository.AuditLog) error {
	var details []byte
	if entry.Details != nil {
		var err error
		if details, err = json.Marshal(entry.Details); err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
	}
	_, err := q.db.Exec(ctx,
		`INSERT INTO audit_logs (id, action, resource_type, resource_id, actor, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Action, entry.ResourceType, entry.ResourceID, entry.Actor, details, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", mapErr(err))
	}
	return nil
}

func (q *Queries) InsertNotification(ctx context.Context, n *repository.Notification) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, resource_type, resource_id, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.ResourceType, n.ResourceID, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", mapErr(err))
	}
	return nil
}

func (q *Queries) ListNotifications(ctx context.Context, userID string, limit int) ([]*repository.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := q.db.Query(ctx,
		`SELECT id, user_id, type, title, message, resource_type, resource_id, read, created_at
		 FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*repository.Notification
	for rows.Next() {
		var n repository.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.ResourceType, &n.ResourceID,
			&n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (q *Queries) DeleteNotificationsBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM notifications WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete notifications before %s: %w", before.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}
