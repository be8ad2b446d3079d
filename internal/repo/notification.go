package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/staybook/audit-service/internal/models"
)

// NotificationRepo persists operator alerts (the alert sink).
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create stores one notification and fills in its id and creation time.
func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO notifications (type, title, message, priority, audit_entry_id, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		n.Type, n.Title, n.Message, n.Priority, n.AuditEntryID, metadata,
	).Scan(&n.ID, &n.CreatedAt)
}

// List returns recent notifications, newest first.
func (r *NotificationRepo) List(ctx context.Context, limit, offset int) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, title, message, priority, audit_entry_id, COALESCE(metadata,'{}'), created_at
		 FROM notifications ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Notification
	for rows.Next() {
		var n models.Notification
		var metadata []byte
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.Priority, &n.AuditEntryID, &metadata, &n.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}
