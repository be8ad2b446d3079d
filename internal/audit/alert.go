package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/staybook/audit-service/internal/metrics"
	"github.com/staybook/audit-service/internal/models"
)

// NotificationStore persists operator-facing alerts.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Publisher fans an alert out to live subscribers (e.g. a Redis channel for
// operator dashboards). Implementations must tolerate being a no-op.
type Publisher interface {
	Publish(ctx context.Context, n *models.Notification) error
}

// AlertDispatcher turns CRITICAL audit entries into notification rows plus a
// best-effort stream publish. Every failure inside Dispatch is logged and
// swallowed: an undelivered alert never rolls back or duplicates the entry
// that triggered it.
type AlertDispatcher struct {
	store  NotificationStore
	stream Publisher
}

// NewAlertDispatcher wires the dispatcher. stream may be nil.
func NewAlertDispatcher(store NotificationStore, stream Publisher) *AlertDispatcher {
	return &AlertDispatcher{store: store, stream: stream}
}

// Dispatch creates the operator notification for a CRITICAL entry.
func (d *AlertDispatcher) Dispatch(ctx context.Context, e *models.AuditLogEntry) {
	n := &models.Notification{
		Type:         "AUDIT_ALERT",
		Title:        fmt.Sprintf("Critical audit event: %s", e.EventType),
		Message:      fmt.Sprintf("%s on %s/%s requires operator review", e.EventType, e.Resource, e.ResourceID),
		Priority:     "high",
		AuditEntryID: e.ID,
		Metadata: map[string]any{
			"category": e.Category,
			"actor":    e.Actor,
		},
	}
	if err := d.store.Create(ctx, n); err != nil {
		metrics.IncAlertDispatch("failed")
		slog.Error("alert dispatch failed", "entry_id", e.ID, "error", err)
		return
	}
	metrics.IncAlertDispatch("delivered")

	if d.stream != nil {
		if err := d.stream.Publish(ctx, n); err != nil {
			slog.Warn("alert stream publish failed", "entry_id", e.ID, "error", err)
		}
	}
}
