package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/staybook/audit-service/internal/audit"
	"github.com/staybook/audit-service/internal/models"
)

// Run starts a background scheduler that verifies the most recent window of
// the audit chain at each cron tick. Tampering findings are logged and pushed
// to the operator notification feed. Returns the cron handle so the caller
// can Stop it on shutdown; returns nil when expr is empty (scheduled
// verification disabled).
func Run(expr string, window time.Duration, verifier *audit.Verifier, notifications audit.NotificationStore) *cron.Cron {
	if expr == "" {
		slog.Info("scheduled verification disabled")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		from := time.Now().UTC().Add(-window)
		report, err := verifier.VerifyIntegrity(ctx, from, time.Time{})
		if err != nil {
			slog.Error("scheduled verification failed", "error", err)
			return
		}
		if report.Intact() {
			slog.Info("scheduled verification clean", "checked", report.TotalChecked, "from", from)
			return
		}

		slog.Error("scheduled verification found tampering",
			"checked", report.TotalChecked,
			"invalid", len(report.Invalid),
			"broken", len(report.Broken))
		for _, f := range append(report.Invalid, report.Broken...) {
			n := &models.Notification{
				Type:         "INTEGRITY_VIOLATION",
				Title:        "Audit chain integrity violation",
				Message:      fmt.Sprintf("entry %s failed verification: %s", f.EntryID, f.Reason),
				Priority:     "high",
				AuditEntryID: f.EntryID,
				Metadata:     map[string]any{"reason": f.Reason, "hash": f.Hash},
			}
			if err := notifications.Create(ctx, n); err != nil {
				slog.Error("integrity alert failed", "entry_id", f.EntryID, "error", err)
			}
		}
	})
	if err != nil {
		slog.Error("scheduler: invalid cron expression", "expr", expr, "error", err)
		return nil
	}

	c.Start()
	slog.Info("scheduled verification enabled", "cron", expr, "window", window)
	return c
}
