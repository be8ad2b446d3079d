package audit

import (
	"context"
	"time"

	"github.com/staybook/audit-service/internal/models"
)

// Filter narrows a log query. Zero-value fields match everything.
type Filter struct {
	From      time.Time
	To        time.Time
	Actor     string
	Resource  string
	EventType models.EventType
	Severity  models.Severity
	Limit     int
	Offset    int
}

// EntryStore is the persistence seam for audit entries. Implementations must
// be append-only: nothing in this interface updates or deletes a row.
type EntryStore interface {
	// Insert persists a fully-formed entry (hash and prev_hash set).
	Insert(ctx context.Context, e *models.AuditLogEntry) error

	// LastEntry returns the most recently committed entry, or nil when the
	// log is empty.
	LastEntry(ctx context.Context) (*models.AuditLogEntry, error)

	// Query returns entries matching the filter, most recent first.
	Query(ctx context.Context, f Filter) ([]models.AuditLogEntry, error)

	// Range returns entries created in [from, to) in chain (insert) order,
	// paged by limit/offset. Verification walks the chain with this.
	Range(ctx context.Context, from, to time.Time, limit, offset int) ([]models.AuditLogEntry, error)
}

// Dispatcher delivers operator alerts for CRITICAL entries. Failures must be
// swallowed by the implementation; an undelivered alert never invalidates or
// duplicates the underlying audit entry.
type Dispatcher interface {
	Dispatch(ctx context.Context, e *models.AuditLogEntry)
}
