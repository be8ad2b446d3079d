package audit

import (
	"context"
	"strings"

	"github.com/staybook/audit-service/internal/models"
)

// LogDeletion records the removal of a record, embedding a deep snapshot of
// it in details so the content stays reconstructable from the audit trail
// alone. Hard deletes are WARNING, soft deletes INFO.
func (r *Recorder) LogDeletion(ctx context.Context, resource, resourceID string, snapshot map[string]any, reason string, hardDelete bool, opts Options) (*models.AuditLogEntry, error) {
	eventType := models.EventSoftDelete
	opts.Severity = models.SeverityInfo
	if hardDelete {
		eventType = models.EventDelete
		opts.Severity = models.SeverityWarning
	}
	opts.Category = models.CategoryDataModification
	opts.Reason = reason
	details := map[string]any{
		"full_record": snapshot,
		"hard_delete": hardDelete,
	}
	return r.Log(ctx, eventType, resource, resourceID, details, opts)
}

// LogLogin records a successful authentication.
func (r *Recorder) LogLogin(ctx context.Context, identifier string, opts Options) (*models.AuditLogEntry, error) {
	opts.Category = models.CategoryAuthentication
	opts.Severity = models.SeverityInfo
	opts.Actor = identifier
	return r.Log(ctx, models.EventLogin, "USER", identifier, nil, opts)
}

// LogFailedLogin records a failed authentication attempt. The identifier and
// failure reason land in details so brute-force detection downstream can
// query by identifier or IP.
func (r *Recorder) LogFailedLogin(ctx context.Context, identifier, reason string, opts Options) (*models.AuditLogEntry, error) {
	opts.Category = models.CategoryAuthentication
	opts.Severity = models.SeverityWarning
	opts.Actor = identifier
	details := map[string]any{
		"identifier": identifier,
		"reason":     reason,
	}
	return r.Log(ctx, models.EventLoginFailed, "USER", identifier, details, opts)
}

// LogPermissionChange records a before/after permission set for a subject.
// The event type is PERMISSION_GRANTED when the change adds permissions and
// PERMISSION_REVOKED when it only removes them.
func (r *Recorder) LogPermissionChange(ctx context.Context, subjectID string, before, after []string, opts Options) (*models.AuditLogEntry, error) {
	eventType := models.EventPermissionRevoked
	if grantsPermissions(before, after) {
		eventType = models.EventPermissionGranted
	}
	opts.Category = models.CategoryAuthorization
	opts.Severity = models.SeverityWarning
	details := map[string]any{
		"before": before,
		"after":  after,
	}
	return r.Log(ctx, eventType, "USER", subjectID, details, opts)
}

// Financial transaction types accepted by LogFinancialEvent.
const (
	TxCharge = "CHARGE"
	TxRefund = "REFUND"
	TxPayout = "PAYOUT"
)

// LogFinancialEvent records a money movement. Entries are WARNING severity,
// FINANCIAL category, and PCI-flagged.
func (r *Recorder) LogFinancialEvent(ctx context.Context, txType, entityID string, amountCents int64, currency string, details map[string]any, opts Options) (*models.AuditLogEntry, error) {
	var eventType models.EventType
	switch strings.ToUpper(txType) {
	case TxCharge:
		eventType = models.EventPaymentProcessed
	case TxRefund:
		eventType = models.EventRefundIssued
	case TxPayout:
		eventType = models.EventPayoutSent
	default:
		return nil, ErrInvalidEventType
	}
	if details == nil {
		details = map[string]any{}
	}
	details["amount_cents"] = amountCents
	details["currency"] = currency
	if opts.Metadata == nil {
		opts.Metadata = map[string]any{}
	}
	opts.Metadata["transaction_type"] = strings.ToUpper(txType)
	opts.Category = models.CategoryFinancial
	opts.Severity = models.SeverityWarning
	opts.Compliance.PCI = true
	return r.Log(ctx, eventType, "TRANSACTION", entityID, details, opts)
}

// grantsPermissions reports whether after contains a permission absent from
// before.
func grantsPermissions(before, after []string) bool {
	prev := make(map[string]bool, len(before))
	for _, p := range before {
		prev[p] = true
	}
	for _, p := range after {
		if !prev[p] {
			return true
		}
	}
	return false
}
