package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/staybook/audit-service/internal/audit"
	"github.com/staybook/audit-service/internal/models"
)

const entryColumns = `id, category, event_type, severity, COALESCE(actor,''),
	ip_address, user_agent, COALESCE(session_id,''), COALESCE(request_id,''),
	resource, resource_id, COALESCE(details,'{}'), COALESCE(metadata,'{}'),
	gdpr, ccpa, pci, COALESCE(prev_hash,''), hash, created_at`

// AuditRepo persists hash-chained audit entries. The table is append-only;
// a database trigger rejects UPDATE and DELETE, and this repo exposes no
// mutating statement besides INSERT.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert appends one entry. The caller (the recorder's appender goroutine)
// has already set hash, prev_hash, and created_at.
func (r *AuditRepo) Insert(ctx context.Context, e *models.AuditLogEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	var prevHash sql.NullString
	if e.PrevHash != "" {
		prevHash = sql.NullString{String: e.PrevHash, Valid: true}
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, category, event_type, severity, actor,
			ip_address, user_agent, session_id, request_id,
			resource, resource_id, details, metadata,
			gdpr, ccpa, pci, prev_hash, hash, created_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, $7, NULLIF($8,''), NULLIF($9,''),
			$10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		e.ID, e.Category, e.EventType, e.Severity, e.Actor,
		e.Context.IPAddress, e.Context.UserAgent, e.Context.SessionID, e.Context.RequestID,
		e.Resource, e.ResourceID, details, metadata,
		e.Compliance.GDPR, e.Compliance.CCPA, e.Compliance.PCI,
		prevHash, e.Hash, e.CreatedAt,
	)
	return err
}

// LastEntry returns the most recently committed entry, or nil when the log
// is empty. The recorder reads this once at startup to seed the chain tail.
// seq is the chain order key: it follows insert order, which timestamps do
// not when the clock steps or two entries share a microsecond.
func (r *AuditRepo) LastEntry(ctx context.Context) (*models.AuditLogEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM audit_log ORDER BY seq DESC LIMIT 1`)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Query returns entries matching the filter, most recent first.
func (r *AuditRepo) Query(ctx context.Context, f audit.Filter) ([]models.AuditLogEntry, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.From.IsZero() {
		conds = append(conds, "created_at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "created_at < "+arg(f.To))
	}
	if f.Actor != "" {
		conds = append(conds, "actor = "+arg(f.Actor))
	}
	if f.Resource != "" {
		conds = append(conds, "resource = "+arg(f.Resource))
	}
	if f.EventType != "" {
		conds = append(conds, "event_type = "+arg(string(f.EventType)))
	}
	if f.Severity != "" {
		conds = append(conds, "severity = "+arg(string(f.Severity)))
	}

	q := `SELECT ` + entryColumns + ` FROM audit_log`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	q += " ORDER BY seq DESC LIMIT " + arg(limit)
	if f.Offset > 0 {
		q += " OFFSET " + arg(f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Range returns entries created in [from, to) in ascending chain order,
// paged by limit/offset. Zero-value bounds are open.
func (r *AuditRepo) Range(ctx context.Context, from, to time.Time, limit, offset int) ([]models.AuditLogEntry, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !from.IsZero() {
		conds = append(conds, "created_at >= "+arg(from))
	}
	if !to.IsZero() {
		conds = append(conds, "created_at < "+arg(to))
	}
	q := `SELECT ` + entryColumns + ` FROM audit_log`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY seq ASC LIMIT " + arg(limit) + " OFFSET " + arg(offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.AuditLogEntry, error) {
	var e models.AuditLogEntry
	var details, metadata []byte
	err := row.Scan(
		&e.ID, &e.Category, &e.EventType, &e.Severity, &e.Actor,
		&e.Context.IPAddress, &e.Context.UserAgent, &e.Context.SessionID, &e.Context.RequestID,
		&e.Resource, &e.ResourceID, &details, &metadata,
		&e.Compliance.GDPR, &e.Compliance.CCPA, &e.Compliance.PCI,
		&e.PrevHash, &e.Hash, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &e.Details); err != nil {
		return nil, fmt.Errorf("unmarshal details: %w", err)
	}
	if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
