package models

import "time"

// IntegrityFinding describes one entry that failed verification.
type IntegrityFinding struct {
	EntryID   string    `json:"entry_id"`
	Hash      string    `json:"hash"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// VerificationReport is the outcome of a chain walk over a date range.
// Findings are data, not errors: Invalid holds entries whose own content no
// longer reproduces the stored hash, Broken holds entries whose link to the
// next entry in the chain does not hold.
type VerificationReport struct {
	From         time.Time          `json:"from"`
	To           time.Time          `json:"to"`
	TotalChecked int                `json:"total_checked"`
	Valid        int                `json:"valid"`
	Invalid      []IntegrityFinding `json:"invalid"`
	Broken       []IntegrityFinding `json:"broken"`
}

// Intact reports whether the walk found no tampering.
func (r *VerificationReport) Intact() bool {
	return len(r.Invalid) == 0 && len(r.Broken) == 0
}

// ReportType identifies the regulatory regime a compliance export targets.
type ReportType string

const (
	ReportGDPR ReportType = "GDPR"
	ReportCCPA ReportType = "CCPA"
)

// Booking is the shape of a domain record pulled into a compliance export.
// The booking store itself belongs to the platform, not this service.
type Booking struct {
	ID        string    `json:"id"`
	GuestID   string    `json:"guest_id"`
	HostID    string    `json:"host_id"`
	Status    string    `json:"status"`
	Amount    int64     `json:"amount_cents"`
	Currency  string    `json:"currency"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	CreatedAt time.Time `json:"created_at"`
}

// ComplianceReport is a per-subject export assembled for a regulatory request.
type ComplianceReport struct {
	ReportType  ReportType           `json:"report_type"`
	GeneratedAt time.Time            `json:"generated_at"`
	SubjectID   string               `json:"subject_id"`
	Data        ComplianceReportData `json:"data"`
}

// ComplianceReportData aggregates everything held about the subject.
type ComplianceReportData struct {
	AuditLogs []AuditLogEntry `json:"audit_logs"`
	Bookings  []Booking       `json:"bookings"`
}
