package models

import "time"

// Category groups audit entries for reporting.
type Category string

const (
	CategoryDataAccess       Category = "DATA_ACCESS"
	CategoryDataModification Category = "DATA_MODIFICATION"
	CategoryAuthentication   Category = "AUTHENTICATION"
	CategoryAuthorization    Category = "AUTHORIZATION"
	CategoryFinancial        Category = "FINANCIAL"
	CategoryCompliance       Category = "COMPLIANCE"
	CategorySystem           Category = "SYSTEM"
)

// EventType is the fine-grained action tag. Closed enumeration, never free text.
type EventType string

const (
	EventCreate            EventType = "CREATE"
	EventUpdate            EventType = "UPDATE"
	EventDelete            EventType = "DELETE"
	EventSoftDelete        EventType = "SOFT_DELETE"
	EventRestore           EventType = "RESTORE"
	EventRead              EventType = "READ"
	EventExport            EventType = "EXPORT"
	EventLogin             EventType = "LOGIN"
	EventLogout            EventType = "LOGOUT"
	EventLoginFailed       EventType = "LOGIN_FAILED"
	EventPermissionGranted EventType = "PERMISSION_GRANTED"
	EventPermissionRevoked EventType = "PERMISSION_REVOKED"
	EventPaymentProcessed  EventType = "PAYMENT_PROCESSED"
	EventRefundIssued      EventType = "REFUND_ISSUED"
	EventPayoutSent        EventType = "PAYOUT_SENT"
)

// Severity controls whether an entry also triggers an operator alert.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

var validEventTypes = map[EventType]bool{
	EventCreate: true, EventUpdate: true, EventDelete: true,
	EventSoftDelete: true, EventRestore: true, EventRead: true,
	EventExport: true, EventLogin: true, EventLogout: true,
	EventLoginFailed: true, EventPermissionGranted: true,
	EventPermissionRevoked: true, EventPaymentProcessed: true,
	EventRefundIssued: true, EventPayoutSent: true,
}

var validCategories = map[Category]bool{
	CategoryDataAccess: true, CategoryDataModification: true,
	CategoryAuthentication: true, CategoryAuthorization: true,
	CategoryFinancial: true, CategoryCompliance: true, CategorySystem: true,
}

var validSeverities = map[Severity]bool{
	SeverityInfo: true, SeverityWarning: true,
	SeverityError: true, SeverityCritical: true,
}

// Valid reports whether t is a member of the closed event type set.
func (t EventType) Valid() bool { return validEventTypes[t] }

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return validCategories[c] }

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool { return validSeverities[s] }

// RequestContext is the ambient request metadata captured at write time.
// Fields are never mutated after the entry is created.
type RequestContext struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	SessionID string `json:"session_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ComplianceFlags marks an entry as subject to a regulatory regime's handling rules.
type ComplianceFlags struct {
	GDPR bool `json:"gdpr"`
	CCPA bool `json:"ccpa"`
	PCI  bool `json:"pci"`
}

// AuditLogEntry is one row in the append-only audit log. Entries are created
// once and never updated or deleted; a correction is itself a new entry.
type AuditLogEntry struct {
	ID         string          `json:"id"`
	Category   Category        `json:"category"`
	EventType  EventType       `json:"event_type"`
	Severity   Severity        `json:"severity"`
	Actor      string          `json:"actor,omitempty"`
	Context    RequestContext  `json:"request_context"`
	Resource   string          `json:"resource"`
	ResourceID string          `json:"resource_id"`
	Details    map[string]any  `json:"details,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	Compliance ComplianceFlags `json:"compliance"`
	// PrevHash is the hash of the entry committed immediately before this
	// one. Empty only for the genesis entry.
	PrevHash  string    `json:"previous_hash,omitempty"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
}
