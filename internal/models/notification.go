package models

import "time"

// Notification is an operator-facing alert row created for CRITICAL audit entries.
type Notification struct {
	ID           int            `json:"id"`
	Type         string         `json:"type"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	Priority     string         `json:"priority"`
	AuditEntryID string         `json:"audit_entry_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
