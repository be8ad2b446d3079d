package models

// RoleAuditor can query logs and run verifications; RoleAdmin can also ingest
// events and generate compliance exports.
const RoleAuditor = "auditor"
const RoleAdmin = "admin"

// Operator is a human user of the audit API (not an audited subject).
type Operator struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
