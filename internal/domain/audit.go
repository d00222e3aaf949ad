package domain

import "time"

// AuditLog is a best-effort audit trail entry. Writes are fire-and-forget;
// a failed audit write never aborts the primary operation.
type AuditLog struct {
	ID       string
	Entity   string
	EntityID *string
	Action   string
	By       *string
	Diff     map[string]any
	Meta     map[string]any
	At       time.Time
}
