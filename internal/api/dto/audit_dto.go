package dto

import (
	"time"

	"github.com/crediflow/collections-service/internal/domain"
)

// AuditLogResponse is the wire view of an audit entry.
type AuditLogResponse struct {
	ID       string         `json:"id"`
	Entity   string         `json:"entity"`
	EntityID *string        `json:"entityId,omitempty"`
	Action   string         `json:"action"`
	By       *string        `json:"by,omitempty"`
	Diff     map[string]any `json:"diff,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
	At       time.Time      `json:"at"`
}

// NewAuditLogResponse maps a domain audit entry.
func NewAuditLogResponse(a *domain.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:       a.ID,
		Entity:   a.Entity,
		EntityID: a.EntityID,
		Action:   a.Action,
		By:       a.By,
		Diff:     a.Diff,
		Meta:     a.Meta,
		At:       a.At,
	}
}
