package dto

import (
	"time"

	"github.com/crediflow/collections-service/internal/domain"
)

// ApproveTicketRequest payload.
type ApproveTicketRequest struct {
	TicketID string `json:"ticketId"`
}

// RejectTicketRequest payload.
type RejectTicketRequest struct {
	TicketID string `json:"ticketId"`
	Reason   string `json:"reason"`
}

// TicketResponse is the wire view of a supervisor ticket.
type TicketResponse struct {
	ID            string              `json:"id"`
	CaseID        string              `json:"caseId"`
	InteractionID *string             `json:"interactionId,omitempty"`
	Type          string              `json:"type"`
	Reason        string              `json:"reason,omitempty"`
	ProposedState *string             `json:"proposedState,omitempty"`
	Status        domain.TicketStatus `json:"status"`
	Rejected      bool                `json:"rejected"`
	RejectReason  *string             `json:"rejectReason,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	ClosedAt      *time.Time          `json:"closedAt,omitempty"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:            t.ID,
		CaseID:        t.CaseID,
		InteractionID: t.InteractionID,
		Type:          t.Type,
		Reason:        t.Reason,
		ProposedState: t.ProposedState,
		Status:        t.Status,
		Rejected:      t.Rejected,
		RejectReason:  t.RejectReason,
		CreatedAt:     t.CreatedAt,
		ClosedAt:      t.ClosedAt,
	}
}
