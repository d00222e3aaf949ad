package domain

import "time"

// TicketStatus enumerates supervisor ticket lifecycle states.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

// TicketTypeSupervisorValidation routes a proposed case-state change to a
// supervisor for approval.
const TicketTypeSupervisorValidation = "SUPERVISOR_VALIDATION"

// Ticket is a deferred-approval request. Created OPEN by the interaction
// orchestrator, terminally CLOSED by approve or reject; immutable once closed.
type Ticket struct {
	ID            string
	CaseID        string
	InteractionID *string
	Type          string
	Reason        string
	ProposedState *string
	Status        TicketStatus
	Rejected      bool
	RejectReason  *string
	CreatedAt     time.Time
	ClosedAt      *time.Time
}
