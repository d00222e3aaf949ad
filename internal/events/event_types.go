package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated         EventType = "case_created"
	EventCaseUpdated         EventType = "case_updated"
	EventPaymentPosted       EventType = "payment_posted"
	EventPaymentUpdated      EventType = "payment_updated"
	EventPaymentCancelled    EventType = "payment_cancelled"
	EventAgreementCreated    EventType = "agreement_created"
	EventAgreementUpdated    EventType = "agreement_updated"
	EventInteractionRecorded EventType = "interaction_recorded"
	EventTicketOpened        EventType = "ticket_opened"
	EventTicketClosed        EventType = "ticket_closed"
)

// Event represents a domain event emitted by services. Entity/EntityID name
// the primary record the event is about; Diff and Meta carry the audit
// payload.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	Action    string         `json:"action"`
	ActorID   string         `json:"actor_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Diff      map[string]any `json:"diff,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}
