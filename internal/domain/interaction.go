package domain

import "time"

// Interaction is an append-only workflow log entry, one per agent submission.
type Interaction struct {
	ID                 string
	CaseID             string
	ActorID            string
	TS                 time.Time
	FromState          string
	Result             string
	Concept            *string
	Fields             map[string]any
	LastPromiseConcept *string
	TransitionInfo     map[string]any
	SuggestedNextState *string
	SupervisorRequired bool
	Actions            []Action
	Notes              []string
}

// ActionType enumerates side-effect directives emitted by the business rules.
type ActionType string

const (
	ActionCreateSupervisorTicket     ActionType = "CREATE_SUPERVISOR_TICKET"
	ActionActivateAgreement          ActionType = "ACTIVATE_AGREEMENT"
	ActionRegisterInstallmentPayment ActionType = "REGISTER_INSTALLMENT_PAYMENT"
)

// Action is a side-effect directive recorded on the interaction. The
// directives are recorded for downstream processing, not executed inline.
type Action struct {
	Type          ActionType     `json:"type"`
	Reason        string         `json:"reason,omitempty"`
	AgreementType string         `json:"agreementType,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
}
