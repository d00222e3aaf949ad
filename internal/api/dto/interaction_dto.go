package dto

import (
	"time"

	"github.com/crediflow/collections-service/internal/domain"
	"github.com/crediflow/collections-service/internal/service"
)

// SubmitInteractionRequest is an agent's workflow submission.
type SubmitInteractionRequest struct {
	CaseID             string         `json:"caseId"`
	CurrentState       string         `json:"currentState"`
	Result             string         `json:"result"`
	Concept            string         `json:"concept"`
	Fields             map[string]any `json:"fields"`
	ChosenNextState    string         `json:"chosenNextState"`
	LastPromiseConcept string         `json:"lastPromiseConcept"`
}

// SubmitInteractionResponse is the decision trace returned to the agent.
type SubmitInteractionResponse struct {
	InteractionID      string          `json:"interactionId"`
	RequiredFields     []string        `json:"requiredFields"`
	NextState          string          `json:"nextState"`
	TransitionInfo     map[string]any  `json:"transitionInfo,omitempty"`
	SupervisorTicketID string          `json:"supervisorTicketId,omitempty"`
	Actions            []domain.Action `json:"actions,omitempty"`
	Notes              []string        `json:"notes,omitempty"`
}

// NewSubmitInteractionResponse maps a submission result.
func NewSubmitInteractionResponse(r *service.SubmitResult) SubmitInteractionResponse {
	return SubmitInteractionResponse{
		InteractionID:      r.InteractionID,
		RequiredFields:     r.RequiredFields,
		NextState:          r.NextState,
		TransitionInfo:     r.TransitionInfo,
		SupervisorTicketID: r.SupervisorTicketID,
		Actions:            r.Actions,
		Notes:              r.Notes,
	}
}

// InteractionResponse is the wire view of a logged interaction.
type InteractionResponse struct {
	ID                 string          `json:"id"`
	CaseID             string          `json:"caseId"`
	ActorID            string          `json:"actorId"`
	TS                 time.Time       `json:"ts"`
	FromState          string          `json:"fromState"`
	Result             string          `json:"result"`
	Concept            *string         `json:"concept,omitempty"`
	Fields             map[string]any  `json:"fields,omitempty"`
	LastPromiseConcept *string         `json:"lastPromiseConcept,omitempty"`
	TransitionInfo     map[string]any  `json:"transitionInfo,omitempty"`
	SuggestedNextState *string         `json:"suggestedNextState,omitempty"`
	SupervisorRequired bool            `json:"supervisorRequired"`
	Actions            []domain.Action `json:"actions,omitempty"`
	Notes              []string        `json:"notes,omitempty"`
}

// NewInteractionResponse maps a domain interaction.
func NewInteractionResponse(in *domain.Interaction) InteractionResponse {
	return InteractionResponse{
		ID:                 in.ID,
		CaseID:             in.CaseID,
		ActorID:            in.ActorID,
		TS:                 in.TS,
		FromState:          in.FromState,
		Result:             in.Result,
		Concept:            in.Concept,
		Fields:             in.Fields,
		LastPromiseConcept: in.LastPromiseConcept,
		TransitionInfo:     in.TransitionInfo,
		SuggestedNextState: in.SuggestedNextState,
		SupervisorRequired: in.SupervisorRequired,
		Actions:            in.Actions,
		Notes:              in.Notes,
	}
}
