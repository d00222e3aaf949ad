package dto

import (
	"time"

	"github.com/crediflow/collections-service/internal/domain"
)

// CreateAgreementRequest payload.
type CreateAgreementRequest struct {
	CaseID       string         `json:"caseId"`
	Amount       float64        `json:"amount"`
	StartDate    time.Time      `json:"startDate"`
	Installments int            `json:"installments"`
	Terms        map[string]any `json:"terms"`
}

// PatchAgreementRequest payload. Amount, startDate and installments are
// write-once and absent here.
type PatchAgreementRequest struct {
	Status *domain.AgreementStatus `json:"status"`
	Terms  map[string]any          `json:"terms"`
}

// AgreementResponse is the wire view of an agreement.
type AgreementResponse struct {
	ID           string                 `json:"id"`
	CaseID       string                 `json:"caseId"`
	Amount       float64                `json:"amount"`
	StartDate    time.Time              `json:"startDate"`
	Installments int                    `json:"installments"`
	Status       domain.AgreementStatus `json:"status"`
	Terms        map[string]any         `json:"terms,omitempty"`
	CreatedBy    string                 `json:"createdBy"`
	CancelledAt  *time.Time             `json:"cancelledAt,omitempty"`
	CompletedAt  *time.Time             `json:"completedAt,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// NewAgreementResponse maps a domain agreement.
func NewAgreementResponse(a *domain.Agreement) AgreementResponse {
	return AgreementResponse{
		ID:           a.ID,
		CaseID:       a.CaseID,
		Amount:       a.Amount,
		StartDate:    a.StartDate,
		Installments: a.Installments,
		Status:       a.Status,
		Terms:        a.Terms,
		CreatedBy:    a.CreatedBy,
		CancelledAt:  a.CancelledAt,
		CompletedAt:  a.CompletedAt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
