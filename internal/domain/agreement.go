package domain

import "time"

// AgreementStatus enumerates settlement agreement states.
type AgreementStatus string

const (
	AgreementStatusActive    AgreementStatus = "active"
	AgreementStatusCancelled AgreementStatus = "cancelled"
	AgreementStatusCompleted AgreementStatus = "completed"
)

// Agreement is an installment/settlement plan against a case. Amount,
// StartDate and Installments are write-once; only Terms and Status may change
// after creation.
type Agreement struct {
	ID           string
	CaseID       string
	Amount       float64
	StartDate    time.Time
	Installments int
	Status       AgreementStatus
	Terms        map[string]any
	CreatedBy    string
	CancelledAt  *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
