package dto

import (
	"time"

	"github.com/crediflow/collections-service/internal/domain"
)

// PostPaymentRequest payload.
type PostPaymentRequest struct {
	CaseID   string         `json:"caseId"`
	Amount   float64        `json:"amount"`
	Method   string         `json:"method"`
	Date     *time.Time     `json:"date"`
	Note     string         `json:"note"`
	Metadata map[string]any `json:"metadata"`
}

// PatchPaymentRequest payload. Amount and caseId are immutable and absent.
type PatchPaymentRequest struct {
	Method   *string        `json:"method"`
	Date     *time.Time     `json:"date"`
	Note     *string        `json:"note"`
	Metadata map[string]any `json:"metadata"`
}

// CancelPaymentRequest payload.
type CancelPaymentRequest struct {
	PaymentID string `json:"paymentId"`
	Reason    string `json:"reason"`
}

// PaymentResponse is the wire view of a payment.
type PaymentResponse struct {
	ID          string               `json:"id"`
	CaseID      string               `json:"caseId"`
	Amount      float64              `json:"amount"`
	Method      string               `json:"method,omitempty"`
	Date        time.Time            `json:"date"`
	Status      domain.PaymentStatus `json:"status"`
	Note        string               `json:"note,omitempty"`
	Metadata    map[string]any       `json:"metadata,omitempty"`
	CreatedBy   string               `json:"createdBy"`
	CancelledAt *time.Time           `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// NewPaymentResponse maps a domain payment.
func NewPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		CaseID:      p.CaseID,
		Amount:      p.Amount,
		Method:      p.Method,
		Date:        p.Date,
		Status:      p.Status,
		Note:        p.Note,
		Metadata:    p.Metadata,
		CreatedBy:   p.CreatedBy,
		CancelledAt: p.CancelledAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PostPaymentResponse reports the ledger outcome of a posted payment.
type PostPaymentResponse struct {
	Payment    PaymentResponse `json:"payment"`
	NewBalance float64         `json:"newBalance"`
}

// CancellationResponse is the wire view of a payment reversal.
type CancellationResponse struct {
	ID        string    `json:"id"`
	PaymentID string    `json:"paymentId"`
	CaseID    string    `json:"caseId"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason,omitempty"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewCancellationResponse maps a domain cancellation.
func NewCancellationResponse(c *domain.Cancellation) CancellationResponse {
	return CancellationResponse{
		ID:        c.ID,
		PaymentID: c.PaymentID,
		CaseID:    c.CaseID,
		Amount:    c.Amount,
		Reason:    c.Reason,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
	}
}

// CancelPaymentResponse reports the ledger outcome of a reversal.
type CancelPaymentResponse struct {
	Cancellation CancellationResponse `json:"cancellation"`
	NewBalance   float64              `json:"newBalance"`
}
