package dto

import (
	"time"

	"github.com/crediflow/collections-service/internal/domain"
)

// CreateCaseRequest payload.
type CreateCaseRequest struct {
	DebtorName *string `json:"debtorName"`
	AssignedTo string  `json:"assignedTo"`
	Balance    float64 `json:"balance"`
}

// PatchCaseRequest payload. Absent fields are left untouched.
type PatchCaseRequest struct {
	DebtorName *string            `json:"debtorName"`
	AssignedTo *string            `json:"assignedTo"`
	Status     *domain.CaseStatus `json:"status"`
	State      *string            `json:"state"`
}

// CaseResponse is the wire view of a case.
type CaseResponse struct {
	ID         string            `json:"id"`
	DebtorName *string           `json:"debtorName,omitempty"`
	State      string            `json:"state"`
	AssignedTo string            `json:"assignedTo"`
	Balance    float64           `json:"balance"`
	Status     domain.CaseStatus `json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// NewCaseResponse maps a domain case.
func NewCaseResponse(c *domain.Case) CaseResponse {
	return CaseResponse{
		ID:         c.ID,
		DebtorName: c.DebtorName,
		State:      c.State,
		AssignedTo: c.AssignedTo,
		Balance:    c.Balance,
		Status:     c.Status,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
