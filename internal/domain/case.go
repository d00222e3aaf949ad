package domain

import "time"

// CaseStatus is the lifecycle tag of a case document, independent from the
// collection-workflow state.
type CaseStatus string

const (
	CaseStatusOpen   CaseStatus = "open"
	CaseStatusClosed CaseStatus = "closed"
)

// Case is a debtor account under collection. Its workflow state is always a
// member of the configured state set and its balance never goes negative.
type Case struct {
	ID         string
	DebtorName *string
	State      string
	AssignedTo string
	Balance    float64
	Status     CaseStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
